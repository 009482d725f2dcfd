// Package export writes scraped channel messages to flat files
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexandre-normand/bestbot/stats"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// Header is the header row of every export file
var Header = []string{"Author", "Content", "Timestamp"}

// CSVExporter exports messages of a channel to a comma-separated values file under a directory, one file
// per channel
type CSVExporter struct {
	dir string
}

// NewCSVExporter creates a new CSVExporter writing files under dir. A leading '~' is expanded to the
// user's home directory
func NewCSVExporter(dir string) (e *CSVExporter, err error) {
	path, err := homedir.Expand(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to expand export path [%s]", dir)
	}

	return &CSVExporter{dir: path}, nil
}

// Dir returns the directory export files are written to
func (e *CSVExporter) Dir() string {
	return e.dir
}

// PathFor returns the path of the export file of a channel
func (e *CSVExporter) PathFor(channelID string) string {
	return filepath.Join(e.dir, fmt.Sprintf("%s_scraped.csv", channelID))
}

// Export writes one row per message to the channel's export file, creating the directory if needed. An existing
// file for that channel is overwritten. It returns the path of the written file
func (e *CSVExporter) Export(channelID string, messages []stats.Message) (path string, err error) {
	if err = os.MkdirAll(e.dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create export directory [%s]", e.dir)
	}

	path = e.PathFor(channelID)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create export file [%s]", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err = w.Write(Header); err != nil {
		return "", errors.Wrapf(err, "failed to write header to [%s]", path)
	}

	for _, m := range messages {
		if err = w.Write(row(m)); err != nil {
			return "", errors.Wrapf(err, "failed to write message [%s] to [%s]", m.ID, path)
		}
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return "", errors.Wrapf(err, "failed to flush [%s]", path)
	}

	return path, f.Close()
}

// row returns the export row of a message
func row(m stats.Message) []string {
	return []string{m.Author.DisplayName(), m.Text, m.CreatedAt.UTC().Format(time.RFC3339Nano)}
}
