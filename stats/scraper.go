package stats

import (
	"context"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// DeltaWindowDays is the age (in days) up to which a message counts toward an author's Delta
	DeltaWindowDays = 30

	day = 24 * time.Hour
)

// ChannelStats is the result of scraping a single channel
type ChannelStats struct {
	Channel  Channel
	Messages []Message
	Stats    *AuthorStats
	Metadata Counts

	// ExportPath is the path of the export file when the scrape was persisted
	ExportPath string
}

// Scraper drains a channel's history and builds per-author counters
type Scraper struct {
	platform Platform
	exporter Exporter
	logger   Logger
	now      func() time.Time
}

// ScraperOption defines an option on a Scraper
type ScraperOption func(s *Scraper)

// OptionClock sets the function used to read the current time. The time is read once per scrape
func OptionClock(now func() time.Time) ScraperOption {
	return func(s *Scraper) {
		s.now = now
	}
}

// OptionExporter sets the Exporter used for persisted scrapes
func OptionExporter(e Exporter) ScraperOption {
	return func(s *Scraper) {
		s.exporter = e
	}
}

// NewScraper returns a new Scraper reading history from the platform
func NewScraper(platform Platform, logger Logger, options ...ScraperOption) (s *Scraper) {
	s = new(Scraper)
	s.platform = platform
	s.logger = logger
	s.now = time.Now

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Scrape reads the whole history of channel and returns the messages along with per-author stats and the channel
// metadata. When persist is true, the messages are also exported. Errors from the platform are returned as is (wrapped)
// and no partial result is returned
func (s *Scraper) Scrape(ctx context.Context, channel Channel, persist bool) (cs ChannelStats, err error) {
	s.logger.Debugf("Looking for messages in [%s] (%s)", channel.Name, channel.ID)

	now := s.now().UTC()
	messages := make([]Message, 0)
	authorStats := NewAuthorStats()

	it := s.platform.History(channel.ID)
	for {
		m, err := it.Next(ctx)
		if err == io.EOF {
			break
		}

		if err != nil {
			return ChannelStats{}, errors.Wrapf(err, "failed to read history of channel [%s]", channel.ID)
		}

		messages = append(messages, m)

		r := authorStats.recordFor(m.Author)
		r.Count++
		r.Chars += utf8.RuneCountInString(m.Text)

		if withinDeltaWindow(now, m.CreatedAt) {
			r.Delta++
		}
	}

	cs = ChannelStats{Channel: channel, Messages: messages, Stats: authorStats, Metadata: authorStats.Totals()}

	if persist {
		if s.exporter == nil {
			return ChannelStats{}, errors.Errorf("no exporter set up to persist messages of channel [%s]", channel.ID)
		}

		cs.ExportPath, err = s.exporter.Export(channel.ID, messages)
		if err != nil {
			return ChannelStats{}, errors.Wrapf(err, "failed to export messages of channel [%s]", channel.ID)
		}
	}

	s.logger.Printf("Successfully scraped %d messages from [%s] (%s)", len(messages), channel.Name, channel.ID)

	return cs, nil
}

// withinDeltaWindow returns true if the age of a message created at createdAt, in whole days floored, is at most
// DeltaWindowDays. Messages from the future always count
func withinDeltaWindow(now time.Time, createdAt time.Time) bool {
	ageInDays := math.Floor(float64(now.Sub(createdAt)) / float64(day))

	return ageInDays <= DeltaWindowDays
}
