// Package render formats compiled stats into text tables split in reply-sized chunks
package render

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alexandre-normand/bestbot/stats"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	// NameWidth is the maximum number of characters of an author name in a table
	NameWidth = 14

	// NamePlaceholder marks a shortened name
	NamePlaceholder = "-"

	// DefaultChunkThreshold is the default number of table characters per chunk. It leaves headroom under
	// the platform's 2000 characters limit for newlines and code block markup
	DefaultChunkThreshold = 900

	codeBlock = "```"
)

// Header holds the table column titles: rank, name, count, delta, chars, percent, increase, average
var Header = table.Row{"", "Name", "Σ", "Δ", "#", "%Σ", "%↑", "x̄"}

// Sort returns the records of s sorted in descending order of key. Records with equal values keep the
// order in which their authors were first seen
func Sort(s *stats.AuthorStats, key stats.SortKey) (records []*stats.Record) {
	records = s.Records()
	sort.SliceStable(records, func(i, j int) bool {
		return key.Value(records[i]) > key.Value(records[j])
	})

	return records
}

// Table renders records as an aligned text table with a header row
func Table(records []*stats.Record) string {
	t := table.NewWriter()
	t.SetStyle(simpleStyle())
	t.AppendHeader(Header)

	for i, r := range records {
		t.AppendRow(table.Row{
			fmt.Sprintf("%d.", i+1),
			ShortenName(r.Author.DisplayName(), NameWidth),
			r.Count,
			r.Delta,
			r.Chars,
			fmt.Sprintf("%.1f%%", r.Percent),
			fmt.Sprintf("%.1f%%", r.Increase),
			fmt.Sprintf("%.1f", r.Average),
		})
	}

	numeric := make([]table.ColumnConfig, 0)
	for col := 3; col <= len(Header); col++ {
		numeric = append(numeric, table.ColumnConfig{Number: col, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	t.SetColumnConfigs(numeric)

	return t.Render()
}

// simpleStyle returns a borderless style with a line separating the header from the rows
func simpleStyle() table.Style {
	style := table.StyleDefault
	style.Name = "bestbotSimple"
	style.Options = table.OptionsNoBordersAndSeparators
	style.Options.SeparateHeader = true
	style.Format.Header = text.FormatDefault

	return style
}

// ShortenName collapses whitespace in name and shortens it to at most width characters. A shortened name
// keeps as many whole words as possible and ends with NamePlaceholder. A first word too long to fit is cut
func ShortenName(name string, width int) string {
	words := strings.Fields(name)
	collapsed := strings.Join(words, " ")
	if utf8.RuneCountInString(collapsed) <= width {
		return collapsed
	}

	budget := width - utf8.RuneCountInString(NamePlaceholder)

	var b strings.Builder
	length := 0
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		sep := 0
		if length > 0 {
			sep = 1
		}

		if length+sep+wl > budget {
			break
		}

		if sep > 0 {
			b.WriteString(" ")
		}
		b.WriteString(w)
		length += sep + wl
	}

	if length == 0 {
		return string([]rune(words[0])[:budget]) + NamePlaceholder
	}

	return b.String() + NamePlaceholder
}

// Chunk splits a rendered table by line into chunks. Lines are accumulated until the sum of their lengths
// (in characters, newlines excluded) would exceed threshold at which point the chunk is flushed and a new one
// starts with that line. The last non-empty chunk is always flushed. A line longer than threshold forms a chunk
// on its own
func Chunk(renderedTable string, threshold int) (chunks []string) {
	chunks = make([]string, 0)

	trimmed := strings.TrimRight(renderedTable, "\n")
	if trimmed == "" {
		return chunks
	}

	var b strings.Builder
	size := 0
	for _, line := range strings.Split(trimmed, "\n") {
		l := utf8.RuneCountInString(line)
		if size+l > threshold && b.Len() > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
			size = 0
		}

		b.WriteString(line)
		b.WriteString("\n")
		size += l
	}

	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}

	return chunks
}

// Summary returns the summary line sent after all table chunks
func Summary(r stats.Report) string {
	return fmt.Sprintf("Overall I scraped: %d channels and found %d messages from %d unique users", r.ChannelsScraped, r.Metadata.Count, r.Stats.Len())
}

// Replies returns every message to deliver, in order, for a report sorted by key: one code block per table
// chunk followed by the summary line
func Replies(r stats.Report, key stats.SortKey, threshold int) (replies []string) {
	replies = make([]string, 0)

	for _, c := range Chunk(Table(Sort(r.Stats, key)), threshold) {
		replies = append(replies, codeBlock+"\n"+c+codeBlock)
	}

	return append(replies, Summary(r))
}
