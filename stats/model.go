// Package stats scrapes channel message history and aggregates per-author message statistics.
package stats

import (
	"time"
)

// Author identifies the author of a message. Authors are compared by ID only, the Name being
// a display value
type Author struct {
	ID   string
	Name string
}

// DisplayName returns the author's name or the ID if the name is unknown
func (a Author) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}

	return a.ID
}

// Message is a single message read from a channel's history
type Message struct {
	ID        string
	ChannelID string
	Author    Author
	Text      string
	CreatedAt time.Time
}

// Channel is a channel visible to the bot
type Channel struct {
	ID   string
	Name string
}

// Counts holds the raw counters of an author (or of all authors of a channel)
type Counts struct {
	// Count is the number of messages
	Count int

	// Delta is the number of messages created within the trailing window (30 days) as of scrape time
	Delta int

	// Chars is the number of characters over all messages
	Chars int
}

// Add adds every counter of o to c
func (c *Counts) Add(o Counts) {
	c.Count += o.Count
	c.Delta += o.Delta
	c.Chars += o.Chars
}

// Record holds the counters of an author along with the fields derived from them
type Record struct {
	Author Author
	Counts

	// Percent is the share of all messages, from 0 to 100
	Percent float64

	// Increase is the share of messages within the trailing window, from 0 to 100
	Increase float64

	// Average is the average number of characters per message
	Average float64
}

// AuthorStats maps authors to their Record. The order in which authors were first seen is
// kept so that sorting with ties is deterministic
type AuthorStats struct {
	records map[string]*Record
	order   []string
}

// NewAuthorStats returns an empty AuthorStats
func NewAuthorStats() (s *AuthorStats) {
	s = new(AuthorStats)
	s.records = make(map[string]*Record)
	s.order = make([]string, 0)

	return s
}

// Get returns the record of the author with the given ID
func (s *AuthorStats) Get(authorID string) (r *Record, ok bool) {
	r, ok = s.records[authorID]
	return r, ok
}

// Len returns the number of authors
func (s *AuthorStats) Len() int {
	return len(s.order)
}

// Records returns all records in the order authors were first seen
func (s *AuthorStats) Records() (records []*Record) {
	records = make([]*Record, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}

	return records
}

// recordFor returns the record of author a, creating it if it doesn't exist yet
func (s *AuthorStats) recordFor(a Author) (r *Record) {
	if r, ok := s.records[a.ID]; ok {
		return r
	}

	r = &Record{Author: a}
	s.records[a.ID] = r
	s.order = append(s.order, a.ID)

	return r
}

// Add adds c to the counters of author a
func (s *AuthorStats) Add(a Author, c Counts) {
	s.recordFor(a).Add(c)
}

// Merge adds the counters of every author of o. Authors not yet known are appended
// in o's order
func (s *AuthorStats) Merge(o *AuthorStats) {
	for _, r := range o.Records() {
		s.Add(r.Author, r.Counts)
	}
}

// Totals returns the field-wise sum of all authors' counters
func (s *AuthorStats) Totals() (totals Counts) {
	for _, r := range s.records {
		totals.Add(r.Counts)
	}

	return totals
}
