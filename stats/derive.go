package stats

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoMessages is returned when deriving stats from a total of zero messages
	ErrNoMessages = errors.New("no messages found to derive stats from")

	// ErrEmptyAuthor is returned when deriving stats for an author without any message
	ErrEmptyAuthor = errors.New("author has no messages")
)

// Derive computes the Percent, Increase and Average fields of every author record and of the total. The total
// Percent is always 100. It returns ErrNoMessages if the total has no messages
func Derive(s *AuthorStats, total *Record) (err error) {
	if total.Count == 0 {
		return ErrNoMessages
	}

	for _, r := range s.Records() {
		if r.Count == 0 {
			return errors.Wrapf(ErrEmptyAuthor, "can't derive stats of [%s]", r.Author.ID)
		}

		r.Percent = ratio(r.Count, total.Count)
		r.Increase = ratio(r.Delta, r.Count)
		r.Average = float64(r.Chars) / float64(r.Count)
	}

	total.Percent = 100
	total.Increase = ratio(total.Delta, total.Count)
	total.Average = float64(total.Chars) / float64(total.Count)

	return nil
}

// ratio returns part/whole as a percentage
func ratio(part int, whole int) float64 {
	return float64(part) / float64(whole) * 100
}
