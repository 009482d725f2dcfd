package stats

import (
	"context"

	"github.com/pkg/errors"
)

// ErrPermissionDenied is the cause of errors returned by a Platform when the bot isn't allowed to
// read a channel
var ErrPermissionDenied = errors.New("permission denied")

// HistoryIterator yields the messages of a channel's history one at a time. Next returns io.EOF once
// the whole history has been read. An iterator isn't restartable
type HistoryIterator interface {
	Next(ctx context.Context) (m Message, err error)
}

// Platform is the chat platform boundary consumed by the Scraper and Compiler
type Platform interface {
	// Channels returns every channel visible to the bot, in the platform's enumeration order
	Channels(ctx context.Context) (channels []Channel, err error)

	// History returns an iterator over the full history of a channel
	History(channelID string) HistoryIterator
}

// Exporter persists the raw messages of a channel
type Exporter interface {
	Export(channelID string, messages []Message) (path string, err error)
}

// Logger is implemented by any value that has the Printf and Debugf methods (i.e. bestbot.SLogger)
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// IsPermissionDenied returns true if err was caused by ErrPermissionDenied
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Cause(err) == ErrPermissionDenied
}
