package capture

import (
	"context"
	"io"

	"github.com/alexandre-normand/bestbot/stats"
	"github.com/pkg/errors"
)

// Platform is an in-memory stats.Platform. Histories are served in pages of PageSize messages to
// mimic a paginated fetch
type Platform struct {
	ChannelList []stats.Channel
	Histories   map[string][]stats.Message

	// Denied holds the IDs of channels that fail with stats.ErrPermissionDenied
	Denied map[string]bool

	// Failures holds errors returned instead of io.EOF once a channel's history is exhausted
	Failures map[string]error

	// ListErr is returned by Channels when set
	ListErr error

	PageSize int

	// Fetches counts the page fetches per channel
	Fetches map[string]int
}

// NewPlatform returns a new empty in-memory Platform
func NewPlatform() (p *Platform) {
	p = new(Platform)
	p.ChannelList = make([]stats.Channel, 0)
	p.Histories = make(map[string][]stats.Message)
	p.Denied = make(map[string]bool)
	p.Failures = make(map[string]error)
	p.Fetches = make(map[string]int)
	p.PageSize = 2

	return p
}

// WithChannel adds a channel along with its history
func (p *Platform) WithChannel(ch stats.Channel, messages ...stats.Message) *Platform {
	p.ChannelList = append(p.ChannelList, ch)
	p.Histories[ch.ID] = messages

	return p
}

// WithDeniedChannel adds a channel the bot isn't allowed to read
func (p *Platform) WithDeniedChannel(ch stats.Channel) *Platform {
	p.ChannelList = append(p.ChannelList, ch)
	p.Denied[ch.ID] = true

	return p
}

// Channels returns all channels in the order they were added
func (p *Platform) Channels(ctx context.Context) (channels []stats.Channel, err error) {
	if p.ListErr != nil {
		return nil, p.ListErr
	}

	return p.ChannelList, nil
}

// History returns an iterator over the history of a channel
func (p *Platform) History(channelID string) stats.HistoryIterator {
	return &historyIterator{p: p, channelID: channelID}
}

type historyIterator struct {
	p         *Platform
	channelID string
	page      []stats.Message
	offset    int
}

// Next returns the next message, fetching a page when the current one is consumed
func (it *historyIterator) Next(ctx context.Context) (m stats.Message, err error) {
	if err = ctx.Err(); err != nil {
		return stats.Message{}, err
	}

	if it.p.Denied[it.channelID] {
		return stats.Message{}, errors.Wrapf(stats.ErrPermissionDenied, "not_in_channel [%s]", it.channelID)
	}

	if len(it.page) == 0 {
		history := it.p.Histories[it.channelID]
		if it.offset >= len(history) {
			if failure, ok := it.p.Failures[it.channelID]; ok {
				return stats.Message{}, failure
			}

			return stats.Message{}, io.EOF
		}

		end := it.offset + it.p.PageSize
		if end > len(history) {
			end = len(history)
		}

		it.page = history[it.offset:end]
		it.offset = end
		it.p.Fetches[it.channelID]++
	}

	m, it.page = it.page[0], it.page[1:]

	return m, nil
}
