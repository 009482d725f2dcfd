package capture

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/alexandre-normand/bestbot"
	"github.com/pkg/errors"
)

// SenderCaptor is a bestbot.Sender holding messages sent to it keyed by channel ID
type SenderCaptor struct {
	sync.Mutex

	SentMessages map[string][]string

	// SentOptions holds the resolved answer options of every sent message, in the same order as SentMessages
	SentOptions map[string][]map[string]string

	// MaxLength makes Send refuse texts longer than it (in characters) like the slack sender does. Zero means no limit
	MaxLength int

	// Err is returned by every Send when set. Failed sends aren't captured
	Err error
}

// NewSender returns a new initialized SenderCaptor instance
func NewSender() (sc *SenderCaptor) {
	sc = new(SenderCaptor)
	sc.SentMessages = make(map[string][]string)
	sc.SentOptions = make(map[string][]map[string]string)

	return sc
}

// Send captures the text and options of a message along with the channel it's sent to
func (sc *SenderCaptor) Send(ctx context.Context, channelID string, text string, options ...bestbot.AnswerOption) (err error) {
	sc.Lock()
	defer sc.Unlock()

	if sc.Err != nil {
		return sc.Err
	}

	if sc.MaxLength > 0 && utf8.RuneCountInString(text) > sc.MaxLength {
		return errors.Wrapf(bestbot.ErrMessageTooLong, "refusing to send %d characters to [%s]", utf8.RuneCountInString(text), channelID)
	}

	sc.SentMessages[channelID] = append(sc.SentMessages[channelID], text)
	sc.SentOptions[channelID] = append(sc.SentOptions[channelID], bestbot.ApplyAnswerOpts(options...))

	return nil
}
