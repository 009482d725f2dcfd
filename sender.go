package bestbot

import (
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

// ErrMessageTooLong is the cause of errors returned when sending a message longer than the configured
// maximum message length
var ErrMessageTooLong = errors.New("message too long")

// Sender is implemented by any value that has the Send method. Plugins use it to deliver messages that
// aren't a single answer (i.e. a sequence of message chunks or messages sent by scheduled actions)
type Sender interface {
	// Send sends text as a new message on channelID
	Send(ctx context.Context, channelID string, text string, options ...AnswerOption) (err error)
}

// slackSender is the main implementation of the Sender interface
type slackSender struct {
	poster           messagePoster
	maxMessageLength int
}

// NewSender returns a new Sender posting through poster and refusing messages longer (in characters) than
// maxMessageLength
func NewSender(poster messagePoster, maxMessageLength int) (s *slackSender) {
	s = new(slackSender)
	s.poster = poster
	s.maxMessageLength = maxMessageLength

	return s
}

// Send posts text on channelID. Answer options with threading set post the message as a reply to the thread
// timestamp option
func (s *slackSender) Send(ctx context.Context, channelID string, text string, options ...AnswerOption) (err error) {
	if l := utf8.RuneCountInString(text); l > s.maxMessageLength {
		return errors.Wrapf(ErrMessageTooLong, "refusing to send %d characters to [%s], the limit is %d", l, channelID, s.maxMessageLength)
	}

	msgOptions := []slack.MsgOption{slack.MsgOptionText(text, false), slack.MsgOptionAsUser(true)}

	sendOpts := ApplyAnswerOpts(options...)
	if sendOpts[ThreadedReplyOpt] == "true" && sendOpts[ThreadTimestampOpt] != "" {
		msgOptions = append(msgOptions, slack.MsgOptionTS(sendOpts[ThreadTimestampOpt]))
	}

	if _, _, err = s.poster.PostMessageContext(ctx, channelID, msgOptions...); err != nil {
		return errors.Wrapf(err, "failed to send message to [%s]", channelID)
	}

	return nil
}
