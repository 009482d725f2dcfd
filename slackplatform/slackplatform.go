// Package slackplatform implements the stats platform over the slack web api: channel enumeration, paginated
// history fetching and mapping of permission errors
package slackplatform

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alexandre-normand/bestbot/stats"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

const (
	// PageSize is the number of items requested per page for both channels and history
	PageSize = 200

	unknownAuthorID = "unknown"
)

// ChannelTypes are the conversation types enumerated as channels
var ChannelTypes = []string{"public_channel", "private_channel"}

// permissionErrors are the slack api errors meaning the bot isn't allowed to read a channel
var permissionErrors = map[string]bool{
	"not_in_channel":         true,
	"channel_not_found":      true,
	"missing_scope":          true,
	"access_denied":          true,
	"restricted_action":      true,
	"not_allowed_token_type": true,
}

// Client is the subset of the slack.Client api used to read channels.
//
// slack.Client implements this interface
type Client interface {
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) (channels []slack.Channel, nextCursor string, err error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

// UserInfoFinder finds a user's info (i.e. bestbot.UserInfoFinder)
type UserInfoFinder interface {
	GetUserInfo(userID string) (user *slack.User, err error)
}

// Platform reads channels and their history from slack
type Platform struct {
	client     Client
	userFinder UserInfoFinder
	logger     stats.Logger
}

// New returns a new Platform. User names are resolved through userFinder
func New(client Client, userFinder UserInfoFinder, logger stats.Logger) (p *Platform) {
	p = new(Platform)
	p.client = client
	p.userFinder = userFinder
	p.logger = logger

	return p
}

// Channels returns every non-archived channel visible to the bot, following pagination cursors until
// the last page
func (p *Platform) Channels(ctx context.Context) (channels []stats.Channel, err error) {
	channels = make([]stats.Channel, 0)

	cursor := ""
	for {
		page, nextCursor, err := p.client.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Types:           ChannelTypes,
			ExcludeArchived: true,
			Limit:           PageSize,
			Cursor:          cursor,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to list conversations")
		}

		for _, ch := range page {
			channels = append(channels, stats.Channel{ID: ch.ID, Name: ch.Name})
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	p.logger.Debugf("Found %d channels", len(channels))

	return channels, nil
}

// History returns an iterator over the full history of a channel. Pages are fetched lazily, as they
// get consumed
func (p *Platform) History(channelID string) stats.HistoryIterator {
	return &historyIterator{p: p, channelID: channelID}
}

type historyIterator struct {
	p         *Platform
	channelID string
	cursor    string
	page      []slack.Message
	done      bool
}

// Next returns the next message of the history or io.EOF once the last page has been consumed
func (it *historyIterator) Next(ctx context.Context) (m stats.Message, err error) {
	for len(it.page) == 0 {
		if it.done {
			return stats.Message{}, io.EOF
		}

		if err = it.fetch(ctx); err != nil {
			return stats.Message{}, err
		}
	}

	sm := it.page[0]
	it.page = it.page[1:]

	return it.p.toMessage(it.channelID, sm)
}

// fetch loads the next page of history
func (it *historyIterator) fetch(ctx context.Context) (err error) {
	resp, err := it.p.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: it.channelID,
		Cursor:    it.cursor,
		Limit:     PageSize,
	})
	if err != nil {
		return mapError(err, it.channelID)
	}

	it.page = resp.Messages
	it.cursor = resp.ResponseMetaData.NextCursor
	it.done = !resp.HasMore || it.cursor == ""

	return nil
}

// toMessage converts a slack message to a stats.Message
func (p *Platform) toMessage(channelID string, sm slack.Message) (m stats.Message, err error) {
	createdAt, err := ParseTimestamp(sm.Timestamp)
	if err != nil {
		return stats.Message{}, errors.Wrapf(err, "invalid timestamp on message in [%s]", channelID)
	}

	return stats.Message{ID: sm.Timestamp, ChannelID: channelID, Author: p.authorOf(sm), Text: sm.Text, CreatedAt: createdAt}, nil
}

// authorOf returns the author of a message. Messages from users get their name resolved while bot
// messages use the bot's username
func (p *Platform) authorOf(sm slack.Message) (a stats.Author) {
	switch {
	case sm.User != "":
		a.ID = sm.User
		u, err := p.userFinder.GetUserInfo(sm.User)
		if err != nil {
			p.logger.Debugf("Error getting user info for user id [%s], using the id as name: %v", sm.User, err)
			return a
		}
		a.Name = u.Name
	case sm.BotID != "":
		a.ID = sm.BotID
		a.Name = sm.Username
	case sm.Username != "":
		a.ID = sm.Username
		a.Name = sm.Username
	default:
		a.ID = unknownAuthorID
	}

	return a
}

// mapError wraps err with the channel ID and maps permission errors to stats.ErrPermissionDenied
func mapError(err error, channelID string) error {
	if IsPermissionError(err) {
		return errors.Wrapf(stats.ErrPermissionDenied, "%s [%s]", err.Error(), channelID)
	}

	return errors.Wrapf(err, "failed to fetch history of [%s]", channelID)
}

// IsPermissionError returns true if err is a slack api error meaning the bot isn't allowed to read a channel
func IsPermissionError(err error) bool {
	return err != nil && permissionErrors[errors.Cause(err).Error()]
}

// ParseTimestamp parses a slack message timestamp ("seconds.microseconds") into a time in UTC
func ParseTimestamp(ts string) (t time.Time, err error) {
	secs, micros, hasFraction := strings.Cut(ts, ".")

	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp [%s]", ts)
	}

	var nanos int64
	if hasFraction && micros != "" {
		if len(micros) > 9 {
			micros = micros[:9]
		}

		frac, err := strconv.ParseInt(micros, 10, 64)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "invalid timestamp [%s]", ts)
		}

		for i := len(micros); i < 9; i++ {
			frac *= 10
		}
		nanos = frac
	}

	return time.Unix(sec, nanos).UTC(), nil
}
