package bestbot

import (
	"context"

	"github.com/slack-go/slack"
)

// messagePoster is implemented by any value that has the PostMessageContext method. It is synchronous and returns
// the information identifying the sent message.
//
// slack.Client implements this interface
type messagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, err error)
}

// selfInfoFinder defines the interface for finding our (the bestbot instance) user info.
//
// slack.RTM implements this interface
type selfInfoFinder interface {
	GetInfo() (info *slack.Info)
}
