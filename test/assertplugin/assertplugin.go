package assertplugin

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alexandre-normand/bestbot"
	"github.com/alexandre-normand/bestbot/schedule"
	"github.com/alexandre-normand/bestbot/test/capture"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// Asserter represents a plugin driver/asserter and holds the bot identifier that tests are using when
// sending test messages for processing
type Asserter struct {
	botUserID      string
	logger         *zap.Logger
	userInfoFinder bestbot.UserInfoFinder
	sender         *capture.SenderCaptor
}

// New creates a new asserter with the given botUserId
// (only include the id without the '@' prefix).
// The botUserId is used in order to detect commands formed with
// <@botUserId>
func New(botUserID string, options ...Option) (a *Asserter) {
	a = new(Asserter)
	a.botUserID = botUserID
	a.logger = zap.NewNop()
	a.userInfoFinder = staticUserInfoFinder{}

	for _, option := range options {
		option(a)
	}

	return a
}

// Option defines an option for the Asserter
type Option func(*Asserter)

// OptionLogger sets a logger for the asserter such that this logger is attached to the plugin when driven by
// the asserter
func OptionLogger(logger *zap.Logger) func(*Asserter) {
	return func(a *Asserter) {
		a.logger = logger
	}
}

// OptionUserInfoFinder sets the UserInfoFinder injected in the plugin. The default one knows every user
// and names them after their ID
func OptionUserInfoFinder(finder bestbot.UserInfoFinder) func(*Asserter) {
	return func(a *Asserter) {
		a.userInfoFinder = finder
	}
}

// OptionSender sets the captor injected as the plugin's Sender. Useful to make sends fail or to enforce a
// message length limit
func OptionSender(sender *capture.SenderCaptor) func(*Asserter) {
	return func(a *Asserter) {
		a.sender = sender
	}
}

type staticUserInfoFinder struct {
}

func (f staticUserInfoFinder) GetUserInfo(userID string) (user *slack.User, err error) {
	return &slack.User{ID: userID, Name: userID, RealName: userID}, nil
}

// ResultValidator is a function to do further validation of the answers and messages sent (keyed by channel)
// resulting from a plugin processing of all of its commands. The return value is meant to be true if validation
// is successful and false otherwise (following the testify convention)
type ResultValidator func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool

// SentValidator is a function to do further validation of messages sent (keyed by channel) by a scheduled action
type SentValidator func(t *testing.T, sent map[string][]string) bool

// AnswersAndSends drives a plugin and collects Answers as well as messages sent through the Sender. Once all of those
// have been collected, it passes handling to a validator to assert the expected answers and messages. It follows the
// style of github.com/stretchr/testify/assert as far as returning true/false to indicate success for further nested
// testing.
func (a *Asserter) AnswersAndSends(t *testing.T, p *bestbot.Plugin, m *slack.Msg, validate ResultValidator) (valid bool) {
	sender := a.inject(p)

	answers := a.driveCommands(p, m)

	return validate(t, answers, sender.SentMessages)
}

// RunsOnSchedule runs all scheduled actions of a plugin defined with the given schedule and validates the messages
// they sent. It fails if no action is defined with that schedule
func (a *Asserter) RunsOnSchedule(t *testing.T, p *bestbot.Plugin, d schedule.Definition, validate SentValidator) (valid bool) {
	sender := a.inject(p)

	ran := 0
	for _, sa := range p.ScheduledActions {
		if sa.Schedule == d {
			sa.Action(context.Background())
			ran++
		}
	}

	if !assert.NotZerof(t, ran, "Plugin [%s] has no scheduled action running [%s]", p.Name, d) {
		return false
	}

	return validate(t, sender.SentMessages)
}

// DoesNotRunOnSchedule asserts that a plugin has no scheduled action defined with the given schedule
func (a *Asserter) DoesNotRunOnSchedule(t *testing.T, p *bestbot.Plugin, d schedule.Definition) (valid bool) {
	for _, sa := range p.ScheduledActions {
		if sa.Schedule == d {
			return assert.Failf(t, "Unexpected scheduled action", "Plugin [%s] has a scheduled action running [%s]: %s", p.Name, d, sa.Description)
		}
	}

	return true
}

// inject sets the services of the plugin as the engine would and returns the sender captor
func (a *Asserter) inject(p *bestbot.Plugin) (sender *capture.SenderCaptor) {
	sender = a.sender
	if sender == nil {
		sender = capture.NewSender()
	}

	p.BotServices = bestbot.BotServices{
		Logger:         bestbot.NewSLogger(a.logger.Sugar(), true),
		UserInfoFinder: a.userInfoFinder,
		Sender:         sender,
		Meter:          noop.NewMeterProvider().Meter("assertplugin"),
	}

	return sender
}

func (a *Asserter) driveCommands(p *bestbot.Plugin, m *slack.Msg) (answers []*bestbot.Answer) {
	botMentionPrefix := fmt.Sprintf("<@%s> ", a.botUserID)

	if strings.HasPrefix(m.Text, botMentionPrefix) {
		normalizedText := strings.TrimPrefix(m.Text, botMentionPrefix)
		inMsg := bestbot.IncomingMessage{NormalizedText: normalizedText, Msg: *m}

		return runCommands(p.Commands, &inMsg)
	}

	if strings.HasPrefix(m.Channel, "D") {
		inMsg := bestbot.IncomingMessage{NormalizedText: m.Text, Msg: *m}

		return runCommands(p.Commands, &inMsg)
	}

	return make([]*bestbot.Answer, 0)
}

func runCommands(commands []bestbot.ActionDefinition, m *bestbot.IncomingMessage) (answers []*bestbot.Answer) {
	answers = make([]*bestbot.Answer, 0)

	for _, action := range commands {
		if action.Match(m) {
			a := action.Answer(context.Background(), m)

			if a != nil {
				answers = append(answers, a)
			}
		}
	}

	return answers
}
