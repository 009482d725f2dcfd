package assertplugin_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alexandre-normand/bestbot"
	"github.com/alexandre-normand/bestbot/schedule"
	"github.com/alexandre-normand/bestbot/test/assertanswer"
	"github.com/alexandre-normand/bestbot/test/assertplugin"
	"github.com/alexandre-normand/bestbot/test/capture"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type myLittleTester struct {
	bestbot.Plugin
}

func newLittleTester() (mlt *myLittleTester) {
	mlt = new(myLittleTester)
	mlt.Name = "myLittleTester"

	mlt.Commands = []bestbot.ActionDefinition{
		{
			Hidden: true,
			Match: func(m *bestbot.IncomingMessage) bool {
				return strings.HasPrefix(m.NormalizedText, "tell me where the black-capped chickadee is")
			},
			Answer: mlt.findChickadee,
		},
		{
			Hidden: true,
			Match: func(m *bestbot.IncomingMessage) bool {
				return strings.Contains(m.NormalizedText, "are you up?")
			},
			Answer: areYouAnswerer,
		},
		{
			Hidden: true,
			Match: func(m *bestbot.IncomingMessage) bool {
				return strings.Contains(m.NormalizedText, "hey")
			},
			Answer: mlt.heyAnswerer,
		},
		{
			Hidden: true,
			Match: func(m *bestbot.IncomingMessage) bool {
				return strings.Contains(m.NormalizedText, "blue jays")
			},
			Answer: mlt.countBirds,
		},
	}

	mlt.ScheduledActions = []bestbot.ScheduledActionDefinition{
		{Schedule: schedule.Definition{Interval: 1, Unit: schedule.Minutes}, Description: "Check health", Action: mlt.healthStatus},
	}

	return mlt
}

func (mlt *myLittleTester) findChickadee(ctx context.Context, m *bestbot.IncomingMessage) *bestbot.Answer {
	mlt.Logger.Debugf("a debug statement")

	return &bestbot.Answer{Text: "👀 in the 🌲"}
}

func areYouAnswerer(ctx context.Context, m *bestbot.IncomingMessage) *bestbot.Answer {
	return &bestbot.Answer{Text: "I'm 😴, you?"}
}

func (mlt *myLittleTester) heyAnswerer(ctx context.Context, m *bestbot.IncomingMessage) *bestbot.Answer {
	user, err := mlt.UserInfoFinder.GetUserInfo(m.User)
	if err != nil {
		return &bestbot.Answer{Text: "hey stranger"}
	}

	return &bestbot.Answer{Text: "hey " + user.RealName}
}

func (mlt *myLittleTester) countBirds(ctx context.Context, m *bestbot.IncomingMessage) *bestbot.Answer {
	if err := mlt.Sender.Send(ctx, m.Channel, "one"); err != nil {
		mlt.Logger.Printf("failed to count: %v", err)
		return nil
	}

	mlt.Sender.Send(ctx, m.Channel, "two")

	return nil
}

func (mlt *myLittleTester) healthStatus(ctx context.Context) {
	mlt.Sender.Send(ctx, "test", "healthy")
}

type failingUserInfoFinder struct {
}

func (f failingUserInfoFinder) GetUserInfo(userID string) (user *slack.User, err error) {
	return nil, errors.New("user_not_found")
}

func TestCommandResultNonValid(t *testing.T) {
	mockT := new(testing.T)
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, false, assertplugin.AnswersAndSends(mockT, &myLittleTester.Plugin, &slack.Msg{Text: "<@bot> tell me where the black-capped chickadee is"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Len(t, answers, 10)
	}))
}

func TestCommandResultValid(t *testing.T) {
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.AnswersAndSends(t, &myLittleTester.Plugin, &slack.Msg{Text: "<@bot> tell me where the black-capped chickadee is"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Len(t, answers, 1) && assertanswer.HasText(t, answers[0], "👀 in the 🌲")
	}))
}

func TestLoggerAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	assertplugin := assertplugin.New("bot", assertplugin.OptionLogger(zap.New(core)))
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.AnswersAndSends(t, &myLittleTester.Plugin, &slack.Msg{Text: "<@bot> tell me where the black-capped chickadee is"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Len(t, answers, 1) && assert.Equal(t, 1, logs.FilterMessage("a debug statement").Len())
	}))
}

func TestNonCommandIgnored(t *testing.T) {
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.AnswersAndSends(t, &myLittleTester.Plugin, &slack.Msg{Text: "are you up?", Channel: "CGENERAL"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Empty(t, answers) && assert.Empty(t, sent)
	}))
}

func TestDirectCommandResultValid(t *testing.T) {
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.AnswersAndSends(t, &myLittleTester.Plugin, &slack.Msg{Text: "tell me where the black-capped chickadee is", Channel: "DTOTHEBOT"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Len(t, answers, 1) && assertanswer.HasText(t, answers[0], "👀 in the 🌲")
	}))
}

func TestUserInfoFinderInjected(t *testing.T) {
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.New("bot").AnswersAndSends(t, &myLittleTester.Plugin, &slack.Msg{Text: "<@bot> hey", User: "U123"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Len(t, answers, 1) && assertanswer.HasText(t, answers[0], "hey U123")
	}))

	assert.Equal(t, true, assertplugin.New("bot", assertplugin.OptionUserInfoFinder(failingUserInfoFinder{})).AnswersAndSends(t, &myLittleTester.Plugin, &slack.Msg{Text: "<@bot> hey", User: "U123"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Len(t, answers, 1) && assertanswer.HasText(t, answers[0], "hey stranger")
	}))
}

func TestSentMessagesCaptured(t *testing.T) {
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.AnswersAndSends(t, &myLittleTester.Plugin, &slack.Msg{Text: "<@bot> blue jays", Channel: "CBIRDS"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Empty(t, answers) && assert.Equal(t, map[string][]string{"CBIRDS": {"one", "two"}}, sent)
	}))
}

func TestFailingSender(t *testing.T) {
	sender := capture.NewSender()
	sender.Err = errors.New("channel_not_found")

	assertplugin := assertplugin.New("bot", assertplugin.OptionSender(sender))
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.AnswersAndSends(t, &myLittleTester.Plugin, &slack.Msg{Text: "<@bot> blue jays", Channel: "CBIRDS"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Empty(t, answers) && assert.Empty(t, sent)
	}))
}

func TestMultipleAnswersWithSentMessages(t *testing.T) {
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.AnswersAndSends(t, &myLittleTester.Plugin, &slack.Msg{Text: "<@bot> hey, are you up? I think I just saw blue jays", Channel: "CBIRDS", User: "U123"}, func(t *testing.T, answers []*bestbot.Answer, sent map[string][]string) bool {
		return assert.Len(t, answers, 2) && assertanswer.HasText(t, answers[0], "I'm 😴, you?") && assertanswer.HasText(t, answers[1], "hey U123") && assert.Len(t, sent["CBIRDS"], 2)
	}))
}

func TestRunsOnScheduleAssert(t *testing.T) {
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.RunsOnSchedule(t, &myLittleTester.Plugin, schedule.Definition{Interval: 1, Unit: schedule.Minutes}, func(t *testing.T, sent map[string][]string) bool {
		return assert.Len(t, sent, 1) && assert.Contains(t, sent, "test") && assert.Contains(t, sent["test"], "healthy")
	}))
}

func TestRunsOnScheduleAssertWhenDoesNotRun(t *testing.T) {
	mockT := new(testing.T)
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, false, assertplugin.RunsOnSchedule(mockT, &myLittleTester.Plugin, schedule.Definition{Interval: 1, Unit: schedule.Hours}, func(t *testing.T, sent map[string][]string) bool {
		return true
	}))
}

func TestRunsOnScheduleAssertFailingValidator(t *testing.T) {
	mockT := new(testing.T)
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, false, assertplugin.RunsOnSchedule(mockT, &myLittleTester.Plugin, schedule.Definition{Interval: 1, Unit: schedule.Minutes}, func(t *testing.T, sent map[string][]string) bool {
		return assert.Contains(t, sent, "myOtherChannel")
	}))
}

func TestDoesNotOnScheduleAssert(t *testing.T) {
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, true, assertplugin.DoesNotRunOnSchedule(t, &myLittleTester.Plugin, schedule.Definition{Interval: 1, Unit: schedule.Hours}))
}

func TestDoesNotOnScheduleAssertWhenRunsOnSchedule(t *testing.T) {
	mockT := new(testing.T)
	assertplugin := assertplugin.New("bot")
	myLittleTester := newLittleTester()

	assert.Equal(t, false, assertplugin.DoesNotRunOnSchedule(mockT, &myLittleTester.Plugin, schedule.Definition{Interval: 1, Unit: schedule.Minutes}))
}
