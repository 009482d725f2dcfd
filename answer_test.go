package bestbot_test

import (
	"testing"

	"github.com/alexandre-normand/bestbot"
	"github.com/stretchr/testify/assert"
)

func TestApplyAnswerOptions(t *testing.T) {
	testCases := []struct {
		name           string
		options        []bestbot.AnswerOption
		expectedConfig map[string]string
	}{
		{"none", []bestbot.AnswerOption{}, make(map[string]string)},
		{"threadedReply", []bestbot.AnswerOption{bestbot.AnswerInThread()}, map[string]string{bestbot.ThreadedReplyOpt: "true"}},
		{"noThreading", []bestbot.AnswerOption{bestbot.AnswerWithoutThreading()}, map[string]string{bestbot.ThreadedReplyOpt: "false"}},
		{"threadReplyOnExistingThread", []bestbot.AnswerOption{bestbot.AnswerInExistingThread("1000")}, map[string]string{bestbot.ThreadedReplyOpt: "true", bestbot.ThreadTimestampOpt: "1000"}},
		{"lastOptionWins", []bestbot.AnswerOption{bestbot.AnswerInThread(), bestbot.AnswerWithoutThreading()}, map[string]string{bestbot.ThreadedReplyOpt: "false"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := bestbot.ApplyAnswerOpts(tc.options...)
			assert.Equal(t, tc.expectedConfig, c)
		})
	}
}
