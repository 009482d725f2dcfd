// Package assertanswer provides testing functions to validate the *bestbot.Answer returned by a command.
// Answers are checked on their text and on how the bot would thread them once sent
package assertanswer

import (
	"testing"

	"github.com/alexandre-normand/bestbot"
	"github.com/stretchr/testify/assert"
)

// HasText asserts that the answer's text is the expected text
func HasText(t *testing.T, answer *bestbot.Answer, text string) bool {
	if !assert.NotNil(t, answer, "Expected an answer with text [%s]", text) {
		return false
	}

	return assert.Equalf(t, text, answer.Text, "Answer text expected to be [%s] but was [%s]", text, answer.Text)
}

// HasTextContaining asserts that the answer's text contains every one of the expected snippets
func HasTextContaining(t *testing.T, answer *bestbot.Answer, snippets ...string) (ok bool) {
	if !assert.NotNil(t, answer, "Expected an answer containing %q", snippets) {
		return false
	}

	ok = true
	for _, s := range snippets {
		ok = assert.Containsf(t, answer.Text, s, "Answer expected to contain [%s] but its text was [%s]", s, answer.Text) && ok
	}

	return ok
}

// IsThreaded asserts that the answer is sent as a thread reply. An empty threadTimestamp only checks
// that threading is requested, leaving the thread to the message being answered
func IsThreaded(t *testing.T, answer *bestbot.Answer, threadTimestamp string) bool {
	if !assert.NotNil(t, answer) {
		return false
	}

	opts := bestbot.ApplyAnswerOpts(answer.Options...)
	if !assert.Equalf(t, "true", opts[bestbot.ThreadedReplyOpt], "Answer expected to be threaded but options were %v", opts) {
		return false
	}

	if threadTimestamp == "" {
		return true
	}

	return assert.Equalf(t, threadTimestamp, opts[bestbot.ThreadTimestampOpt], "Answer expected in thread [%s] but options were %v", threadTimestamp, opts)
}

// IsNotThreaded asserts that the answer is posted directly on the channel
func IsNotThreaded(t *testing.T, answer *bestbot.Answer) bool {
	if !assert.NotNil(t, answer) {
		return false
	}

	opts := bestbot.ApplyAnswerOpts(answer.Options...)

	return assert.NotEqualf(t, "true", opts[bestbot.ThreadedReplyOpt], "Answer expected on the channel but options were %v", opts)
}
