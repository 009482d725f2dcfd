// Package assertaction provides testing functions for validation a plugin action's behavior
package assertaction

import (
	"context"
	"testing"

	"github.com/alexandre-normand/bestbot"
	"github.com/stretchr/testify/assert"
)

// AnswerValidator is a function to do further validation of an action's answer. The return value is meant to be true if validation
// is successful and false otherwise (following the testify convention)
type AnswerValidator func(t *testing.T, a *bestbot.Answer) bool

// MatchesAndAnswers asserts that the action.Match is true and gets the action's answer to be further validated by AnswerValidator
func MatchesAndAnswers(t *testing.T, action bestbot.ActionDefinition, m *bestbot.IncomingMessage, validateAnswer AnswerValidator) bool {
	if !assert.Truef(t, action.Match(m), "Message [%s] expected to match but action.Match returned false", m.NormalizedText) {
		return false
	}

	return validateAnswer(t, action.Answer(context.Background(), m))
}

// NotMatch asserts that action.Match is false
func NotMatch(t *testing.T, action bestbot.ActionDefinition, m *bestbot.IncomingMessage) bool {
	return assert.Falsef(t, action.Match(m), "Message [%s] should not be a match but action.Match returned true", m.NormalizedText)
}
