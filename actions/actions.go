/*
Package actions provides a fluent API for creating bestbot plugin actions. Typical usages
will also involve using the plugin fluent API from github.com/alexandre-normand/bestbot/plugin.

A quick example could look like:

	import (
		"github.com/alexandre-normand/bestbot"
		"github.com/alexandre-normand/bestbot/actions"
		"github.com/alexandre-normand/bestbot/plugin"
		"github.com/alexandre-normand/bestbot/schedule"
	)

	func newPlugin() (p *bestbot.Plugin) {
		p = plugin.New("maker").
			WithCommand(actions.NewCommand().
				WithMatcher(func(m *bestbot.IncomingMessage) bool {
					return strings.HasPrefix(m.NormalizedText, "make")
				}).
				WithUsage("make <something>").
				WithDescription("Make the `<something>` you need").
				WithAnswerer(func(ctx context.Context, m *bestbot.IncomingMessage) *bestbot.Answer {
					return &bestbot.Answer{Text: ":white_check_mark: It's ready for you!"}
				}).
				Build()).
			WithScheduledAction(actions.NewScheduledAction().
				WithSchedule(schedule.Definition{Weekday: time.Monday.String(), AtTime: "10:00"}).
				WithDescription("Start the week off").
				WithAction(weeklyKickoff).
				Build()).
			Build()
		return p
	}
*/
package actions

import (
	"context"
	"fmt"

	"github.com/alexandre-normand/bestbot"
	"github.com/alexandre-normand/bestbot/schedule"
)

// ActionBuilder holds the action to build
type ActionBuilder struct {
	action bestbot.ActionDefinition
}

// ScheduledActionBuilder holds the scheduled action to build
type ScheduledActionBuilder struct {
	scheduledAction bestbot.ScheduledActionDefinition
}

var (
	// Default to always match. A matching command returning nil counts as handled so commands relying on
	// this default must always answer or send something
	defaultMatcher = func(m *bestbot.IncomingMessage) bool {
		return true
	}

	// Default to always return nil. This is not a default you want to use in most cases
	defaultAnswerer = func(ctx context.Context, m *bestbot.IncomingMessage) *bestbot.Answer {
		return nil
	}
)

// NewCommand returns a new ActionBuilder to build a new command. When done with the setup, the caller
// is expected to call Build() to get the action
func NewCommand() (ab *ActionBuilder) {
	ab = new(ActionBuilder)
	ab.action = bestbot.ActionDefinition{Hidden: false}

	ab.action.Match = defaultMatcher
	ab.action.Answer = defaultAnswerer

	return ab
}

// WithMatcher sets the action's matcher function
func (ab *ActionBuilder) WithMatcher(matcher bestbot.Matcher) *ActionBuilder {
	ab.action.Match = matcher
	return ab
}

// WithUsage sets the action usage
func (ab *ActionBuilder) WithUsage(usage string) *ActionBuilder {
	ab.action.Usage = usage
	return ab
}

// WithDescription sets the action description
func (ab *ActionBuilder) WithDescription(description string) *ActionBuilder {
	ab.action.Description = description
	return ab
}

// WithDescriptionf sets the action description delegating format and arguments to fmt.Sprintf
func (ab *ActionBuilder) WithDescriptionf(format string, a ...interface{}) *ActionBuilder {
	ab.action.Description = fmt.Sprintf(format, a...)
	return ab
}

// WithAnswerer sets the action's answerer function
func (ab *ActionBuilder) WithAnswerer(answerer bestbot.Answerer) *ActionBuilder {
	ab.action.Answer = answerer
	return ab
}

// Hidden sets the action to hidden
func (ab *ActionBuilder) Hidden() *ActionBuilder {
	ab.action.Hidden = true
	return ab
}

// Build returns the ActionDefinition
func (ab *ActionBuilder) Build() bestbot.ActionDefinition {
	return ab.action
}

// NewScheduledAction returns a new ScheduledActionBuilder to build a new ScheduledActionDefinition
func NewScheduledAction() (sab *ScheduledActionBuilder) {
	sab = new(ScheduledActionBuilder)
	sab.scheduledAction = bestbot.ScheduledActionDefinition{Hidden: false}
	sab.scheduledAction.Action = func(ctx context.Context) {}

	return sab
}

// WithSchedule sets the schedule for the scheduled action
func (sab *ScheduledActionBuilder) WithSchedule(schedule schedule.Definition) *ScheduledActionBuilder {
	sab.scheduledAction.Schedule = schedule
	return sab
}

// WithDescription sets the scheduled action description
func (sab *ScheduledActionBuilder) WithDescription(desc string) *ScheduledActionBuilder {
	sab.scheduledAction.Description = desc
	return sab
}

// WithDescriptionf sets the scheduled action description delegating format and arguments to fmt.Sprintf
func (sab *ScheduledActionBuilder) WithDescriptionf(format string, a ...interface{}) *ScheduledActionBuilder {
	sab.scheduledAction.Description = fmt.Sprintf(format, a...)
	return sab
}

// WithAction sets the action function to run on schedule
func (sab *ScheduledActionBuilder) WithAction(action bestbot.ScheduledAction) *ScheduledActionBuilder {
	sab.scheduledAction.Action = action
	return sab
}

// Hidden sets the scheduled action to hidden
func (sab *ScheduledActionBuilder) Hidden() *ScheduledActionBuilder {
	sab.scheduledAction.Hidden = true
	return sab
}

// Build returns the ScheduledActionDefinition
func (sab *ScheduledActionBuilder) Build() bestbot.ScheduledActionDefinition {
	return sab.scheduledAction
}
