package plugin_test

import (
	"testing"

	"github.com/alexandre-normand/bestbot"
	"github.com/alexandre-normand/bestbot/actions"
	"github.com/alexandre-normand/bestbot/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNewPlugin(t *testing.T) {
	p := plugin.New("loopy").Build()

	require.NotNil(t, p)
	assert.Equal(t, "loopy", p.Name)
	assert.Empty(t, p.Commands)
	assert.Empty(t, p.ScheduledActions)
}

func TestPluginWithSingleCommand(t *testing.T) {
	p := plugin.New("loopy").
		WithCommand(actions.NewCommand().Build()).
		Build()

	require.NotNil(t, p)
	assert.Len(t, p.Commands, 1)
	assert.Empty(t, p.ScheduledActions)
}

func TestPluginWithManyCommands(t *testing.T) {
	p := plugin.New("loopy").
		WithCommand(actions.NewCommand().WithUsage("command1").Build()).
		WithCommand(actions.NewCommand().WithUsage("command2").Build()).
		Build()

	require.NotNil(t, p)
	require.Len(t, p.Commands, 2)
	assert.Equal(t, "command1", p.Commands[0].Usage)
	assert.Equal(t, "command2", p.Commands[1].Usage)
	assert.Empty(t, p.ScheduledActions)
}

func TestPluginWithScheduledActions(t *testing.T) {
	p := plugin.New("loopy").
		WithScheduledAction(actions.NewScheduledAction().WithDescription("Check service status").Build()).
		Build()

	require.NotNil(t, p)
	require.Len(t, p.ScheduledActions, 1)
	assert.Equal(t, "Check service status", p.ScheduledActions[0].Description)
}

type statefulPlugin struct {
	bestbot.Plugin
	count int
}

func TestBuildIntoExistingPlugin(t *testing.T) {
	sp := &statefulPlugin{count: 3}

	p := plugin.Into(&sp.Plugin, "stateful").
		WithCommand(actions.NewCommand().WithUsage("count").Build()).
		Build()

	assert.Same(t, &sp.Plugin, p)
	assert.Equal(t, "stateful", sp.Name)
	require.Len(t, sp.Commands, 1)
	assert.Equal(t, "count", sp.Commands[0].Usage)
	assert.Equal(t, 3, sp.count)
}
