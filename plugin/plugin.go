// Package plugin provides a fluent API for assembling bestbot plugins from commands and scheduled actions
package plugin

import (
	"github.com/alexandre-normand/bestbot"
)

// PluginBuilder holds a plugin to build
type PluginBuilder struct {
	plugin *bestbot.Plugin
}

// New creates a new PluginBuilder with a plugin with the given name and empty set of actions
func New(name string) (pb *PluginBuilder) {
	pb = new(PluginBuilder)
	pb.plugin = new(bestbot.Plugin)
	pb.plugin.Name = name
	pb.plugin.Commands = make([]bestbot.ActionDefinition, 0)
	pb.plugin.ScheduledActions = make([]bestbot.ScheduledActionDefinition, 0)

	return pb
}

// Into builds onto an existing plugin instance instead of a new one. Useful for plugins embedding
// bestbot.Plugin in a struct holding their state
func Into(p *bestbot.Plugin, name string) (pb *PluginBuilder) {
	pb = New(name)
	*p = *pb.plugin
	pb.plugin = p

	return pb
}

// WithCommand adds a command to the plugin
func (pb *PluginBuilder) WithCommand(command bestbot.ActionDefinition) *PluginBuilder {
	pb.plugin.Commands = append(pb.plugin.Commands, command)
	return pb
}

// WithScheduledAction adds a scheduled action to the plugin
func (pb *PluginBuilder) WithScheduledAction(scheduledAction bestbot.ScheduledActionDefinition) *PluginBuilder {
	pb.plugin.ScheduledActions = append(pb.plugin.ScheduledActions, scheduledAction)
	return pb
}

// Build returns the created Plugin instance
func (pb *PluginBuilder) Build() (p *bestbot.Plugin) {
	return pb.plugin
}
