package bestbot

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alexandre-normand/bestbot/config"
)

type helpPlugin struct {
	Plugin

	name                   string
	engineVersion          string
	timeLocation           string
	commands               []ActionDefinition
	pluginScheduledActions []pluginScheduledAction
	prefix                 string
}

const (
	helpPluginName = "help"
)

// pluginScheduledAction represents a plugin's scheduled action with the plugin name and the action's definition
type pluginScheduledAction struct {
	plugin string
	ScheduledActionDefinition
}

func (b *Bot) newHelpPlugin(version string) *helpPlugin {
	commands, scheduledActions := findAllActions(b.plugins)

	helpPlugin := new(helpPlugin)
	helpPlugin.timeLocation = b.config.GetString(config.TimeLocationKey)
	helpPlugin.name = b.name
	helpPlugin.engineVersion = version
	helpPlugin.commands = commands
	helpPlugin.pluginScheduledActions = scheduledActions
	helpPlugin.prefix = b.commandPrefix

	helpPlugin.Plugin = Plugin{Name: helpPluginName, Commands: []ActionDefinition{{
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "help")
		},
		Usage:       helpPluginName,
		Description: "Reply with usage instructions",
		Answer:      helpPlugin.showHelp,
	}}}
	helpPlugin.commands = append(helpPlugin.commands, helpPlugin.Plugin.Commands...)

	return helpPlugin
}

// showHelp generates a message providing a list of all of the bot commands and scheduled actions.
// Note that definitions with the flag Hidden set to true won't be included in the list
func (h *helpPlugin) showHelp(ctx context.Context, m *IncomingMessage) *Answer {
	var b strings.Builder

	userID := m.User
	user, err := h.UserInfoFinder.GetUserInfo(userID)
	if err != nil {
		h.Logger.Debugf("Error getting user info for user id [%s] so skipping mentioning the name (it would be awkward): %v", userID, err)
		fmt.Fprintf(&b, "🤝 I'm `%s` (engine `v%s`). ", h.name, h.engineVersion)
	} else {
		fmt.Fprintf(&b, "🤝 You're `%s` and I'm `%s` (engine `v%s`). ", user.RealName, h.name, h.engineVersion)
	}

	fmt.Fprintf(&b, "I listen to the team's chat and compile message stats :bar_chart:.\n")

	if len(h.commands) > 0 {
		fmt.Fprintf(&b, "\nI currently support the following commands:\n")

		appendActions(&b, h.prefix, h.commands)
	}

	if len(h.pluginScheduledActions) > 0 {
		fmt.Fprintf(&b, "\nAnd do those things periodically:\n")

		appendScheduledActions(&b, h.timeLocation, h.pluginScheduledActions)
	}

	return &Answer{Text: b.String(), Options: []AnswerOption{AnswerInThread()}}
}

func appendActions(w io.Writer, prefix string, actions []ActionDefinition) {
	for _, value := range actions {
		if value.Usage != "" {
			fmt.Fprintf(w, "\t• `%s%s` - %s\n", prefix, value.Usage, value.Description)
		}
	}
}

func appendScheduledActions(w io.Writer, timeLocationName string, scheduledActions []pluginScheduledAction) {
	for _, value := range scheduledActions {
		fmt.Fprintf(w, "\t• [`%s`] `%s` (`%s`) - %s\n", value.plugin, value.Schedule, timeLocationName, value.Description)
	}
}

// findAllActions returns the visible commands and scheduled actions of all plugins, in registration order
func findAllActions(plugins []*Plugin) (commands []ActionDefinition, pluginScheduledActions []pluginScheduledAction) {
	commands = make([]ActionDefinition, 0)
	pluginScheduledActions = make([]pluginScheduledAction, 0)

	for _, p := range plugins {
		for _, a := range p.Commands {
			if !a.Hidden {
				commands = append(commands, a)
			}
		}

		for _, sa := range p.ScheduledActions {
			if !sa.Hidden {
				pluginScheduledActions = append(pluginScheduledActions, pluginScheduledAction{plugin: p.Name, ScheduledActionDefinition: sa})
			}
		}
	}

	return commands, pluginScheduledActions
}
