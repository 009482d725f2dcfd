/*
Package bestbot provides a slack bot compiling message stats of a team's channels.

It is built on a small plugin engine: plugins combine commands and scheduled actions and get
services injected when the bot starts:
  - SLogger: To log debug/info statements
  - UserInfoFinder: To query user info through a cache
  - Sender: To send messages outside the normal answer flow (i.e. many messages or messages sent by a scheduled action)
  - Meter: To create the plugin's instruments

Commands are messages mentioning the bot (<@bot> msgstats), starting with the configured command
prefix (!msgstats) or sent to the bot in a direct message. Only one command or scheduled action
runs at a time.

Example code (see cmd/bestbot for the full command-line):

	package main

	import (
		"context"
		"log"

		"github.com/alexandre-normand/bestbot"
		"github.com/alexandre-normand/bestbot/config"
		"github.com/alexandre-normand/bestbot/plugins"
	)

	func main() {
		v := config.NewViperWithDefaults()
		client := bestbot.NewSlackClient(v, logger)

		bot, err := bestbot.NewBot("bestbot", v, bestbot.OptionLogger(logger), bestbot.OptionSlackClient(client)).
			WithConfigurablePluginErr(plugins.MsgStatsPluginName, func(c *config.PluginConfig) (*bestbot.Plugin, error) {
				ms, err := plugins.NewMsgStats(c, client)
				if err != nil {
					return nil, err
				}
				return &ms.Plugin, nil
			}).
			Build()
		if err != nil {
			log.Fatal(err)
		}

		if err = bot.Run(context.Background()); err != nil {
			log.Fatal(err)
		}
	}
*/
package bestbot
