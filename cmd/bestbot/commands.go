package main

import (
	"fmt"

	"github.com/alexandre-normand/bestbot"
	"github.com/alexandre-normand/bestbot/config"
	"github.com/alexandre-normand/bestbot/export"
	"github.com/alexandre-normand/bestbot/plugins"
	"github.com/alexandre-normand/bestbot/render"
	"github.com/alexandre-normand/bestbot/slackplatform"
	"github.com/alexandre-normand/bestbot/stats"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
)

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to slack and answer commands until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			client := bestbot.NewSlackClient(a.v, a.logger)

			bot, err := bestbot.NewBot(name, a.v, bestbot.OptionLogger(a.logger), bestbot.OptionSlackClient(client)).
				WithConfigurablePluginErr(plugins.MsgStatsPluginName, func(c *config.PluginConfig) (*bestbot.Plugin, error) {
					ms, err := plugins.NewMsgStats(c, client)
					if err != nil {
						return nil, err
					}

					return &ms.Plugin, nil
				}).
				Build()
			if err != nil {
				return errors.Wrap(err, "failed to set up bot")
			}

			a.log.Printf("Starting %s v%s", name, bestbot.VERSION)

			return bot.Run(ctx)
		},
	}
}

// newPlatform returns the slack stats platform resolving user names through the cache
func (a *app) newPlatform() (client *slack.Client, platform *slackplatform.Platform, err error) {
	client = bestbot.NewSlackClient(a.v, a.logger)

	uf, err := bestbot.NewCachingUserInfoFinder(a.v, client, a.log)
	if err != nil {
		return nil, nil, err
	}

	return client, slackplatform.New(client, uf, a.log), nil
}

func newExportCommand(a *app) *cobra.Command {
	var channelID string
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the messages of a channel to a csv file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			if dir == "" {
				dir = config.GetPluginConfigOrEmpty(a.v, plugins.MsgStatsPluginName).GetString(plugins.ExportPathKey)
			}
			if dir == "" {
				dir = defaultExportDir
			}

			exporter, err := export.NewCSVExporter(dir)
			if err != nil {
				return err
			}

			_, platform, err := a.newPlatform()
			if err != nil {
				return err
			}

			cs, err := stats.NewScraper(platform, a.log, stats.OptionExporter(exporter)).Scrape(ctx, stats.Channel{ID: channelID, Name: channelID}, true)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d messages to %s\n", len(cs.Messages), cs.ExportPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&channelID, "channel", "", "id of the channel to export")
	cmd.Flags().StringVar(&dir, "dir", "", "directory of the export files (defaults to plugins.msgstats.exportPath)")
	cobra.CheckErr(cmd.MarkFlagRequired("channel"))

	return cmd
}

const defaultExportDir = "~/bestbot/results"

func newReportCommand(a *app) *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compile message stats of all channels and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			key, err := stats.ParseSortKey(sortBy)
			if err != nil {
				return err
			}

			_, platform, err := a.newPlatform()
			if err != nil {
				return err
			}

			r, err := stats.NewCompiler(platform, stats.NewScraper(platform, a.log), a.log).Compile(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), render.Table(render.Sort(r.Stats, key)))
			fmt.Fprintln(cmd.OutOrStdout(), render.Summary(r))

			return nil
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", string(stats.DefaultSortKey), "sort key, one of count, delta, chars, percent, increase, average")

	return cmd
}
