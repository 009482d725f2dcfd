// Package plugins provides the plugins of bestbot
package plugins

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexandre-normand/bestbot"
	"github.com/alexandre-normand/bestbot/actions"
	"github.com/alexandre-normand/bestbot/config"
	"github.com/alexandre-normand/bestbot/export"
	"github.com/alexandre-normand/bestbot/plugin"
	"github.com/alexandre-normand/bestbot/render"
	"github.com/alexandre-normand/bestbot/schedule"
	"github.com/alexandre-normand/bestbot/slackplatform"
	"github.com/alexandre-normand/bestbot/stats"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	// MsgStatsPluginName holds identifying name for the message stats plugin
	MsgStatsPluginName = "msgstats"

	statsCommand  = "msgstats"
	testCommand   = "test"
	exportCommand = "export"
)

// Configuration keys
const (
	ExportPathKey      = "exportPath"
	ChunkThresholdKey  = "chunkThreshold"
	DefaultSortKeyKey  = "defaultSortKey"
	ReportChannelIDKey = "reportChannelID"
	ReportWeekdayKey   = "reportWeekday"
	ReportAtTimeKey    = "reportAtTime"
)

const (
	defaultExportPath    = "~/bestbot/results"
	defaultReportWeekday = "Monday"
	defaultReportAtTime  = "10:00"
)

const (
	generatingMessage = "Generating message stats, hold on..."
	noMessagesMessage = "Sorry, I couldn't find any messages to compile stats from"
)

// MsgStats holds the plugin data for the message stats plugin
type MsgStats struct {
	bestbot.Plugin

	client          slackplatform.Client
	platform        stats.Platform
	now             func() time.Time
	exportPath      string
	chunkThreshold  int
	defaultSortKey  stats.SortKey
	reportChannelID string

	metricsOnce sync.Once
	metrics     *msgStatsMetrics
}

// MsgStatsOption defines an option for the MsgStats plugin
type MsgStatsOption func(ms *MsgStats)

// OptionPlatform sets the platform channels are read from instead of the slack one built with the client
func OptionPlatform(p stats.Platform) MsgStatsOption {
	return func(ms *MsgStats) {
		ms.platform = p
	}
}

// OptionClock sets the function used to read the current time when computing deltas
func OptionClock(now func() time.Time) MsgStatsOption {
	return func(ms *MsgStats) {
		ms.now = now
	}
}

// NewMsgStats creates a new instance of the MsgStats plugin reading channels with client
func NewMsgStats(c *config.PluginConfig, client slackplatform.Client, options ...MsgStatsOption) (ms *MsgStats, err error) {
	c.SetDefault(ExportPathKey, defaultExportPath)
	c.SetDefault(ChunkThresholdKey, render.DefaultChunkThreshold)
	c.SetDefault(DefaultSortKeyKey, string(stats.DefaultSortKey))
	c.SetDefault(ReportWeekdayKey, defaultReportWeekday)
	c.SetDefault(ReportAtTimeKey, defaultReportAtTime)

	ms = new(MsgStats)
	ms.client = client
	ms.now = time.Now
	ms.exportPath = c.GetString(ExportPathKey)
	ms.reportChannelID = c.GetString(ReportChannelIDKey)

	if ms.chunkThreshold = c.GetInt(ChunkThresholdKey); ms.chunkThreshold <= 0 {
		return nil, fmt.Errorf("invalid [%s] value [%d] for plugin [%s], it must be positive", ChunkThresholdKey, ms.chunkThreshold, MsgStatsPluginName)
	}

	if ms.defaultSortKey, err = stats.ParseSortKey(c.GetString(DefaultSortKeyKey)); err != nil {
		return nil, errors.Wrapf(err, "invalid [%s] for plugin [%s]", DefaultSortKeyKey, MsgStatsPluginName)
	}

	for _, opt := range options {
		opt(ms)
	}

	pb := plugin.Into(&ms.Plugin, MsgStatsPluginName).
		WithCommand(actions.NewCommand().
			WithMatcher(commandMatcher(statsCommand)).
			WithUsage(statsCommand + " [sortKey]").
			WithDescriptionf("Compile message stats of all channels, sorted by one of %s (default `%s`)", sortKeyNames(), ms.defaultSortKey).
			WithAnswerer(ms.compileStats).
			Build()).
		WithCommand(actions.NewCommand().
			WithMatcher(commandMatcher(exportCommand)).
			WithUsage(exportCommand).
			WithDescription("Export the messages of this channel to a file").
			WithAnswerer(ms.exportChannel).
			Build()).
		WithCommand(actions.NewCommand().
			Hidden().
			WithMatcher(commandMatcher(testCommand)).
			WithUsage(testCommand).
			WithDescription("Log the raw stats of this channel").
			WithAnswerer(ms.logChannelStats).
			Build())

	if ms.reportChannelID != "" {
		d, err := schedule.Weekly(c.GetString(ReportWeekdayKey), c.GetString(ReportAtTimeKey))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid weekly report schedule for plugin [%s]", MsgStatsPluginName)
		}

		pb.WithScheduledAction(actions.NewScheduledAction().
			WithSchedule(d).
			WithDescriptionf("Post the message stats to <#%s>", ms.reportChannelID).
			WithAction(ms.postWeeklyReport).
			Build())
	}

	return ms, nil
}

// commandMatcher returns a Matcher matching messages whose first word is name
func commandMatcher(name string) bestbot.Matcher {
	return func(m *bestbot.IncomingMessage) bool {
		fields := strings.Fields(m.NormalizedText)
		return len(fields) > 0 && fields[0] == name
	}
}

func sortKeyNames() string {
	names := make([]string, 0, len(stats.SortKeys))
	for _, k := range stats.SortKeys {
		names = append(names, fmt.Sprintf("`%s`", k))
	}

	return strings.Join(names, ", ")
}

// compileStats compiles stats over all channels and sends the table chunks followed by the summary
func (ms *MsgStats) compileStats(ctx context.Context, m *bestbot.IncomingMessage) *bestbot.Answer {
	key := ms.defaultSortKey
	if fields := strings.Fields(m.NormalizedText); len(fields) > 1 {
		k, err := stats.ParseSortKey(fields[1])
		if err != nil {
			return &bestbot.Answer{Text: err.Error()}
		}

		key = k
	}

	if err := ms.Sender.Send(ctx, m.Channel, generatingMessage); err != nil {
		ms.Logger.Printf("[%s] Failed to acknowledge stats request on [%s]: %v", MsgStatsPluginName, m.Channel, err)
		return nil
	}

	if err := ms.sendReport(ctx, m.Channel, key); err != nil {
		if errors.Cause(err) == stats.ErrNoMessages {
			return &bestbot.Answer{Text: noMessagesMessage}
		}

		return &bestbot.Answer{Text: fmt.Sprintf("Failed to generate message stats: %v", err)}
	}

	return nil
}

// postWeeklyReport sends the stats report to the configured report channel
func (ms *MsgStats) postWeeklyReport(ctx context.Context) {
	if err := ms.sendReport(ctx, ms.reportChannelID, ms.defaultSortKey); err != nil {
		ms.Logger.Printf("[%s] Failed to post weekly report to [%s]: %v", MsgStatsPluginName, ms.reportChannelID, err)
	}
}

// sendReport compiles stats and sends every reply to channelID, in order. It stops at the first failed delivery
func (ms *MsgStats) sendReport(ctx context.Context, channelID string, key stats.SortKey) (err error) {
	platform := ms.statsPlatform()
	compiler := stats.NewCompiler(platform, ms.newScraper(platform), ms.Logger)

	r, err := compiler.Compile(ctx)
	ms.instruments().recordReport(ctx, r)
	if err != nil {
		ms.Logger.Printf("[%s] Failed to compile stats: %v", MsgStatsPluginName, err)
		return err
	}

	for _, reply := range render.Replies(r, key, ms.chunkThreshold) {
		if err = ms.Sender.Send(ctx, channelID, reply); err != nil {
			ms.Logger.Printf("[%s] Failed to deliver stats to [%s]: %v", MsgStatsPluginName, channelID, err)
			return err
		}
	}

	return nil
}

// exportChannel scrapes the channel of the message and writes its messages to the export file
func (ms *MsgStats) exportChannel(ctx context.Context, m *bestbot.IncomingMessage) *bestbot.Answer {
	exporter, err := export.NewCSVExporter(ms.exportPath)
	if err != nil {
		return &bestbot.Answer{Text: fmt.Sprintf("Failed to export messages: %v", err)}
	}

	platform := ms.statsPlatform()
	ch := ms.channel(ctx, platform, m.Channel)

	cs, err := ms.newScraper(platform, stats.OptionExporter(exporter)).Scrape(ctx, ch, true)
	if err != nil {
		ms.Logger.Printf("[%s] Failed to export [%s]: %v", MsgStatsPluginName, ch.ID, err)
		return &bestbot.Answer{Text: fmt.Sprintf("Failed to export messages: %v", err)}
	}
	ms.instruments().recordScrape(ctx, cs)

	return &bestbot.Answer{Text: fmt.Sprintf("Exported %d messages of `%s` to `%s`", len(cs.Messages), ch.Name, cs.ExportPath)}
}

// logChannelStats scrapes the channel of the message and logs its raw per-author stats
func (ms *MsgStats) logChannelStats(ctx context.Context, m *bestbot.IncomingMessage) *bestbot.Answer {
	platform := ms.statsPlatform()
	ch := ms.channel(ctx, platform, m.Channel)

	cs, err := ms.newScraper(platform).Scrape(ctx, ch, false)
	if err != nil {
		ms.Logger.Printf("[%s] Failed to scrape [%s]: %v", MsgStatsPluginName, ch.ID, err)
	} else {
		ms.instruments().recordScrape(ctx, cs)

		for _, r := range cs.Stats.Records() {
			ms.Logger.Printf("[%s] [%s] %s (%s): count=%d delta=%d chars=%d", MsgStatsPluginName, ch.Name, r.Author.DisplayName(), r.Author.ID, r.Count, r.Delta, r.Chars)
		}
		ms.Logger.Printf("[%s] [%s] metadata: count=%d delta=%d chars=%d", MsgStatsPluginName, ch.Name, cs.Metadata.Count, cs.Metadata.Delta, cs.Metadata.Chars)
	}

	return &bestbot.Answer{Text: fmt.Sprintf("You are currently in: %s", ch.Name)}
}

// channel returns the channel with the given ID as listed by the platform. Channels that aren't listed (i.e. direct
// messages) are named after their ID
func (ms *MsgStats) channel(ctx context.Context, platform stats.Platform, channelID string) stats.Channel {
	channels, err := platform.Channels(ctx)
	if err != nil {
		ms.Logger.Debugf("[%s] Failed to list channels, naming [%s] after its id: %v", MsgStatsPluginName, channelID, err)
	}

	for _, ch := range channels {
		if ch.ID == channelID {
			return ch
		}
	}

	return stats.Channel{ID: channelID, Name: channelID}
}

func (ms *MsgStats) statsPlatform() stats.Platform {
	if ms.platform != nil {
		return ms.platform
	}

	return slackplatform.New(ms.client, ms.UserInfoFinder, ms.Logger)
}

func (ms *MsgStats) newScraper(platform stats.Platform, options ...stats.ScraperOption) *stats.Scraper {
	return stats.NewScraper(platform, ms.Logger, append([]stats.ScraperOption{stats.OptionClock(ms.now)}, options...)...)
}

// instruments returns the plugin's instruments, creating them from the injected meter on first use
func (ms *MsgStats) instruments() *msgStatsMetrics {
	ms.metricsOnce.Do(func() {
		meter := ms.Meter
		if meter == nil {
			meter = noop.NewMeterProvider().Meter(MsgStatsPluginName)
		}

		m, err := newMsgStatsMetrics(meter)
		if err != nil {
			ms.Logger.Printf("[%s] Failed to create instruments, metrics are disabled: %v", MsgStatsPluginName, err)
			m, _ = newMsgStatsMetrics(noop.NewMeterProvider().Meter(MsgStatsPluginName))
		}

		ms.metrics = m
	})

	return ms.metrics
}

// msgStatsMetrics holds the instruments of the message stats plugin
type msgStatsMetrics struct {
	channelsScraped metric.Int64Counter
	channelsSkipped metric.Int64Counter
	messagesScraped metric.Int64Counter
}

func newMsgStatsMetrics(meter metric.Meter) (m *msgStatsMetrics, err error) {
	m = new(msgStatsMetrics)

	if m.channelsScraped, err = meter.Int64Counter("msgstats_ChannelsScraped"); err != nil {
		return nil, errors.Wrap(err, "failed to create msgstats_ChannelsScraped counter")
	}

	if m.channelsSkipped, err = meter.Int64Counter("msgstats_ChannelsSkipped"); err != nil {
		return nil, errors.Wrap(err, "failed to create msgstats_ChannelsSkipped counter")
	}

	if m.messagesScraped, err = meter.Int64Counter("msgstats_MessagesScraped"); err != nil {
		return nil, errors.Wrap(err, "failed to create msgstats_MessagesScraped counter")
	}

	return m, nil
}

// recordReport records the channels and messages of a compiled report. Failed compilations have an empty report
func (m *msgStatsMetrics) recordReport(ctx context.Context, r stats.Report) {
	m.channelsScraped.Add(ctx, int64(r.ChannelsScraped))
	m.channelsSkipped.Add(ctx, int64(len(r.SkippedChannels)))
	m.messagesScraped.Add(ctx, int64(r.Metadata.Count))
}

func (m *msgStatsMetrics) recordScrape(ctx context.Context, cs stats.ChannelStats) {
	m.channelsScraped.Add(ctx, 1)
	m.messagesScraped.Add(ctx, int64(len(cs.Messages)))
}
