package bestbot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/alexandre-normand/bestbot/config"
	"github.com/alexandre-normand/bestbot/schedule"
	"github.com/marcsantiago/gocron"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// VERSION is the engine version shown by the help command
const VERSION = "1.0.0"

const (
	defaultActionID = "default"
	directChannel   = 'D'
	instrumentation = "github.com/alexandre-normand/bestbot"
)

// ErrInvalidCredentials is returned by Run when slack rejects the configured token
var ErrInvalidCredentials = errors.New("invalid credentials")

// Bot represents what defines a bestbot (mostly, a name and its plugins)
type Bot struct {
	name          string
	config        *viper.Viper
	defaultAction Answerer
	plugins       []*Plugin

	// Internal state as an optimization when looping through all commands
	commandsWithID []ActionDefinitionWithID

	selfID        string
	selfName      string
	commandPrefix string
	mention       *regexp.Regexp

	logger        *zap.Logger
	log           SLogger
	meterProvider metric.MeterProvider
	ins           *instrumenter
	client        *slack.Client
	services      BotServices

	// pipeline is held while a command or a scheduled action runs so that only one runs at a time
	pipeline sync.Mutex
}

// Plugin represents a plugin (its name, action definitions and the services injected on registration)
type Plugin struct {
	Name             string
	Commands         []ActionDefinition
	ScheduledActions []ScheduledActionDefinition

	BotServices
}

// BotServices holds the services injected into plugins when the bot starts
type BotServices struct {
	// Logger to log debug/info statements
	Logger SLogger

	// UserInfoFinder finds user info through a cache
	UserInfoFinder UserInfoFinder

	// Sender sends messages outside of the answer flow (i.e. many messages or messages sent by a scheduled action)
	Sender Sender

	// Meter creates the plugin's instruments
	Meter metric.Meter
}

// ActionDefinition represents how an action is triggered, published, used and described
// along with defining the function defining its behavior
type ActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	// Matcher that will determine whether or not the action should be triggered
	Match Matcher

	// Usage example
	Usage string

	// Help description for the action
	Description string

	// Function to execute if the Matcher matches
	Answer Answerer
}

// ActionDefinitionWithID holds an action definition along with its identifier string and the plugin it belongs to
type ActionDefinitionWithID struct {
	ActionDefinition
	id     string
	plugin string
}

// IncomingMessage holds a normalized text (without the bot mention or command prefix) along with
// the original slack message
type IncomingMessage struct {
	NormalizedText string
	slack.Msg
}

// Matcher is the function that determines whether or not an action should be triggered. Note that a match doesn't guarantee that the action should
// actually respond with anything once invoked
type Matcher func(m *IncomingMessage) bool

// Answerer is what gets executed when an ActionDefinition is triggered. A nil Answer means nothing is sent back, which
// is what an action delivering its own messages through the Sender returns
type Answerer func(ctx context.Context, m *IncomingMessage) *Answer

// ScheduledActionDefinition represents when a scheduled action is triggered as well
// as what it does and how
type ScheduledActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	// Schedule definition determining when the action runs
	Schedule schedule.Definition

	// Help description for the scheduled action
	Description string

	// Action is the function that is invoked when the schedule activates
	Action ScheduledAction
}

// ScheduledAction is what gets executed when a ScheduledActionDefinition is triggered (by its ScheduleDefinition)
type ScheduledAction func(ctx context.Context)

// String returns a friendly description of a ScheduledActionDefinition
func (a ScheduledActionDefinition) String() string {
	return fmt.Sprintf("`%s` - %s", a.Schedule, a.Description)
}

// String returns a friendly description of an ActionDefinition
func (a ActionDefinition) String() string {
	return fmt.Sprintf("`%s` - %s", a.Usage, a.Description)
}

// outgoingAnswer holds a plugin generated answer along with the identifier of the action that generated it
type outgoingAnswer struct {
	*Answer

	// The identifier of the source of the answer. The format being: pluginName.c[commandIndex]
	actionID string
}

// Option defines an option for a Bot
type Option func(*Bot)

// OptionLogger sets the zap logger used by the bot and its plugins
func OptionLogger(logger *zap.Logger) func(*Bot) {
	return func(b *Bot) {
		b.logger = logger
	}
}

// OptionMeterProvider sets the meter provider used to create instruments. Defaults to the global provider
func OptionMeterProvider(mp metric.MeterProvider) func(*Bot) {
	return func(b *Bot) {
		b.meterProvider = mp
	}
}

// OptionSlackClient sets the slack client instead of creating one from the configuration on Run
func OptionSlackClient(client *slack.Client) func(*Bot) {
	return func(b *Bot) {
		b.client = client
	}
}

// New creates a new bestbot from a name, a configuration and options
func New(name string, v *viper.Viper, options ...Option) (b *Bot, err error) {
	b = &Bot{name: name, config: v, plugins: []*Plugin{}, logger: zap.NewNop(), meterProvider: otel.GetMeterProvider()}
	b.defaultAction = func(ctx context.Context, m *IncomingMessage) *Answer {
		return &Answer{Text: fmt.Sprintf("I don't understand, ask me for \"%s\" to get a list of things I do", helpPluginName)}
	}

	for _, opt := range options {
		opt(b)
	}

	b.log = NewSLogger(b.logger.Sugar(), v.GetBool(config.DebugKey))
	b.commandPrefix = v.GetString(config.CommandPrefixKey)

	if b.ins, err = newInstrumenter(name, b.meter()); err != nil {
		return nil, err
	}

	return b, nil
}

// NewSlackClient creates a slack client with the configured token, logging through logger
func NewSlackClient(v *viper.Viper, logger *zap.Logger) *slack.Client {
	return slack.New(
		v.GetString(config.TokenKey),
		slack.OptionDebug(v.GetBool(config.DebugKey)),
		slack.OptionLog(zap.NewStdLog(logger.Named("slack"))),
	)
}

// meter returns the bot's meter
func (b *Bot) meter() metric.Meter {
	return b.meterProvider.Meter(instrumentation)
}

// RegisterPlugin registers a plugin with the bestbot engine. This should be invoked
// prior to calling Run
func (b *Bot) RegisterPlugin(p *Plugin) {
	b.plugins = append(b.plugins, p)
}

// Run connects to slack and processes events until ctx is done or slack rejects the credentials. Scheduled actions
// run for as long as Run does
func (b *Bot) Run(ctx context.Context) (err error) {
	api := b.client
	if api == nil {
		api = NewSlackClient(b.config, b.logger)
	}

	if err = b.prepare(NewSender(api, b.config.GetInt(config.MaxMessageLengthKey)), api); err != nil {
		return err
	}

	timeLoc, err := config.GetTimeLocation(b.config)
	if err != nil {
		return err
	}

	sc, err := b.newScheduler(ctx, timeLoc)
	if err != nil {
		return err
	}

	_, t := sc.NextRun()
	b.log.Debugf("Starting scheduler with first job scheduled at [%s]", t)

	stopScheduler := sc.Start()
	defer close(stopScheduler)

	rtm := api.NewRTM()
	go rtm.ManageConnection()
	defer rtm.Disconnect()

	return b.handleIncomingEvents(ctx, rtm.IncomingEvents, rtm)
}

// prepare registers the help plugin now that all plugins are known and injects the bot services into every plugin
func (b *Bot) prepare(sender Sender, userLoader UserInfoFinder) (err error) {
	uf, err := NewCachingUserInfoFinder(b.config, userLoader, b.log)
	if err != nil {
		return err
	}

	tuf, err := NewUserInfoFinderWithTelemetry(uf, b.name, b.meter())
	if err != nil {
		return err
	}

	b.RegisterPlugin(&b.newHelpPlugin(VERSION).Plugin)

	b.services = BotServices{Logger: b.log, UserInfoFinder: tuf, Sender: sender, Meter: b.meter()}
	for _, p := range b.plugins {
		p.BotServices = b.services
	}

	b.attachIdentifiersToPluginActions()

	return nil
}

// handleIncomingEvents processes events sequentially until the events channel is closed, ctx is done or the credentials
// are rejected
func (b *Bot) handleIncomingEvents(ctx context.Context, events <-chan slack.RTMEvent, selfInfo selfInfoFinder) (err error) {
	for {
		select {
		case <-ctx.Done():
			b.log.Printf("Shutting down: %v", ctx.Err())
			return nil
		case msg, ok := <-events:
			if !ok {
				return nil
			}

			switch e := msg.Data.(type) {
			case *slack.ConnectedEvent:
				b.log.Printf("Connected (connection counter: %d)", e.ConnectionCount)
				b.cacheSelfIdentity(selfInfo)

			case *slack.MessageEvent:
				b.processMessageEvent(ctx, e)

			case *slack.LatencyReport:
				b.log.Debugf("Current latency: %v", e.Value)
				b.ins.slackLatencyMillis.Record(ctx, e.Value.Milliseconds(), b.ins.attrs)

			case *slack.RTMError:
				b.log.Printf("Error: %s", e.Error())

			case *slack.ConnectionErrorEvent:
				b.log.Printf("Connection error (attempt %d): %v", e.Attempt, e.ErrorObj)

			case *slack.InvalidAuthEvent:
				b.log.Printf("Invalid credentials")
				return ErrInvalidCredentials

			default:
				// Ignoring other events
			}
		}
	}
}

// attachIdentifiersToPluginActions attaches an action identifier to every plugin command and sets them accordingly
// in the internal state of the bot. The identifiers are generated as pluginName.c[pluginIndexOfTheCommand]
func (b *Bot) attachIdentifiersToPluginActions() {
	b.commandsWithID = make([]ActionDefinitionWithID, 0)

	for _, p := range b.plugins {
		for i, c := range p.Commands {
			b.commandsWithID = append(b.commandsWithID, ActionDefinitionWithID{ActionDefinition: c, id: fmt.Sprintf("%s.c[%d]", p.Name, i), plugin: p.Name})
		}
	}
}

// cacheSelfIdentity gets "our" identity and keeps the selfID and selfName to avoid having to look it up every time
func (b *Bot) cacheSelfIdentity(selfInfo selfInfoFinder) {
	info := selfInfo.GetInfo()
	if info == nil || info.User == nil {
		b.log.Printf("No self identity available, only direct messages and prefixed commands will be handled")
		return
	}

	b.selfID = info.User.ID
	b.selfName = info.User.Name
	b.mention = regexp.MustCompile("(?s)^(<@" + regexp.QuoteMeta(b.selfID) + ">|@?" + regexp.QuoteMeta(b.selfName) + "):? (.+)")

	b.log.Debugf("Caching self id [%s] and self name [%s]", b.selfID, b.selfName)
}

// newScheduler creates a scheduler with a job for every ScheduledActionDefinition of all plugins
func (b *Bot) newScheduler(ctx context.Context, timeLoc *time.Location) (sc *gocron.Scheduler, err error) {
	gocron.ChangeLoc(timeLoc)
	sc = gocron.NewScheduler()

	for _, p := range b.plugins {
		for _, sa := range p.ScheduledActions {
			j, err := schedule.NewJob(sc, sa.Schedule)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to schedule action [%s] of plugin [%s]", sa.Description, p.Name)
			}

			b.log.Debugf("Adding job [%s] of plugin [%s] to scheduler", sa.Schedule, p.Name)
			j.Do(func() {
				b.runScheduledAction(ctx, p.Name, sa)
			})
		}
	}

	return sc, nil
}

// runScheduledAction runs a scheduled action once no command or other scheduled action is running
func (b *Bot) runScheduledAction(ctx context.Context, pluginName string, sa ScheduledActionDefinition) {
	b.pipeline.Lock()
	defer b.pipeline.Unlock()

	b.log.Debugf("Running scheduled action [%s] of plugin [%s]", sa.Description, pluginName)
	sa.Action(ctx)

	b.ins.scheduledActionsExecuted.Add(ctx, 1, b.ins.pluginAttributes(pluginName))
}

// processMessageEvent handles high-level processing of all slack message events. Only new messages are considered,
// edits, deletions and other subtypes are ignored
func (b *Bot) processMessageEvent(ctx context.Context, msgEvent *slack.MessageEvent) {
	b.ins.msgsSeen.Add(ctx, 1, b.ins.attrs)

	// reply_to is set by slack when a sent message has been acknowledged. Those are ignored like all non-new messages
	if msgEvent.ReplyTo > 0 || msgEvent.Type != "message" || msgEvent.SubType != "" {
		b.log.Debugf("Ignoring event [%s] of subtype [%s]", msgEvent.Type, msgEvent.SubType)
		return
	}

	m := &msgEvent.Msg

	// Ignore messages sent by "us"
	if b.selfID != "" && (m.User == b.selfID || m.BotID == b.selfID) {
		b.log.Debugf("Ignoring message from user [%s] because that's \"us\" [%s]", m.User, b.selfID)
		return
	}

	text, isCommand := b.commandText(m)
	if !isCommand {
		return
	}

	b.pipeline.Lock()
	defer b.pipeline.Unlock()

	for _, o := range b.handleCommand(ctx, text, m) {
		b.sendAnswer(ctx, m, o)
	}
}

// commandText returns the normalized text of a message directed at "us". The rules are the following:
//  1. If the message is on a channel with a direct mention to us (@name), it's a command
//  2. If the message starts with the configured command prefix, it's a command
//  3. If the message is a direct message to us, it's a command
func (b *Bot) commandText(m *slack.Msg) (text string, isCommand bool) {
	if b.mention != nil {
		if matches := b.mention.FindStringSubmatch(m.Text); len(matches) == 3 {
			return matches[2], true
		}
	}

	if b.commandPrefix != "" && strings.HasPrefix(m.Text, b.commandPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(m.Text, b.commandPrefix)), true
	}

	if len(m.Channel) > 0 && m.Channel[0] == directChannel {
		return m.Text, true
	}

	return "", false
}

// handleCommand tries a match with all known commands. If none matches, the default action is invoked. Matching
// commands returning no answer still count as handled
func (b *Bot) handleCommand(ctx context.Context, text string, m *slack.Msg) (answers []*outgoingAnswer) {
	answers = make([]*outgoingAnswer, 0)
	inMsg := &IncomingMessage{NormalizedText: text, Msg: *m}

	matched := false
	for _, action := range b.commandsWithID {
		if !action.Match(inMsg) {
			continue
		}
		matched = true

		var a *Answer
		d := measure(func() {
			a = action.Answer(ctx, inMsg)
		})
		b.ins.recordCommand(ctx, action.plugin, action.id, d)
		b.log.Debugf("Command [%s] processed in %s", action.id, d)

		if a != nil {
			answers = append(answers, &outgoingAnswer{Answer: a, actionID: action.id})
		}
	}

	if !matched {
		answers = append(answers, &outgoingAnswer{Answer: b.defaultAction(ctx, inMsg), actionID: defaultActionID})
	}

	return answers
}

// sendAnswer sends an answer on the channel of the triggering message. Threaded answers without an explicit thread
// go to the thread of the triggering message
func (b *Bot) sendAnswer(ctx context.Context, m *slack.Msg, o *outgoingAnswer) {
	options := o.Options
	sendOpts := ApplyAnswerOpts(options...)
	if sendOpts[ThreadedReplyOpt] == "true" && sendOpts[ThreadTimestampOpt] == "" {
		options = append(options, AnswerInExistingThread(threadTimestamp(m)))
	}

	if err := b.services.Sender.Send(ctx, m.Channel, o.Text, options...); err != nil {
		b.log.Printf("Unable to send answer of [%s] to [%s]: %v", o.actionID, m.Channel, err)
	}
}

// threadTimestamp returns the timestamp of the thread a message belongs to or its own timestamp if it's not in a thread
func threadTimestamp(m *slack.Msg) string {
	if m.ThreadTimestamp != "" {
		return m.ThreadTimestamp
	}

	return m.Timestamp
}
