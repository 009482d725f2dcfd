package bestbot

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instrumenter holds data for core instrumentation
type instrumenter struct {
	appName string
	attrs   metric.MeasurementOption

	msgsSeen                 metric.Int64Counter
	commandsProcessed        metric.Int64Counter
	commandLatencyMillis     metric.Int64Histogram
	scheduledActionsExecuted metric.Int64Counter
	slackLatencyMillis       metric.Int64Histogram
}

// newInstrumenter creates a new core instrumenter
func newInstrumenter(appName string, meter metric.Meter) (ins *instrumenter, err error) {
	ins = new(instrumenter)
	ins.appName = appName
	ins.attrs = metric.WithAttributes(attribute.String("name", appName))

	if ins.msgsSeen, err = meter.Int64Counter("msgSeen"); err != nil {
		return nil, errors.Wrap(err, "failed to create msgSeen counter")
	}

	if ins.commandsProcessed, err = meter.Int64Counter("commandProcessed"); err != nil {
		return nil, errors.Wrap(err, "failed to create commandProcessed counter")
	}

	if ins.commandLatencyMillis, err = meter.Int64Histogram("commandLatencyMillis", metric.WithUnit("ms")); err != nil {
		return nil, errors.Wrap(err, "failed to create commandLatencyMillis histogram")
	}

	if ins.scheduledActionsExecuted, err = meter.Int64Counter("scheduledActionExecuted"); err != nil {
		return nil, errors.Wrap(err, "failed to create scheduledActionExecuted counter")
	}

	if ins.slackLatencyMillis, err = meter.Int64Histogram("slackLatencyMillis", metric.WithUnit("ms")); err != nil {
		return nil, errors.Wrap(err, "failed to create slackLatencyMillis histogram")
	}

	return ins, nil
}

// actionAttributes returns the measurement attributes of a plugin action
func (ins *instrumenter) actionAttributes(pluginName string, actionID string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("name", ins.appName), attribute.String("plugin", pluginName), attribute.String("action", actionID))
}

// pluginAttributes returns the measurement attributes of a plugin
func (ins *instrumenter) pluginAttributes(pluginName string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("name", ins.appName), attribute.String("plugin", pluginName))
}

// recordCommand records the processing of a command by a plugin action
func (ins *instrumenter) recordCommand(ctx context.Context, pluginName string, actionID string, d time.Duration) {
	attrs := ins.actionAttributes(pluginName, actionID)
	ins.commandsProcessed.Add(ctx, 1, attrs)
	ins.commandLatencyMillis.Record(ctx, d.Milliseconds(), attrs)
}

type timed func()

// measure returns the execution duration of a timed function
func measure(operation timed) (d time.Duration) {
	before := time.Now()

	operation()

	return time.Since(before)
}
