package bestbot

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// UserInfoFinderWithTelemetry implements UserInfoFinder with calls wrapped with open telemetry timing and count metrics
type UserInfoFinderWithTelemetry struct {
	base          UserInfoFinder
	attrs         metric.MeasurementOption
	calls         metric.Int64Counter
	errs          metric.Int64Counter
	latencyMillis metric.Int64Histogram
}

// NewUserInfoFinderWithTelemetry returns an instance of the UserInfoFinder decorated with open telemetry timing and count metrics
func NewUserInfoFinderWithTelemetry(base UserInfoFinder, name string, meter metric.Meter) (uf *UserInfoFinderWithTelemetry, err error) {
	uf = &UserInfoFinderWithTelemetry{base: base, attrs: metric.WithAttributes(attribute.String("name", name))}

	if uf.calls, err = meter.Int64Counter("userInfoFinder_GetUserInfo_Calls"); err != nil {
		return nil, errors.Wrap(err, "failed to create user info calls counter")
	}

	if uf.errs, err = meter.Int64Counter("userInfoFinder_GetUserInfo_Errors"); err != nil {
		return nil, errors.Wrap(err, "failed to create user info errors counter")
	}

	if uf.latencyMillis, err = meter.Int64Histogram("userInfoFinder_GetUserInfo_ProcessingTimeMillis", metric.WithUnit("ms")); err != nil {
		return nil, errors.Wrap(err, "failed to create user info latency histogram")
	}

	return uf, nil
}

// GetUserInfo implements UserInfoFinder
func (f *UserInfoFinderWithTelemetry) GetUserInfo(userID string) (user *slack.User, err error) {
	since := time.Now()
	defer func() {
		ctx := context.Background()
		if err != nil {
			f.errs.Add(ctx, 1, f.attrs)
		}

		f.calls.Add(ctx, 1, f.attrs)
		f.latencyMillis.Record(ctx, time.Since(since).Milliseconds(), f.attrs)
	}()

	return f.base.GetUserInfo(userID)
}
