package bestbot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeterProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

// findMetric collects all metrics from reader and returns the one with the given name
func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (m metricdata.Metrics, found bool) {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}

	return metricdata.Metrics{}, false
}

// counterValue returns the sum of all data points of an int64 counter
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) (total int64) {
	m, found := findMetric(t, reader, name)
	if !found {
		return 0
	}

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric [%s] isn't an int64 sum", name)

	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

// histogramCount returns the number of recorded values of an int64 histogram
func histogramCount(t *testing.T, reader *sdkmetric.ManualReader, name string) (count uint64) {
	m, found := findMetric(t, reader, name)
	if !found {
		return 0
	}

	h, ok := m.Data.(metricdata.Histogram[int64])
	require.True(t, ok, "metric [%s] isn't an int64 histogram", name)

	for _, dp := range h.DataPoints {
		count += dp.Count
	}

	return count
}
