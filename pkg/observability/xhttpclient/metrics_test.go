package xhttpclient

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumByOutcome(t *testing.T, agg metricdata.Aggregation) map[string]int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok)
	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(attrOutcome))
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestMetrics_RecordsOutcomes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	f := newFixture(t)
	i := f.interceptor(t, WithMeterProvider(mp), WithTracePropagationTargets("api.example.com"))

	ok := f.request(t, f.ctx, http.MethodGet, "https://api.example.com/a")
	resp, err := i.RoundTripper(&recordingTransport{status: http.StatusOK}).RoundTrip(ok)
	require.NoError(t, err)
	resp.Body.Close()

	other := f.request(t, f.ctx, http.MethodGet, "https://other.org/b")
	resp, err = i.RoundTripper(&recordingTransport{status: http.StatusBadGateway}).RoundTrip(other)
	require.NoError(t, err)
	resp.Body.Close()

	failed := f.request(t, f.ctx, http.MethodGet, "https://api.example.com/c")
	_, err = i.RoundTripper(&recordingTransport{err: errors.New("reset")}).RoundTrip(failed)
	require.Error(t, err)

	data := collect(t, reader)

	requests := sumByOutcome(t, data[metricRequests])
	assert.Equal(t, int64(2), requests[outcomeResponse])
	assert.Equal(t, int64(1), requests[outcomeError])

	props, ok2 := data[metricPropagations].(metricdata.Sum[int64])
	require.True(t, ok2)
	var total int64
	for _, dp := range props.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	hist, ok3 := data[metricDuration].(metricdata.Histogram[float64])
	require.True(t, ok3)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
}
