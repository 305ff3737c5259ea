package xhttpclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/omeyang/xoutbound/xhttpclient"

	metricRequests     = "xoutbound.http.client.requests"
	metricDuration     = "xoutbound.http.client.duration"
	metricPropagations = "xoutbound.http.client.propagations"

	attrMethod      = "http.request.method"
	attrOutcome     = "outcome"
	attrStatusClass = "http.response.status_class"
)

// 请求结局
const (
	outcomeResponse = "response"
	outcomeError    = "error"
	outcomeTimeout  = "timeout"
)

type clientMetrics struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	propagations metric.Int64Counter
}

func newClientMetrics(mp metric.MeterProvider) (*clientMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	requests, err := meter.Int64Counter(
		metricRequests,
		metric.WithDescription("instrumented outbound http requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xhttpclient: create counter failed: %w", err)
	}

	duration, err := meter.Float64Histogram(
		metricDuration,
		metric.WithDescription("outbound http request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xhttpclient: create histogram failed: %w", err)
	}

	propagations, err := meter.Int64Counter(
		metricPropagations,
		metric.WithDescription("outbound requests carrying propagation headers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xhttpclient: create counter failed: %w", err)
	}

	return &clientMetrics{requests: requests, duration: duration, propagations: propagations}, nil
}

// finished 记录一次终止事件，statusCode <= 0 表示没有响应
func (m *clientMetrics) finished(ctx context.Context, method, outcome string, statusCode int, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrOutcome, outcome),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.String(attrStatusClass, statusClass(statusCode)))
	}
	set := metric.WithAttributes(attrs...)
	m.requests.Add(ctx, 1, set)
	m.duration.Record(ctx, elapsed.Seconds(), set)
}

func (m *clientMetrics) propagated(ctx context.Context, method string) {
	m.propagations.Add(ctx, 1, metric.WithAttributes(attribute.String(attrMethod, method)))
}

// statusClass 200 -> "2xx"
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
