package xspan

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/omeyang/xoutbound/xspan"

// startMirror 为 s 开启对应的 OTel Span，未配置镜像时返回 nil
func (t *Tracer) startMirror(parent trace.Span, s *Span) trace.Span {
	if t == nil || t.mirror == nil {
		return nil
	}
	ctx := context.Background()
	if parent != nil {
		ctx = trace.ContextWithSpan(ctx, parent)
	}
	_, ms := t.mirror.Start(ctx, s.op,
		trace.WithTimestamp(s.start),
		trace.WithSpanKind(spanKind(s.op)),
		trace.WithAttributes(
			attribute.String("xspan.op", s.op),
			attribute.String("xspan.trace_id", s.traceID),
			attribute.String("xspan.span_id", s.spanID),
		),
	)
	return ms
}

func endMirror(ms trace.Span, snap Snapshot) {
	if ms == nil {
		return
	}
	if snap.Description != "" {
		ms.SetName(snap.Description)
	}
	attrs := make([]attribute.KeyValue, 0, len(snap.Data)+1)
	if snap.Status != "" {
		attrs = append(attrs, attribute.String("xspan.status", string(snap.Status)))
	}
	for k, v := range snap.Data {
		attrs = append(attrs, toKeyValue(k, v))
	}
	ms.SetAttributes(attrs...)

	switch {
	case snap.Status == StatusOK:
		ms.SetStatus(codes.Ok, "")
	case snap.Status.IsError():
		ms.SetStatus(codes.Error, string(snap.Status))
	}
	ms.End(trace.WithTimestamp(snap.End))
}

func spanKind(op string) trace.SpanKind {
	switch {
	case strings.HasSuffix(op, ".client"):
		return trace.SpanKindClient
	case strings.HasSuffix(op, ".server"):
		return trace.SpanKindServer
	}
	return trace.SpanKindInternal
}

func toKeyValue(key string, v any) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case bool:
		return attribute.Bool(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case float64:
		return attribute.Float64(key, val)
	default:
		return attribute.String(key, fmt.Sprint(val))
	}
}
