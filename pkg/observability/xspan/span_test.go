package xspan

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/omeyang/xoutbound/pkg/observability/xsampling"
	"github.com/omeyang/xoutbound/pkg/observability/xtrace"
)

func newTestTracer(t *testing.T, opts ...Option) *Tracer {
	t.Helper()
	tr, err := NewTracer(opts...)
	require.NoError(t, err)
	return tr
}

func TestStartChild_InheritsTrace(t *testing.T) {
	tr := newTestTracer(t)
	_, tx := tr.StartTransaction(context.Background(), "GET /users")

	child := tx.StartChild("http.client", WithDescription("GET http://a/b"), WithData("k", 1))

	assert.Equal(t, tx.TraceID(), child.TraceID())
	assert.Equal(t, tx.SpanID(), child.ParentSpanID())
	assert.NotEqual(t, tx.SpanID(), child.SpanID())
	assert.Len(t, child.SpanID(), xtrace.SpanIDLength)
	assert.Equal(t, "http.client", child.Op())
	assert.Equal(t, "GET http://a/b", child.Description())
	assert.Equal(t, map[string]any{"k": 1}, child.Data())
	assert.Same(t, tx.Span, child.Parent())
	assert.Same(t, tx, child.Transaction())
	assert.Equal(t, tx.Sampled(), child.Sampled())
}

func TestSpan_FinishIdempotent(t *testing.T) {
	tr := newTestTracer(t)
	_, tx := tr.StartTransaction(context.Background(), "tx")
	child := tx.StartChild("db")

	assert.False(t, child.Finished())
	assert.True(t, child.EndTime().IsZero())

	child.Finish()
	end := child.EndTime()
	child.Finish()

	assert.True(t, child.Finished())
	assert.Equal(t, end, child.EndTime())
	assert.Len(t, tx.Spans(), 1)
}

func TestSpan_FinishConcurrent(t *testing.T) {
	tr := newTestTracer(t)
	_, tx := tr.StartTransaction(context.Background(), "tx")
	child := tx.StartChild("db")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child.Finish()
		}()
	}
	wg.Wait()

	assert.Len(t, tx.Spans(), 1)
}

func TestSpan_DataCopy(t *testing.T) {
	tr := newTestTracer(t)
	_, tx := tr.StartTransaction(context.Background(), "tx")
	s := tx.StartChild("x")
	s.SetData("a", "1")
	s.SetData("", "ignored")

	d := s.Data()
	d["a"] = "changed"

	assert.Equal(t, map[string]any{"a": "1"}, s.Data())
}

func TestSpan_ToSentryTrace(t *testing.T) {
	tr := newTestTracer(t, WithSampler(xsampling.Never()))
	_, tx := tr.StartTransaction(context.Background(), "tx")

	info, ok := xtrace.ParseSentryTrace(tx.ToSentryTrace())
	require.True(t, ok)
	assert.Equal(t, tx.TraceID(), info.TraceID)
	assert.Equal(t, tx.SpanID(), info.SpanID)
	require.NotNil(t, info.Sampled)
	assert.False(t, *info.Sampled)

	tp, ok := xtrace.ParseTraceparent(tx.ToTraceparent())
	require.True(t, ok)
	assert.Equal(t, tx.TraceID(), tp.TraceID)
}

func TestSnapshot_JSON(t *testing.T) {
	tr := newTestTracer(t)
	_, tx := tr.StartTransaction(context.Background(), "tx")
	s := tx.StartChild("http.client", WithDescription("GET http://a"))
	s.SetStatus(StatusOK)

	before, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	assert.NotContains(t, string(before), `"timestamp"`)

	s.Finish()
	after, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(after), `"timestamp"`)
	assert.Contains(t, string(after), `"status":"ok"`)
}

func TestTransaction_OnFinishOnce(t *testing.T) {
	var calls int
	tr := newTestTracer(t, WithOnFinish(func(*Transaction) { calls++ }))
	_, tx := tr.StartTransaction(context.Background(), "tx")

	tx.Finish()
	tx.Finish()

	assert.Equal(t, 1, calls)
	assert.Empty(t, tx.Spans())
}

func TestTransaction_Propagations(t *testing.T) {
	tr := newTestTracer(t)
	_, tx := tr.StartTransaction(context.Background(), "tx")

	assert.Equal(t, int64(0), tx.Propagations())
	assert.Equal(t, int64(1), tx.IncPropagations())
	assert.Equal(t, int64(2), tx.IncPropagations())
	assert.Equal(t, int64(2), tx.Propagations())
}

func TestMirror_OTel(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	tr := newTestTracer(t, WithTracerProvider(tp))
	_, tx := tr.StartTransaction(context.Background(), "tx")
	child := tx.StartChild("http.client", WithDescription("GET http://a"))
	child.SetData("http.method", "GET")
	child.SetData("http.response.status_code", 500)
	child.SetStatus(StatusInternalError)
	child.Finish()
	tx.SetStatus(StatusOK)
	tx.Finish()

	spans := exp.GetSpans()
	require.Len(t, spans, 2)

	got := spans[0]
	assert.Equal(t, "GET http://a", got.Name)
	assert.Equal(t, codes.Error, got.Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), got.Parent.SpanID())
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
}
