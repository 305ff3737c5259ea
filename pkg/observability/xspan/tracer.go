package xspan

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xoutbound/pkg/observability/xsampling"
	"github.com/omeyang/xoutbound/pkg/observability/xtrace"
)

// Tracer 事务工厂
//
// 负责 trace_id 生成、采样决策以及动态采样上下文的构造。
type Tracer struct {
	dsn         *DSN
	rawDSN      string
	release     string
	environment string
	sampler     xsampling.Sampler
	mirror      trace.Tracer
	onFinish    func(*Transaction)
}

// Option Tracer 配置选项
type Option func(*Tracer)

// WithDSN 设置遥测后端 DSN，公钥会写入动态采样上下文
func WithDSN(dsn string) Option {
	return func(t *Tracer) {
		t.rawDSN = dsn
	}
}

// WithRelease 设置发布版本
func WithRelease(release string) Option {
	return func(t *Tracer) {
		t.release = release
	}
}

// WithEnvironment 设置部署环境
func WithEnvironment(env string) Option {
	return func(t *Tracer) {
		t.environment = env
	}
}

// WithSampler 设置事务采样器，nil 被忽略，默认全采样
func WithSampler(s xsampling.Sampler) Option {
	return func(t *Tracer) {
		if s != nil {
			t.sampler = s
		}
	}
}

// WithTracerProvider 把 Span 同步镜像到 OpenTelemetry
//
// 镜像 Span 与本包 Span 同时开始、同时结束，名称取结束时的描述。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Tracer) {
		if tp != nil {
			t.mirror = tp.Tracer(instrumentationName)
		}
	}
}

// WithOnFinish 设置事务结束回调，通常用于把事务交给上报子系统
func WithOnFinish(fn func(*Transaction)) Option {
	return func(t *Tracer) {
		t.onFinish = fn
	}
}

// NewTracer 创建 Tracer，DSN 格式错误时返回 ErrInvalidDSN
func NewTracer(opts ...Option) (*Tracer, error) {
	t := &Tracer{sampler: xsampling.Always()}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.rawDSN != "" {
		dsn, err := ParseDSN(t.rawDSN)
		if err != nil {
			return nil, err
		}
		t.dsn = dsn
	}
	return t, nil
}

// DSN 返回解析后的 DSN，未配置时为 nil
func (t *Tracer) DSN() *DSN { return t.dsn }

// TransactionOption 事务创建选项
type TransactionOption func(*txConfig)

type txConfig struct {
	op          string
	sentryTrace string
	traceparent string
	baggage     []string
}

// WithOp 设置事务操作类型，默认 "default"
func WithOp(op string) TransactionOption {
	return func(c *txConfig) {
		c.op = op
	}
}

// ContinueFromHeaders 从上游的 sentry-trace 与 baggage 头延续链路
//
// 上游 sentry-trace 无效且没有可用的 traceparent 时开启新链路；上游带有 sentry-trace 但没有 sentry baggage 时，
// 动态采样上下文为空且冻结，不会再向下游生成新的上下文。
func ContinueFromHeaders(sentryTrace string, baggage ...string) TransactionOption {
	return func(c *txConfig) {
		c.sentryTrace = sentryTrace
		c.baggage = baggage
	}
}

// ContinueFromTraceparent 从上游的 W3C traceparent 头延续链路
//
// 仅在 sentry-trace 缺失或无效时生效，可与 [ContinueFromHeaders] 同时使用。
func ContinueFromTraceparent(traceparent string) TransactionOption {
	return func(c *txConfig) {
		c.traceparent = traceparent
	}
}

// StartTransaction 开始事务，并把根 Span 放入返回的 context
func (t *Tracer) StartTransaction(ctx context.Context, name string, opts ...TransactionOption) (context.Context, *Transaction) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := txConfig{op: "default"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	root := &Span{
		traceID:     newTraceID(),
		spanID:      newSpanID(),
		op:          cfg.op,
		start:       time.Now(),
		description: name,
	}
	tx := &Transaction{Span: root, name: name, tracer: t}
	root.tx = tx

	incoming, continued := xtrace.ParseSentryTrace(cfg.sentryTrace)
	if incoming.IsEmpty() {
		incoming, continued = xtrace.ParseTraceparent(cfg.traceparent)
	}
	if continued {
		root.traceID = incoming.TraceID
		root.parentSpanID = incoming.SpanID
	}

	switch {
	case continued && incoming.Sampled != nil:
		root.sampled = *incoming.Sampled
	default:
		root.sampled = t.sampler.ShouldSample(xsampling.WithKey(ctx, root.traceID))
	}

	switch {
	case continued:
		// 上游的上下文原样沿用；没有时保持空且冻结
		tx.dsc = xtrace.ParseBaggage(cfg.baggage...)
		tx.dsc.Frozen = true
	default:
		tx.dsc = t.buildDSC(root.traceID, name, root.sampled)
	}

	root.mirror = t.startMirror(trace.SpanFromContext(ctx), root)

	ctx, _ = WithSpan(ctx, root)
	return ctx, tx
}

func (t *Tracer) buildDSC(traceID, name string, sampled bool) xtrace.DynamicSamplingContext {
	entries := map[string]string{
		xtrace.DSCTraceID:     traceID,
		xtrace.DSCRelease:     t.release,
		xtrace.DSCEnvironment: t.environment,
		xtrace.DSCTransaction: name,
		xtrace.DSCSampled:     strconv.FormatBool(sampled),
	}
	if t.dsn != nil {
		entries[xtrace.DSCPublicKey] = t.dsn.PublicKey()
	}
	if r, ok := t.sampler.(xsampling.Rater); ok {
		entries[xtrace.DSCSampleRate] = strconv.FormatFloat(r.Rate(), 'f', -1, 64)
	}
	return xtrace.NewDynamicSamplingContext(entries)
}
