package xhttpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xoutbound/pkg/observability/xbreadcrumb"
	"github.com/omeyang/xoutbound/pkg/observability/xlog"
	"github.com/omeyang/xoutbound/pkg/observability/xspan"
)

// SpanAccessor 从 context 解析活动 Span，没有时返回 nil
type SpanAccessor func(ctx context.Context) *xspan.Span

type options struct {
	tracing        bool
	breadcrumbs    bool
	active         bool
	traceparent    bool
	targets        []string
	ingest         []ingestEndpoint
	matchCacheSize int
	finishTimeout  time.Duration
	spanAccessor   SpanAccessor
	recorder       xbreadcrumb.Recorder
	logger         xlog.Logger
	meterProvider  metric.MeterProvider
	err            error
}

func defaultOptions() options {
	return options{
		tracing:      true,
		breadcrumbs:  true,
		active:       true,
		spanAccessor: xspan.SpanFromContext,
		recorder:     xbreadcrumb.Discard,
	}
}

func (o *options) setErr(err error) {
	if o.err == nil {
		o.err = err
	}
}

// Option Interceptor 配置选项
type Option func(*options)

// WithTracing 是否为出站请求创建 Span 并附加传播头，默认开启
func WithTracing(enable bool) Option {
	return func(o *options) {
		o.tracing = enable
	}
}

// WithBreadcrumbs 是否记录 http 面包屑，默认开启
func WithBreadcrumbs(enable bool) Option {
	return func(o *options) {
		o.breadcrumbs = enable
	}
}

// WithActive 设置初始活动状态，默认活动；运行时用 [Interceptor.SetActive] 切换
func WithActive(active bool) Option {
	return func(o *options) {
		o.active = active
	}
}

// WithTracePropagationTargets 设置传播目标
//
// 不调用此选项时向所有目标传播；调用但不传任何模式时不向任何目标传播。
// 模式按子串匹配，能编译为正则的同时按正则匹配，任一成立即命中。
func WithTracePropagationTargets(patterns ...string) Option {
	return func(o *options) {
		o.targets = append(make([]string, 0, len(patterns)), patterns...)
	}
}

// WithIngestEndpoint 追加上报地址前缀，发往该地址的请求原样透传
//
// prefix 必须是带 host 的绝对 URL。比较时忽略主机名大小写与缺省端口的写法差异。
func WithIngestEndpoint(prefix string) Option {
	return func(o *options) {
		if prefix = strings.TrimSpace(prefix); prefix == "" {
			return
		}
		e, ok := parseIngestEndpoint(prefix)
		if !ok {
			o.setErr(fmt.Errorf("%w: ingest endpoint %q", ErrInvalidOption, prefix))
			return
		}
		o.ingest = append(o.ingest, e)
	}
}

// WithDSN 从 DSN 推导上报地址前缀
func WithDSN(dsn string) Option {
	return func(o *options) {
		if strings.TrimSpace(dsn) == "" {
			return
		}
		d, err := xspan.ParseDSN(dsn)
		if err != nil {
			o.setErr(fmt.Errorf("%w: %w", ErrInvalidOption, err))
			return
		}
		if e, ok := parseIngestEndpoint(d.IngestEndpoint()); ok {
			o.ingest = append(o.ingest, e)
		}
	}
}

// WithTraceparent 是否额外附加 W3C traceparent 头，默认关闭
func WithTraceparent(enable bool) Option {
	return func(o *options) {
		o.traceparent = enable
	}
}

// WithMatchCacheSize n > 0 时匹配缓存改为容量 n 的 LRU，默认无界
func WithMatchCacheSize(n int) Option {
	return func(o *options) {
		if n < 0 {
			o.setErr(fmt.Errorf("%w: match cache size %d", ErrInvalidOption, n))
			return
		}
		o.matchCacheSize = n
	}
}

// WithFinishTimeout d > 0 时，请求在 d 内没有结束则强制以 deadline_exceeded 结束 Span
//
// 默认关闭：底层传输永不返回时 Span 不会结束。
func WithFinishTimeout(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			o.setErr(fmt.Errorf("%w: finish timeout %s", ErrInvalidOption, d))
			return
		}
		o.finishTimeout = d
	}
}

// WithSpanAccessor 替换活动 Span 的解析方式，默认 xspan.SpanFromContext
func WithSpanAccessor(fn SpanAccessor) Option {
	return func(o *options) {
		if fn != nil {
			o.spanAccessor = fn
		}
	}
}

// WithRecorder 设置面包屑接收方，默认丢弃
func WithRecorder(r xbreadcrumb.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithLogger 设置日志，默认 xlog.Default()
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMeterProvider 设置指标提供者，默认 otel.GetMeterProvider()
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}
