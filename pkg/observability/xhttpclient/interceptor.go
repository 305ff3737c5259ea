package xhttpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/omeyang/xoutbound/pkg/observability/xlog"
	"github.com/omeyang/xoutbound/pkg/observability/xspan"
)

// Interceptor 出站 HTTP 请求插桩
//
// 通过 [Interceptor.RoundTripper] 与 [Interceptor.Client] 显式包装两个入口，
// 不修改任何全局对象。所有方法并发安全。
type Interceptor struct {
	opts    options
	matcher *MatchCache
	metrics *clientMetrics
	logger  xlog.Logger

	active      atomic.Bool
	breadcrumbs atomic.Bool
}

// New 创建 Interceptor
func New(opts ...Option) (*Interceptor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.err != nil {
		return nil, o.err
	}

	matcher, err := NewMatchCache(o.targets, o.matchCacheSize)
	if err != nil {
		return nil, err
	}
	metrics, err := newClientMetrics(o.meterProvider)
	if err != nil {
		return nil, err
	}

	i := &Interceptor{
		opts:    o,
		matcher: matcher,
		metrics: metrics,
		logger:  o.logger,
	}
	if i.logger == nil {
		i.logger = xlog.Default()
	}
	i.logger = i.logger.With(xlog.Component("xhttpclient"))
	i.active.Store(o.active)
	i.breadcrumbs.Store(o.breadcrumbs)
	return i, nil
}

// SetActive 运行时切换活动状态
//
// 非活动时包装仍然生效，Span 与传播头照常处理，只是不再记录面包屑。
func (i *Interceptor) SetActive(active bool) { i.active.Store(active) }

// Active 返回活动状态
func (i *Interceptor) Active() bool { return i.active.Load() }

// SetBreadcrumbs 运行时切换面包屑开关
func (i *Interceptor) SetBreadcrumbs(enable bool) { i.breadcrumbs.Store(enable) }

// Breadcrumbs 返回面包屑开关
func (i *Interceptor) Breadcrumbs() bool { return i.breadcrumbs.Load() }

// Matcher 返回传播目标匹配缓存
func (i *Interceptor) Matcher() *MatchCache { return i.matcher }

// IsIngestEndpoint 判断 rawURL 是否为遥测后端自身的上报地址
func (i *Interceptor) IsIngestEndpoint(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return i.isIngest(u)
}

func (i *Interceptor) isIngest(u *url.URL) bool {
	for _, e := range i.opts.ingest {
		if e.matches(u) {
			return true
		}
	}
	return false
}

// begin 在委托底层调用之前执行插桩，返回待发送的请求和生命周期跟踪器
//
// 跳过插桩时返回原请求和 nil。插桩过程中的 panic 被恢复，请求原样发出，
// 已创建的 Span 以 internal_error 结束。
func (i *Interceptor) begin(origin Origin, req *http.Request) (out *http.Request, t *tracker) {
	var span *xspan.Span
	defer func() {
		if r := recover(); r != nil {
			i.logger.Warn(context.Background(), "xhttpclient: instrumentation panicked, request sent uninstrumented",
				slog.String("panic", fmt.Sprint(r)))
			if t != nil {
				t.stopTimer()
			}
			if span != nil {
				span.SetStatus(xspan.StatusInternalError)
				span.Finish()
			}
			out, t = req, nil
		}
	}()

	if req == nil {
		return req, nil
	}
	ctx := req.Context()

	d, err := Normalize(origin, Call{Request: req})
	if err != nil {
		i.logger.Debug(ctx, "xhttpclient: skip instrumentation", xlog.Err(err))
		return req, nil
	}
	if i.isIngest(d.parsed) {
		return req, nil
	}

	out = req
	span = i.startSpan(ctx, d)
	var p *propagation
	if span != nil {
		out, p = i.injectHeaders(ctx, req, d, span)
	}

	t = newTracker(i, ctx, out, d, span)
	t.propagation = p
	t.dispatch()
	return out, t
}

func (i *Interceptor) startSpan(ctx context.Context, d Descriptor) *xspan.Span {
	if !i.opts.tracing {
		return nil
	}
	return startChildSpan(i.opts.spanAccessor(ctx), d)
}

// instrumentedKey 标记 context 已由外层入口插桩，内层入口不再重复插桩
//
// 值为外层写入的传播头记录，未写入时为 nil。
type instrumentedKey struct{}

func markInstrumented(ctx context.Context, p *propagation) context.Context {
	return context.WithValue(ctx, instrumentedKey{}, p)
}

func isInstrumented(ctx context.Context) bool {
	_, ok := ctx.Value(instrumentedKey{}).(*propagation)
	return ok
}

func propagationFrom(ctx context.Context) *propagation {
	p, _ := ctx.Value(instrumentedKey{}).(*propagation)
	return p
}
