package xhttpclient

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/omeyang/xoutbound/pkg/observability/xlog"
	"github.com/omeyang/xoutbound/pkg/observability/xspan"
	"github.com/omeyang/xoutbound/pkg/observability/xtrace"
)

// mergeBaggage 合并 baggage 头的值
//
//	existing   fresh     结果
//	空         非空      [fresh]
//	空         空        nil（不写该头）
//	[a]        非空      [a, fresh]
//	[a, b]     非空      [a, b, fresh]
//	任意       空        existing
//
// 返回的切片不与 existing 共享底层数组。
func mergeBaggage(existing []string, fresh string) []string {
	if fresh == "" {
		return existing
	}
	out := make([]string, 0, len(existing)+1)
	out = append(out, existing...)
	return append(out, fresh)
}

// headerValues 读取头部，兼容直接以小写 key 写入 map 的调用方
func headerValues(h http.Header, name string) []string {
	canonical := http.CanonicalHeaderKey(name)
	vals := h[canonical]
	if lower := strings.ToLower(name); lower != canonical {
		vals = append(vals[:len(vals):len(vals)], h[lower]...)
	}
	return vals
}

// setHeader 以规范 key 写入；vals 为空时删除该头，不写空值
func setHeader(h http.Header, name string, vals []string) {
	delete(h, strings.ToLower(name))
	canonical := http.CanonicalHeaderKey(name)
	kept := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(h, canonical)
		return
	}
	h[canonical] = kept
}

// propagation 记录本次写入的传播头，重定向时据此撤回
type propagation struct {
	sentryTrace string
	baggage     string
	traceparent string
}

// injectHeaders 为 span 附加传播头，返回待发送的请求与写入记录
//
// 不命中传播目标时原样返回 req 与 nil。命中时在克隆的请求上写入，调用方的请求不被修改。
// 调用方已自行设置 sentry-trace 时保留其链路头与 baggage，不计入传播次数。
func (i *Interceptor) injectHeaders(ctx context.Context, req *http.Request, d Descriptor, span *xspan.Span) (*http.Request, *propagation) {
	if !i.matcher.ShouldAttach(d.URL) {
		i.logger.Debug(ctx, "xhttpclient: not adding sentry-trace header, url does not match trace propagation targets",
			xlog.URL(d.URL))
		return req, nil
	}
	if len(headerValues(req.Header, xtrace.HeaderSentryTrace)) > 0 {
		i.logger.Debug(ctx, "xhttpclient: sentry-trace header already set by caller", xlog.URL(d.URL))
		return req, nil
	}

	out := req.Clone(ctx)
	if out.Header == nil {
		out.Header = http.Header{}
	}

	p := &propagation{sentryTrace: span.ToSentryTrace()}
	setHeader(out.Header, xtrace.HeaderSentryTrace, []string{p.sentryTrace})

	if tx := span.Transaction(); tx != nil {
		p.baggage = tx.DynamicSamplingContext().String()
	}
	if merged := mergeBaggage(headerValues(out.Header, xtrace.HeaderBaggage), p.baggage); len(merged) > 0 {
		setHeader(out.Header, xtrace.HeaderBaggage, merged)
	}

	if i.opts.traceparent && len(headerValues(out.Header, xtrace.HeaderTraceparent)) == 0 {
		p.traceparent = span.ToTraceparent()
		setHeader(out.Header, xtrace.HeaderTraceparent, []string{p.traceparent})
	}

	var n int64
	if tx := span.Transaction(); tx != nil {
		n = tx.IncPropagations()
	}
	i.metrics.propagated(ctx, d.Method)
	i.logger.Debug(ctx, "xhttpclient: attached propagation headers", xlog.URL(d.URL), xlog.Propagations(n))
	return out, p
}

// carries 判断 h 中是否仍带有本次写入的传播头
func (p *propagation) carries(h http.Header) bool {
	return p != nil && slices.Contains(headerValues(h, xtrace.HeaderSentryTrace), p.sentryTrace)
}

// strip 从 h 中移除本次写入的传播头，调用方自带的 baggage 条目保留
func (p *propagation) strip(h http.Header) {
	setHeader(h, xtrace.HeaderSentryTrace, without(headerValues(h, xtrace.HeaderSentryTrace), p.sentryTrace))
	if p.baggage != "" {
		setHeader(h, xtrace.HeaderBaggage, without(headerValues(h, xtrace.HeaderBaggage), p.baggage))
	}
	if p.traceparent != "" {
		setHeader(h, xtrace.HeaderTraceparent, without(headerValues(h, xtrace.HeaderTraceparent), p.traceparent))
	}
}

func without(vals []string, v string) []string {
	out := make([]string, 0, len(vals))
	for _, x := range vals {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// revokeOnRedirect 重定向目标不再命中传播目标或属于上报地址时，撤回本次写入的传播头
//
// 返回 true 表示 req 上的传播头需要撤回。
func (i *Interceptor) revokeOnRedirect(req *http.Request) bool {
	p := propagationFrom(req.Context())
	if !p.carries(req.Header) {
		return false
	}
	d, err := Normalize(originClient, Call{Request: req})
	if err == nil && !i.isIngest(d.parsed) && i.matcher.ShouldAttach(d.URL) {
		return false
	}
	i.logger.Debug(req.Context(), "xhttpclient: redirect target does not match trace propagation targets, removing headers",
		xlog.URL(d.URL))
	return true
}
