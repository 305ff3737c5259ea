package xhttpclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xoutbound/pkg/observability/xbreadcrumb"
	"github.com/omeyang/xoutbound/pkg/observability/xlog"
	"github.com/omeyang/xoutbound/pkg/observability/xspan"
)

// 请求状态：created -> inFlight -> responded | failed
//
// 强制结束后进入 expired，迟到的终止事件只补记面包屑。
const (
	stateCreated int32 = iota
	stateInFlight
	stateResponded
	stateFailed
	stateExpired
)

// tracker 单个出站请求的生命周期
//
// 终止迁移通过 CAS 完成，第二个终止事件不产生任何效果。
type tracker struct {
	i     *Interceptor
	ctx   context.Context
	req   *http.Request
	desc  Descriptor
	span  *xspan.Span
	start time.Time

	// propagation 本次写入的传播头，未写入时为 nil
	propagation *propagation

	state atomic.Int32

	timerMu sync.Mutex
	timer   *time.Timer
}

func newTracker(i *Interceptor, ctx context.Context, req *http.Request, d Descriptor, span *xspan.Span) *tracker {
	return &tracker{i: i, ctx: ctx, req: req, desc: d, span: span, start: time.Now()}
}

// dispatch 标记请求已交给底层传输，并按需启动强制结束定时器
func (t *tracker) dispatch() {
	if !t.state.CompareAndSwap(stateCreated, stateInFlight) {
		return
	}
	if t.span == nil || t.i.opts.finishTimeout <= 0 {
		return
	}
	t.timerMu.Lock()
	t.timer = time.AfterFunc(t.i.opts.finishTimeout, t.expire)
	t.timerMu.Unlock()
}

// complete 把底层调用的结果转为终止事件
func (t *tracker) complete(resp *http.Response, err error) {
	if err != nil || resp == nil {
		t.fail(err)
		return
	}
	t.respond(resp)
}

// respond response 终止事件
func (t *tracker) respond(resp *http.Response) {
	if !t.state.CompareAndSwap(stateInFlight, stateResponded) {
		if t.state.CompareAndSwap(stateExpired, stateResponded) {
			t.breadcrumb(xbreadcrumb.EventResponse, resp, nil)
		}
		return
	}
	t.stopTimer()

	code := resp.StatusCode
	t.breadcrumb(xbreadcrumb.EventResponse, resp, nil)

	if t.span != nil {
		if status, ok := xspan.HTTPStatus(code); ok {
			t.span.SetStatus(status)
		}
		t.span.SetData(DataStatusCode, code)
		final := resp.Request
		if final == nil {
			final = t.req
		}
		t.span.SetDescription(describe(methodOf(final, t.desc.Method), urlOf(final, t.desc.parsed)))
		t.span.Finish()
	}
	t.i.metrics.finished(t.ctx, t.desc.Method, outcomeResponse, code, time.Since(t.start))
}

// fail error 终止事件：传输失败，没有响应
func (t *tracker) fail(err error) {
	if !t.state.CompareAndSwap(stateInFlight, stateFailed) {
		if t.state.CompareAndSwap(stateExpired, stateFailed) {
			t.breadcrumb(xbreadcrumb.EventError, nil, err)
		}
		return
	}
	t.stopTimer()

	t.breadcrumb(xbreadcrumb.EventError, nil, err)

	if t.span != nil {
		t.span.SetStatus(errorStatus(err))
		u := t.desc.parsed
		var ue *url.Error
		if errors.As(err, &ue) {
			if parsed, perr := url.Parse(ue.URL); perr == nil && parsed.Host != "" {
				u = parsed
			}
		}
		t.span.SetDescription(describe(t.desc.Method, u))
		t.span.Finish()
	}
	t.i.logger.Debug(t.ctx, "xhttpclient: outbound request failed",
		xlog.Method(t.desc.Method), xlog.URL(t.desc.URL), xlog.Err(err))
	t.i.metrics.finished(t.ctx, t.desc.Method, outcomeError, 0, time.Since(t.start))
}

// expire 强制结束超时仍未终止的请求
//
// 之后到达的终止事件不再处理 Span 与指标。
func (t *tracker) expire() {
	if !t.state.CompareAndSwap(stateInFlight, stateExpired) {
		return
	}
	t.span.SetStatus(xspan.StatusDeadlineExceeded)
	t.span.SetData(DataAbandoned, true)
	t.span.Finish()
	t.i.logger.Warn(t.ctx, "xhttpclient: outbound request did not finish in time, span force-finished",
		xlog.Method(t.desc.Method), xlog.URL(t.desc.URL), xlog.Duration(t.i.opts.finishTimeout))
	t.i.metrics.finished(context.WithoutCancel(t.ctx), t.desc.Method, outcomeTimeout, 0, time.Since(t.start))
}

func (t *tracker) stopTimer() {
	t.timerMu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.timerMu.Unlock()
}

// breadcrumb 需要面包屑开关与活动状态同时开启，不依赖 Span
func (t *tracker) breadcrumb(event xbreadcrumb.Event, resp *http.Response, err error) {
	if !t.i.Breadcrumbs() || !t.i.Active() {
		return
	}
	data := map[string]any{
		xbreadcrumb.DataMethod: t.desc.Method,
		xbreadcrumb.DataURL:    t.desc.URL,
	}
	level := xbreadcrumb.LevelError
	if resp != nil {
		data[xbreadcrumb.DataStatusCode] = resp.StatusCode
		level = levelFor(resp.StatusCode)
	}
	t.i.opts.recorder.Record(t.ctx, xbreadcrumb.Breadcrumb{
		Type:      "http",
		Category:  "http",
		Level:     level,
		Data:      data,
		Timestamp: time.Now(),
	}, xbreadcrumb.Hint{
		Event:    event,
		Request:  t.req,
		Response: resp,
		Err:      err,
	})
}

func levelFor(code int) xbreadcrumb.Level {
	switch {
	case code >= 500:
		return xbreadcrumb.LevelError
	case code >= 400:
		return xbreadcrumb.LevelWarning
	}
	return xbreadcrumb.LevelInfo
}

func errorStatus(err error) xspan.Status {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return xspan.StatusDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return xspan.StatusCancelled
	}
	return xspan.StatusInternalError
}

func methodOf(r *http.Request, fallback string) string {
	if r == nil || r.Method == "" {
		return fallback
	}
	return r.Method
}

func urlOf(r *http.Request, fallback *url.URL) *url.URL {
	if r == nil || r.URL == nil || r.URL.Host == "" {
		return fallback
	}
	return r.URL
}
