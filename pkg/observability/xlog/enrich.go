package xlog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/omeyang/xoutbound/pkg/observability/xspan"
)

// ErrNilHandler 当 NewEnrichHandler 的 base handler 为 nil 时返回
var ErrNilHandler = errors.New("xlog: base handler is nil")

// EnrichHandler 从 context 的活动 Span 提取 trace_id、span_id 注入日志
//
// context 中没有活动 Span 时不注入任何字段。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 创建 EnrichHandler
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

// Enabled 委托给底层 handler
func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 在调用底层 handler 前注入追踪字段
//
// 根据 slog 契约，修改前必须 Clone record。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	if s := xspan.SpanFromContext(ctx); s != nil {
		r = r.Clone()
		r.AddAttrs(
			slog.String(KeyTraceID, s.TraceID()),
			slog.String(KeySpanID, s.SpanID()),
		)
	}
	return h.base.Handle(ctx, r)
}

// WithAttrs 返回带额外属性的新 handler
func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

// WithGroup 返回带分组的新 handler
//
// 注入字段会归入该分组下。
func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
