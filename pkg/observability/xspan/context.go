package xspan

import "context"

// contextKey 包私有类型，避免与其他包的 key 冲突
type contextKey string

const keySpan = contextKey("xspan:span")

// WithSpan 把活动 Span 放入 context
//
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithSpan(ctx context.Context, s *Span) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, keySpan, s), nil
}

// SpanFromContext 返回 context 中的活动 Span，不存在返回 nil
func SpanFromContext(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(keySpan).(*Span)
	return s
}

// RequireSpan 返回 context 中的活动 Span，不存在返回 ErrMissingSpan
func RequireSpan(ctx context.Context) (*Span, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	s := SpanFromContext(ctx)
	if s == nil {
		return nil, ErrMissingSpan
	}
	return s, nil
}

// TransactionFromContext 返回活动 Span 所属的事务，不存在返回 nil
func TransactionFromContext(ctx context.Context) *Transaction {
	if s := SpanFromContext(ctx); s != nil {
		return s.tx
	}
	return nil
}

// TraceID 返回活动 Span 的 trace_id，不存在返回空字符串
func TraceID(ctx context.Context) string {
	if s := SpanFromContext(ctx); s != nil {
		return s.traceID
	}
	return ""
}

// SpanID 返回活动 Span 的 span_id，不存在返回空字符串
func SpanID(ctx context.Context) string {
	if s := SpanFromContext(ctx); s != nil {
		return s.spanID
	}
	return ""
}

// StartSpan 在 context 的活动 Span 下创建子 Span 并放入新 context
//
// 没有活动 Span 时原样返回 ctx 和 nil。
func StartSpan(ctx context.Context, op string, opts ...SpanOption) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	if parent == nil {
		return ctx, nil
	}
	child := parent.StartChild(op, opts...)
	return context.WithValue(ctx, keySpan, child), child
}
