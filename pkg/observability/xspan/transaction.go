package xspan

import (
	"sync"
	"sync/atomic"

	"github.com/omeyang/xoutbound/pkg/observability/xtrace"
)

// Transaction 链路的根 Span
//
// 除 Span 的能力外，还持有事务名称、冻结的动态采样上下文、
// 传播计数以及已结束的子 Span。
type Transaction struct {
	*Span

	name   string
	tracer *Tracer
	dsc    xtrace.DynamicSamplingContext

	propagations atomic.Int64

	mu    sync.Mutex
	spans []*Span
}

// Name 返回事务名称
func (t *Transaction) Name() string { return t.name }

// DynamicSamplingContext 返回动态采样上下文快照
func (t *Transaction) DynamicSamplingContext() xtrace.DynamicSamplingContext {
	return t.dsc
}

// IncPropagations 传播计数加一，返回新值
func (t *Transaction) IncPropagations() int64 {
	return t.propagations.Add(1)
}

// Propagations 返回传播头被附加到出站请求的次数
func (t *Transaction) Propagations() int64 {
	return t.propagations.Load()
}

// Spans 返回已结束的子 Span，按结束顺序排列
func (t *Transaction) Spans() []*Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// Finish 结束事务，并通知 Tracer 的完成回调（只触发一次）
func (t *Transaction) Finish() {
	if !t.Span.finish() {
		return
	}
	if t.tracer != nil && t.tracer.onFinish != nil {
		t.tracer.onFinish(t)
	}
}

func (t *Transaction) record(s *Span) {
	t.mu.Lock()
	t.spans = append(t.spans, s)
	t.mu.Unlock()
}
