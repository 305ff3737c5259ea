package xspan

import (
	"encoding/hex"
	"maps"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xoutbound/pkg/observability/xtrace"
)

// Span 链路中的一个计时单元
//
// 必须通过 [Tracer.StartTransaction] 或 [Span.StartChild] 创建。
// 所有方法并发安全；Finish 幂等，只有第一次调用生效。
type Span struct {
	traceID      string
	spanID       string
	parentSpanID string
	op           string
	sampled      bool
	start        time.Time

	mu          sync.Mutex
	description string
	status      Status
	data        map[string]any
	end         time.Time

	finished atomic.Bool

	parent *Span
	tx     *Transaction
	mirror trace.Span
}

// SpanOption Span 创建选项
type SpanOption func(*spanConfig)

type spanConfig struct {
	description string
	data        map[string]any
}

// WithDescription 设置初始描述
func WithDescription(description string) SpanOption {
	return func(c *spanConfig) {
		c.description = description
	}
}

// WithData 设置初始数据
func WithData(key string, value any) SpanOption {
	return func(c *spanConfig) {
		if key == "" {
			return
		}
		if c.data == nil {
			c.data = make(map[string]any)
		}
		c.data[key] = value
	}
}

// StartChild 创建子 Span，继承 trace_id 与采样决策
func (s *Span) StartChild(op string, opts ...SpanOption) *Span {
	cfg := spanConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	child := &Span{
		traceID:      s.traceID,
		spanID:       newSpanID(),
		parentSpanID: s.spanID,
		op:           op,
		sampled:      s.sampled,
		start:        time.Now(),
		description:  cfg.description,
		data:         cfg.data,
		parent:       s,
		tx:           s.tx,
	}
	if s.tx != nil {
		child.mirror = s.tx.tracer.startMirror(s.mirror, child)
	}
	return child
}

// TraceID 返回 trace_id
func (s *Span) TraceID() string { return s.traceID }

// SpanID 返回 span_id
func (s *Span) SpanID() string { return s.spanID }

// ParentSpanID 返回父 span_id，根 Span 可能为空
func (s *Span) ParentSpanID() string { return s.parentSpanID }

// Op 返回操作类型
func (s *Span) Op() string { return s.op }

// Sampled 返回采样决策
func (s *Span) Sampled() bool { return s.sampled }

// StartTime 返回开始时间
func (s *Span) StartTime() time.Time { return s.start }

// Parent 返回父 Span，根 Span 返回 nil
func (s *Span) Parent() *Span { return s.parent }

// Transaction 返回所属事务
func (s *Span) Transaction() *Transaction { return s.tx }

// Description 返回描述
func (s *Span) Description() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.description
}

// SetDescription 设置描述
func (s *Span) SetDescription(description string) {
	s.mu.Lock()
	s.description = description
	s.mu.Unlock()
}

// Status 返回状态，未设置时为空
func (s *Span) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus 设置状态
func (s *Span) SetStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// SetData 设置附加数据，空 key 被忽略
func (s *Span) SetData(key string, value any) {
	if key == "" {
		return
	}
	s.mu.Lock()
	if s.data == nil {
		s.data = make(map[string]any)
	}
	s.data[key] = value
	s.mu.Unlock()
}

// Data 返回附加数据的副本
func (s *Span) Data() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.data)
}

// EndTime 返回结束时间，未结束时为零值
func (s *Span) EndTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.end
}

// Finished 判断是否已结束
func (s *Span) Finished() bool { return s.finished.Load() }

// Finish 结束 Span
func (s *Span) Finish() {
	s.finish()
}

// finish 返回本次调用是否真正结束了 Span
func (s *Span) finish() bool {
	if !s.finished.CompareAndSwap(false, true) {
		return false
	}

	s.mu.Lock()
	s.end = time.Now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	endMirror(s.mirror, snap)
	if s.tx != nil && s.tx.Span != s {
		s.tx.record(s)
	}
	return true
}

// ToSentryTrace 返回 sentry-trace 传播头的值
func (s *Span) ToSentryTrace() string {
	sampled := s.sampled
	return xtrace.FormatSentryTrace(s.traceID, s.spanID, &sampled)
}

// ToTraceparent 返回 W3C traceparent 传播头的值
func (s *Span) ToTraceparent() string {
	sampled := s.sampled
	return xtrace.FormatTraceparent(s.traceID, s.spanID, &sampled)
}

// Snapshot 返回当前状态的只读副本
func (s *Span) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Span) snapshotLocked() Snapshot {
	return Snapshot{
		TraceID:      s.traceID,
		SpanID:       s.spanID,
		ParentSpanID: s.parentSpanID,
		Op:           s.op,
		Description:  s.description,
		Status:       s.status,
		Sampled:      s.sampled,
		Start:        s.start,
		End:          s.end,
		Data:         maps.Clone(s.data),
	}
}

// Snapshot Span 的只读副本，可直接 JSON 序列化
type Snapshot struct {
	TraceID      string         `json:"trace_id"`
	SpanID       string         `json:"span_id"`
	ParentSpanID string         `json:"parent_span_id,omitempty"`
	Op           string         `json:"op"`
	Description  string         `json:"description,omitempty"`
	Status       Status         `json:"status,omitempty"`
	Sampled      bool           `json:"sampled"`
	Start        time.Time      `json:"start_timestamp"`
	End          time.Time      `json:"timestamp,omitzero"`
	Data         map[string]any `json:"data,omitempty"`
}

// =============================================================================
// ID 生成
// =============================================================================

func newTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func newSpanID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:8])
}
