package xbreadcrumb

import (
	"context"
	"maps"
	"sync"
	"time"
)

// DefaultMaxBreadcrumbs 缓冲区默认容量
const DefaultMaxBreadcrumbs = 100

// BeforeFunc 记录前钩子
//
// 返回 false 丢弃该面包屑；可以返回修改后的副本。
type BeforeFunc func(b Breadcrumb, hint Hint) (Breadcrumb, bool)

// BufferOption Buffer 配置选项
type BufferOption func(*Buffer)

// WithMaxBreadcrumbs 设置容量，n <= 0 时忽略
func WithMaxBreadcrumbs(n int) BufferOption {
	return func(b *Buffer) {
		if n > 0 {
			b.max = n
		}
	}
}

// WithBeforeBreadcrumb 设置记录前钩子
func WithBeforeBreadcrumb(fn BeforeFunc) BufferOption {
	return func(b *Buffer) {
		b.before = fn
	}
}

// Buffer 有界环形缓冲区，满时覆盖最旧的记录
//
// 只在内存中保存，交给事件上报子系统读取；本身不做持久化。
type Buffer struct {
	max    int
	before BeforeFunc

	mu    sync.Mutex
	items []Breadcrumb
	head  int
	size  int
}

// NewBuffer 创建缓冲区
func NewBuffer(opts ...BufferOption) *Buffer {
	b := &Buffer{max: DefaultMaxBreadcrumbs}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.items = make([]Breadcrumb, b.max)
	return b
}

// Record 写入一条面包屑，Timestamp 为零时补当前时间
func (b *Buffer) Record(_ context.Context, bc Breadcrumb, hint Hint) {
	if bc.Timestamp.IsZero() {
		bc.Timestamp = time.Now()
	}
	bc.Data = maps.Clone(bc.Data)
	if b.before != nil {
		var keep bool
		if bc, keep = b.before(bc, hint); !keep {
			return
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	idx := (b.head + b.size) % b.max
	b.items[idx] = bc
	if b.size < b.max {
		b.size++
		return
	}
	b.head = (b.head + 1) % b.max
}

// Breadcrumbs 按写入顺序返回当前所有面包屑的副本
func (b *Buffer) Breadcrumbs() []Breadcrumb {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Breadcrumb, 0, b.size)
	for i := range b.size {
		bc := b.items[(b.head+i)%b.max]
		bc.Data = maps.Clone(bc.Data)
		out = append(out, bc)
	}
	return out
}

// Len 返回当前条数
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Clear 清空缓冲区
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.items)
	b.head, b.size = 0, 0
}

var _ Recorder = (*Buffer)(nil)
