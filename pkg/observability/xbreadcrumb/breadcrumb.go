package xbreadcrumb

import (
	"context"
	"net/http"
	"time"
)

// Level 面包屑级别
type Level string

// 级别常量
const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

// Event 触发面包屑的生命周期事件
type Event string

// 事件常量
const (
	EventResponse Event = "response"
	EventError    Event = "error"
)

// 数据字段名
const (
	DataMethod     = "method"
	DataURL        = "url"
	DataStatusCode = "status_code"
)

// Breadcrumb 一条事件记录，写入后不再修改
type Breadcrumb struct {
	Type      string         `json:"type,omitempty"`
	Category  string         `json:"category,omitempty"`
	Message   string         `json:"message,omitempty"`
	Level     Level          `json:"level,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// StatusCode 返回 data 中的状态码，不存在返回 (0, false)
func (b Breadcrumb) StatusCode() (int, bool) {
	code, ok := b.Data[DataStatusCode].(int)
	return code, ok
}

// Hint 面包屑的生命周期元数据
//
// 不会被序列化，只在 Recorder 与 before 钩子中可见。
type Hint struct {
	Event    Event
	Request  *http.Request
	Response *http.Response
	Err      error
}

// Recorder 面包屑接收方
//
// 实现必须并发安全，不应阻塞调用方。
type Recorder interface {
	Record(ctx context.Context, b Breadcrumb, hint Hint)
}

// RecorderFunc 函数适配器
type RecorderFunc func(ctx context.Context, b Breadcrumb, hint Hint)

// Record 调用 f
func (f RecorderFunc) Record(ctx context.Context, b Breadcrumb, hint Hint) {
	f(ctx, b, hint)
}

// Discard 丢弃所有面包屑
var Discard Recorder = RecorderFunc(func(context.Context, Breadcrumb, Hint) {})
