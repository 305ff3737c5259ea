package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key
const (
	KeyError        = "error"
	KeyDuration     = "duration"
	KeyComponent    = "component"
	KeyTraceID      = "trace_id"
	KeySpanID       = "span_id"
	KeyMethod       = "method"
	KeyURL          = "url"
	KeyStatusCode   = "status_code"
	KeyPropagations = "propagations"
)

// Err 创建错误属性，err 为 nil 时返回空属性（会被 slog 忽略）
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Method 创建 HTTP 方法属性
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// URL 创建请求地址属性
func URL(u string) slog.Attr {
	return slog.String(KeyURL, u)
}

// StatusCode 创建 HTTP 状态码属性
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}

// Propagations 创建传播计数属性
func Propagations(n int64) slog.Attr {
	return slog.Int64(KeyPropagations, n)
}
