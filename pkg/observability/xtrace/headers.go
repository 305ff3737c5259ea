package xtrace

import (
	"strings"
)

// =============================================================================
// HTTP Header 常量
// =============================================================================

// 传播头名称
const (
	// HeaderSentryTrace 链路上下文传播头
	HeaderSentryTrace = "sentry-trace"

	// HeaderBaggage 动态采样上下文传播头
	HeaderBaggage = "baggage"

	// HeaderTraceparent W3C Trace Context 标准头
	HeaderTraceparent = "traceparent"
)

const (
	// TraceIDLength trace_id 的十六进制长度（128 bit）
	TraceIDLength = 32

	// SpanIDLength span_id 的十六进制长度（64 bit）
	SpanIDLength = 16

	zeroTraceID = "00000000000000000000000000000000"
	zeroSpanID  = "0000000000000000"
)

// TraceInfo 从传播头解析出的链路信息
type TraceInfo struct {
	TraceID string
	SpanID  string

	// Sampled 上游采样决策，nil 表示上游未决定
	Sampled *bool
}

// IsEmpty 判断链路信息是否为空
func (t TraceInfo) IsEmpty() bool {
	return t.TraceID == "" && t.SpanID == "" && t.Sampled == nil
}

// =============================================================================
// sentry-trace
// =============================================================================

// FormatSentryTrace 生成 sentry-trace 头的值
//
// traceID/spanID 无效时返回空字符串，调用方应据此跳过写入，
// 而不是把空值设置到请求头上。
func FormatSentryTrace(traceID, spanID string, sampled *bool) string {
	if !IsValidTraceID(traceID) || !IsValidSpanID(spanID) {
		return ""
	}
	v := strings.ToLower(traceID) + "-" + strings.ToLower(spanID)
	if sampled != nil {
		if *sampled {
			v += "-1"
		} else {
			v += "-0"
		}
	}
	return v
}

// ParseSentryTrace 解析 sentry-trace 头
//
// 接受 "{trace_id}-{span_id}" 与 "{trace_id}-{span_id}-{0|1}" 两种形式，
// 首尾空白会被忽略。
func ParseSentryTrace(value string) (TraceInfo, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return TraceInfo{}, false
	}

	parts := strings.Split(value, "-")
	if len(parts) < 2 || len(parts) > 3 {
		return TraceInfo{}, false
	}
	if !IsValidTraceID(parts[0]) || !IsValidSpanID(parts[1]) {
		return TraceInfo{}, false
	}

	info := TraceInfo{
		TraceID: strings.ToLower(parts[0]),
		SpanID:  strings.ToLower(parts[1]),
	}
	if len(parts) == 3 {
		switch parts[2] {
		case "1":
			info.Sampled = boolPtr(true)
		case "0":
			info.Sampled = boolPtr(false)
		default:
			return TraceInfo{}, false
		}
	}
	return info, true
}

// =============================================================================
// W3C traceparent
// =============================================================================

// FormatTraceparent 生成 W3C traceparent 头的值
//
// sampled 为 nil 或 false 时 trace-flags 为 "00"。
func FormatTraceparent(traceID, spanID string, sampled *bool) string {
	if !IsValidTraceID(traceID) || !IsValidSpanID(spanID) {
		return ""
	}
	flags := "00"
	if sampled != nil && *sampled {
		flags = "01"
	}
	return "00-" + strings.ToLower(traceID) + "-" + strings.ToLower(spanID) + "-" + flags
}

// ParseTraceparent 解析 W3C traceparent 头
//
// 版本 "ff" 无效；未知的更高版本按 version-00 格式解析前 4 个字段，
// 版本 00 必须恰好 55 个字符。
func ParseTraceparent(value string) (TraceInfo, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 55 {
		return TraceInfo{}, false
	}

	parts := strings.SplitN(value, "-", 5)
	if len(parts) < 4 {
		return TraceInfo{}, false
	}

	version := parts[0]
	if len(version) != 2 || !isHex(version) || strings.EqualFold(version, "ff") {
		return TraceInfo{}, false
	}
	if version == "00" && len(value) != 55 {
		return TraceInfo{}, false
	}
	if !IsValidTraceID(parts[1]) || !IsValidSpanID(parts[2]) {
		return TraceInfo{}, false
	}
	flags := parts[3]
	if len(flags) != 2 || !isHex(flags) {
		return TraceInfo{}, false
	}

	// 只关心 sampled 位
	sampled := hexNibble(flags[1])&0x1 == 1
	return TraceInfo{
		TraceID: strings.ToLower(parts[1]),
		SpanID:  strings.ToLower(parts[2]),
		Sampled: &sampled,
	}, true
}

// =============================================================================
// 校验
// =============================================================================

// IsValidTraceID 判断是否为 32 位十六进制且非全零的 trace_id
func IsValidTraceID(id string) bool {
	return len(id) == TraceIDLength && isHex(id) && id != zeroTraceID
}

// IsValidSpanID 判断是否为 16 位十六进制且非全零的 span_id
func IsValidSpanID(id string) bool {
	return len(id) == SpanIDLength && isHex(id) && id != zeroSpanID
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func boolPtr(b bool) *bool {
	return &b
}
