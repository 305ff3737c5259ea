// Package xtrace 提供出站请求链路传播头的编解码能力。
//
// # 支持的 Header
//
//   - sentry-trace: {trace_id}-{span_id}[-{sampled}]，sampled 为 "1"/"0"，未决定时省略
//   - baggage: W3C Baggage，其中 "sentry-" 前缀成员构成动态采样上下文（DSC）
//   - traceparent: W3C Trace Context，{version}-{trace-id}-{parent-id}-{trace-flags}
//
// xtrace 只做格式转换，不持有任何状态；Span 与 Transaction 由 xspan 管理，
// 是否向某个目标附加传播头由 xhttpclient 决定。
//
// # 动态采样上下文
//
// [DynamicSamplingContext] 的键不含 "sentry-" 前缀，序列化时统一加上前缀并按键排序，
// 保证同一上下文在所有请求上产生相同的 baggage 值。
// 成员的编码与校验委托给 go.opentelemetry.io/otel/baggage。
//
// 解析 baggage 时只保留 "sentry-" 前缀成员，第三方成员被忽略（它们仍保留在原始请求头里）。
// 单个成员格式错误时跳过该成员，不影响其余成员。
//
// # 大小写
//
// 生成的 trace_id/span_id 统一为小写十六进制；解析时同时接受大写输入。
package xtrace
