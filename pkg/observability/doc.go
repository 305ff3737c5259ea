// Package observability 提供出站 HTTP 插桩相关的子包。
//
// 子包列表：
//   - xtrace: sentry-trace / traceparent 头与 baggage 动态采样上下文编解码
//   - xsampling: 事务采样策略
//   - xspan: Span / Transaction 模型，可镜像到 OpenTelemetry
//   - xbreadcrumb: 面包屑与有界缓冲区
//   - xhttpclient: 出站请求插桩（传输层与客户端层两个入口）
//   - xlog: 结构化日志，基于 log/slog 扩展
//
// 设计原则：
//   - 显式包装，不修改全局对象
//   - 插桩失败时请求原样发出
//   - 自动从 context 中提取追踪信息注入日志
package observability
