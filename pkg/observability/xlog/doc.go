// Package xlog 基于 log/slog 的结构化日志库。
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/app/outbound.log", xlog.WithMaxSizeMB(50)).
//		Build()
//	defer cleanup()
//
// 轮转基于 lumberjack，按文件大小切分。
//
// # 追踪字段注入
//
// [EnrichHandler] 默认启用，从 context 的活动 Span（见 xspan）注入 trace_id 与 span_id，
// 让插桩日志可以和链路关联。
//
// # 全局 Logger
//
// [Default] 惰性创建，[SetDefault] 替换。[Debug]、[Info]、[Warn]、[Error]
// 为全局便利函数，签名为 (ctx, msg, ...slog.Attr)。
package xlog
