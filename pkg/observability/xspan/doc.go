// Package xspan 提供链路追踪的 Span/Transaction 对象模型。
//
// # 对象关系
//
//   - [Tracer] 创建 [Transaction]，负责 trace_id、采样决策与动态采样上下文
//   - [Transaction] 是根 Span，持有传播计数与已结束的子 Span
//   - [Span] 通过 StartChild 派生，保存对父 Span 与所属事务的引用
//
// Span 的 Finish 幂等：只有第一次调用记录结束时间、通知所属事务、结束 OTel 镜像。
//
// # Context
//
// 活动 Span 通过 [WithSpan] 放入 context，[SpanFromContext] 取出。
// 插桩代码通过一个可注入的访问函数获取活动 Span，默认就是 SpanFromContext，
// 不依赖进程级单例。
//
// # OpenTelemetry 镜像
//
// 配置 [WithTracerProvider] 后，每个 Span 都会在 OTel 中有一个同步开始、同步结束的镜像，
// 状态映射为 codes.Ok / codes.Error，附加数据转为属性。
//
// # 状态映射
//
// [HTTPStatus] 把 HTTP 状态码映射为 Span 状态；超出 [100, 600) 的状态码不映射。
package xspan
