// Package xhttpclient 为出站 HTTP 请求插桩。
//
// 每个被插桩的请求：
//
//   - 在 context 的活动 Span 下创建 op 为 http.client 的子 Span
//   - 按传播目标向下游附加 sentry-trace 与 baggage（可选 traceparent）
//   - 请求结束后记录 http 面包屑，并以状态码或错误结束 Span
//
// # 两个入口
//
// 传输层入口 [Interceptor.RoundTripper] 包装任意 http.RoundTripper；
// 客户端层入口 [Interceptor.Client] 包装任意 [Doer]（如 *http.Client），并提供 Get。
// 两者可以叠加，内层自动透传。
//
//	i, err := xhttpclient.New(
//		xhttpclient.WithDSN(dsn),
//		xhttpclient.WithTracePropagationTargets("api.example.com"),
//		xhttpclient.WithRecorder(buffer),
//	)
//	client := &http.Client{Transport: i.RoundTripper(nil)}
//
// # 传播目标
//
// 不配置时向所有目标传播。配置后每个 URL 第一次出现时按顺序匹配所有模式，
// 结论缓存在 [MatchCache] 中，之后不再求值。
//
// # 上报地址
//
// 发往遥测后端上报地址（由 DSN 推导或 [WithIngestEndpoint] 指定）的请求
// 原样透传：不创建 Span、不记录面包屑、不改写请求头。
//
// # 失败开放
//
// 地址无法解析、插桩内部 panic 等情况下请求原样发出，不向调用方返回额外错误。
// 底层调用的返回值总是原样返回。
//
// # 终止事件
//
// 每个请求的 response 与 error 事件至多处理一次。[WithFinishTimeout] 可以为
// 迟迟不返回的请求强制结束 Span。
package xhttpclient
