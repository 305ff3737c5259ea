// Package xconf 加载出站 HTTP 插桩配置。
//
// 基于 koanf，支持 YAML 与 JSON，文件或字节数据两种来源：
//
//	settings, err := xconf.Load("/etc/app/outbound.yaml", xconf.WithSection("outbound"))
//
// 配置示例：
//
//	outbound:
//	  dsn: https://public@o1.ingest.example.com/42
//	  trace_propagation_targets: ["api.example.com", "^https://internal\\."]
//	  breadcrumbs: true
//	  finish_timeout: 30s
//	  log:
//	    level: debug
//
// # 热更新
//
// [Watch] 基于 fsnotify 监视配置文件，防抖后重新加载并回调新的 [Settings]。
// 回调收到错误时应继续使用旧配置。
package xconf
