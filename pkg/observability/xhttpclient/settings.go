package xhttpclient

import (
	"context"
	"log/slog"

	"github.com/omeyang/xoutbound/pkg/config/xconf"
	"github.com/omeyang/xoutbound/pkg/observability/xlog"
)

// WithSettings 按配置文件设置选项，可与其他选项组合，后出现的选项覆盖先出现的
func WithSettings(s xconf.Settings) Option {
	return func(o *options) {
		WithActive(s.Enabled)(o)
		WithTracing(s.Tracing)(o)
		WithBreadcrumbs(s.Breadcrumbs)(o)
		WithTraceparent(s.Traceparent)(o)
		WithMatchCacheSize(s.MatchCacheSize)(o)
		WithFinishTimeout(s.FinishTimeout)(o)
		WithDSN(s.DSN)(o)
		for _, e := range s.IngestEndpoints {
			WithIngestEndpoint(e)(o)
		}
		if s.TracePropagationTargets != nil {
			WithTracePropagationTargets(s.TracePropagationTargets...)(o)
		}
	}
}

// Apply 应用配置中可在运行时切换的部分：活动状态与面包屑开关
//
// 传播目标、上报地址等构造期配置的变更需要重建 Interceptor。
func (i *Interceptor) Apply(s xconf.Settings) {
	i.SetActive(s.Enabled)
	i.SetBreadcrumbs(s.Breadcrumbs)
	i.logger.Info(context.Background(), "xhttpclient: settings applied",
		slog.Bool("active", s.Enabled), slog.Bool("breadcrumbs", s.Breadcrumbs))
}

// WatchCallback 返回用于 xconf.Watch 的回调，重载失败时保留当前状态
func (i *Interceptor) WatchCallback() xconf.WatchCallback {
	return func(s xconf.Settings, err error) {
		if err != nil {
			i.logger.Warn(context.Background(), "xhttpclient: config reload failed, keeping current settings", xlog.Err(err))
			return
		}
		i.Apply(s)
	}
}
