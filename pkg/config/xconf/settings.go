package xconf

import (
	"fmt"
	"time"

	"github.com/omeyang/xoutbound/pkg/observability/xspan"
)

// Settings 出站 HTTP 插桩配置
//
// 字段缺省时保持 [Default] 中的值。TracePropagationTargets 为 nil 表示未配置
// （向所有目标传播），显式写成空列表表示不向任何目标传播。
type Settings struct {
	// Enabled 插桩是否处于活动状态，关闭后不再记录面包屑
	Enabled bool `koanf:"enabled"`

	// Tracing 是否为出站请求创建 Span 并传播链路头
	Tracing bool `koanf:"tracing"`

	// Breadcrumbs 是否记录 http 面包屑
	Breadcrumbs bool `koanf:"breadcrumbs"`

	DSN         string `koanf:"dsn"`
	Release     string `koanf:"release"`
	Environment string `koanf:"environment"`

	// SampleRate 事务采样比率，[0.0, 1.0]
	SampleRate float64 `koanf:"sample_rate"`

	TracePropagationTargets []string `koanf:"trace_propagation_targets"`

	// IngestEndpoints 额外的上报地址前缀，DSN 推导出的地址总是包含在内
	IngestEndpoints []string `koanf:"ingest_endpoints"`

	// Traceparent 是否额外附加 W3C traceparent 头
	Traceparent bool `koanf:"traceparent"`

	// MatchCacheSize 大于 0 时匹配缓存改为有界 LRU
	MatchCacheSize int `koanf:"match_cache_size"`

	// FinishTimeout 大于 0 时，请求在此时间内没有结束会被强制结束 Span
	FinishTimeout time.Duration `koanf:"finish_timeout"`

	Log LogSettings `koanf:"log"`
}

// LogSettings 日志配置
type LogSettings struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// File 非空时输出到按大小轮转的文件
	File string `koanf:"file"`
}

// Default 返回默认配置：全部启用、全采样、info 级别文本日志
func Default() Settings {
	return Settings{
		Enabled:     true,
		Tracing:     true,
		Breadcrumbs: true,
		SampleRate:  1,
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate 校验字段取值
func (s Settings) Validate() error {
	if s.SampleRate < 0 || s.SampleRate > 1 {
		return fmt.Errorf("%w: sample_rate %v out of [0, 1]", ErrInvalidSettings, s.SampleRate)
	}
	if s.MatchCacheSize < 0 {
		return fmt.Errorf("%w: match_cache_size must not be negative", ErrInvalidSettings)
	}
	if s.FinishTimeout < 0 {
		return fmt.Errorf("%w: finish_timeout must not be negative", ErrInvalidSettings)
	}
	if s.DSN != "" {
		if _, err := xspan.ParseDSN(s.DSN); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
	}
	return nil
}
