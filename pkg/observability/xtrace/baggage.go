package xtrace

import (
	"maps"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/baggage"
)

// BaggagePrefix 动态采样上下文成员在 baggage 中的键前缀
const BaggagePrefix = "sentry-"

// DSC 常用键（不含前缀）
const (
	DSCTraceID     = "trace_id"
	DSCPublicKey   = "public_key"
	DSCRelease     = "release"
	DSCEnvironment = "environment"
	DSCTransaction = "transaction"
	DSCSampleRate  = "sample_rate"
	DSCSampled     = "sampled"
)

// DynamicSamplingContext 动态采样上下文
//
// Frozen 为 true 表示上下文已经确定（来自上游或已被传播过），不应再修改。
// 零值表示不存在采样上下文，序列化结果为空字符串。
type DynamicSamplingContext struct {
	Entries map[string]string
	Frozen  bool
}

// NewDynamicSamplingContext 从键值对创建冻结的动态采样上下文，空值键被丢弃
func NewDynamicSamplingContext(entries map[string]string) DynamicSamplingContext {
	dsc := DynamicSamplingContext{Entries: make(map[string]string, len(entries)), Frozen: true}
	for k, v := range entries {
		k = strings.TrimPrefix(strings.TrimSpace(k), BaggagePrefix)
		if k == "" || v == "" {
			continue
		}
		dsc.Entries[k] = v
	}
	return dsc
}

// HasEntries 判断是否包含至少一个成员
func (d DynamicSamplingContext) HasEntries() bool {
	return len(d.Entries) > 0
}

// Get 返回指定键（不含前缀）的值
func (d DynamicSamplingContext) Get(key string) string {
	return d.Entries[key]
}

// String 序列化为 baggage 头的值
//
// 成员按键排序；无法编码的成员被跳过。没有成员时返回空字符串。
func (d DynamicSamplingContext) String() string {
	if !d.HasEntries() {
		return ""
	}

	members := make([]string, 0, len(d.Entries))
	for _, k := range slices.Sorted(maps.Keys(d.Entries)) {
		v := d.Entries[k]
		if v == "" {
			continue
		}
		m, err := baggage.NewMemberRaw(BaggagePrefix+k, v)
		if err != nil {
			continue
		}
		members = append(members, m.String())
	}
	return strings.Join(members, ",")
}

// ParseBaggage 从一个或多个 baggage 头值中提取动态采样上下文
//
// 只保留 "sentry-" 前缀成员。存在任何 sentry 成员时返回的上下文为冻结状态。
func ParseBaggage(values ...string) DynamicSamplingContext {
	entries := make(map[string]string)
	for _, v := range values {
		for _, raw := range strings.Split(v, ",") {
			raw = strings.TrimSpace(raw)
			if !strings.HasPrefix(raw, BaggagePrefix) {
				continue
			}
			// 单成员解析，格式错误只影响当前成员
			b, err := baggage.Parse(raw)
			if err != nil {
				continue
			}
			for _, m := range b.Members() {
				key := strings.TrimPrefix(m.Key(), BaggagePrefix)
				if key == "" || m.Value() == "" {
					continue
				}
				entries[key] = m.Value()
			}
		}
	}
	if len(entries) == 0 {
		return DynamicSamplingContext{}
	}
	return DynamicSamplingContext{Entries: entries, Frozen: true}
}
