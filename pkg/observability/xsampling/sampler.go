package xsampling

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidRate 表示采样比率不在 [0.0, 1.0] 范围内
var ErrInvalidRate = errors.New("xsampling: rate must be in [0.0, 1.0]")

// Sampler 采样策略接口
//
// ShouldSample 返回 true 表示采样。ctx 可以携带采样 key（见 [WithKey]）。
type Sampler interface {
	ShouldSample(ctx context.Context) bool
}

// Rater 可报告采样比率的采样器，比率会写入动态采样上下文的 sample_rate
type Rater interface {
	Rate() float64
}

type fixedSampler struct {
	decision bool
}

func (s fixedSampler) ShouldSample(context.Context) bool { return s.decision }

func (s fixedSampler) Rate() float64 {
	if s.decision {
		return 1
	}
	return 0
}

// Always 返回全采样策略
func Always() Sampler { return fixedSampler{decision: true} }

// Never 返回不采样策略
func Never() Sampler { return fixedSampler{decision: false} }

// RateSampler 固定比率的随机采样
type RateSampler struct {
	rate float64
}

// NewRateSampler 创建固定比率采样器，rate 超出 [0.0, 1.0] 或为 NaN 时返回 ErrInvalidRate
func NewRateSampler(rate float64) (*RateSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &RateSampler{rate: rate}, nil
}

// ShouldSample 按比率随机采样
func (s *RateSampler) ShouldSample(context.Context) bool {
	switch {
	case s.rate <= 0:
		return false
	case s.rate >= 1:
		return true
	}
	return randomFloat64() < s.rate
}

// Rate 返回采样比率
func (s *RateSampler) Rate() float64 { return s.rate }

// KeySampler 基于 key 的一致性采样
//
// 相同 key 在相同比率下总是得到相同结论，用 trace_id 作为 key 时
// 同一条链路在所有进程中的采样决策一致。key 为空时退化为随机采样。
type KeySampler struct {
	rate float64
}

// NewKeySampler 创建一致性采样器，key 通过 [WithKey] 放入 context
func NewKeySampler(rate float64) (*KeySampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &KeySampler{rate: rate}, nil
}

// ShouldSample 对 context 中的 key 做 xxhash 并与比率比较
func (s *KeySampler) ShouldSample(ctx context.Context) bool {
	switch {
	case s.rate <= 0:
		return false
	case s.rate >= 1:
		return true
	}
	key := Key(ctx)
	if key == "" {
		return randomFloat64() < s.rate
	}
	normalized := float64(xxhash.Sum64String(key)) / float64(math.MaxUint64)
	return normalized < s.rate
}

// Rate 返回采样比率
func (s *KeySampler) Rate() float64 { return s.rate }

// =============================================================================
// 采样 key
// =============================================================================

type contextKey string

const keySampling = contextKey("xsampling:key")

// WithKey 把采样 key 放入 context，nil ctx 会被替换为 context.Background()
func WithKey(ctx context.Context, key string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, keySampling, key)
}

// Key 返回 context 中的采样 key，不存在时返回空字符串
func Key(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(keySampling).(string)
	return v
}

// =============================================================================
// 内部辅助
// =============================================================================

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}

const floatScale = 1.0 / (1 << 53)

// randomFloat64 返回 [0.0, 1.0) 的随机数；熵源不可用时退化为不采样
func randomFloat64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) * floatScale
}

var (
	_ Sampler = fixedSampler{}
	_ Rater   = fixedSampler{}
	_ Sampler = (*RateSampler)(nil)
	_ Rater   = (*RateSampler)(nil)
	_ Sampler = (*KeySampler)(nil)
	_ Rater   = (*KeySampler)(nil)
)
