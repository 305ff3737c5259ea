package xhttpclient

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Target 一条传播目标模式
type Target struct {
	pattern string
	re      *regexp.Regexp
}

// CompileTargets 按顺序编译模式，空模式被跳过
//
// 无法编译为正则的模式只做子串匹配。
func CompileTargets(patterns []string) []Target {
	out := make([]Target, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		t := Target{pattern: p}
		if re, err := regexp.Compile(p); err == nil {
			t.re = re
		}
		out = append(out, t)
	}
	return out
}

// Match 子串包含或正则匹配任一成立即命中
func (t Target) Match(url string) bool {
	if strings.Contains(url, t.pattern) {
		return true
	}
	return t.re != nil && t.re.MatchString(url)
}

// String 返回原始模式
func (t Target) String() string { return t.pattern }

// matchStore 缓存存储
type matchStore interface {
	load(url string) (bool, bool)
	store(url string, v bool)
	len() int
}

type mapStore struct {
	m sync.Map
	n atomic.Int64
}

func (s *mapStore) load(url string) (bool, bool) {
	v, ok := s.m.Load(url)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

func (s *mapStore) store(url string, v bool) {
	if _, loaded := s.m.LoadOrStore(url, v); !loaded {
		s.n.Add(1)
	}
}

func (s *mapStore) len() int { return int(s.n.Load()) }

type lruStore struct {
	c *lru.Cache[string, bool]
}

func (s lruStore) load(url string) (bool, bool) { return s.c.Get(url) }
func (s lruStore) store(url string, v bool)     { s.c.Add(url, v) }
func (s lruStore) len() int                     { return s.c.Len() }

// MatchCache 按 URL 缓存是否附加传播头的结论
//
// 模式列表构造后不可变，同一 URL 的结论在进程生命周期内不变。
// 同一 URL 的并发首次查询只求值一次。size > 0 时为有界 LRU，
// 被淘汰的 URL 针对同一模式列表重新求值，结论相同。
type MatchCache struct {
	targets    []Target
	configured bool
	store      matchStore
	group      singleflight.Group

	evaluations atomic.Int64
}

// NewMatchCache 创建匹配缓存
//
// patterns 为 nil 表示未配置，ShouldAttach 总是返回 true。
func NewMatchCache(patterns []string, size int) (*MatchCache, error) {
	c := &MatchCache{
		targets:    CompileTargets(patterns),
		configured: patterns != nil,
	}
	switch {
	case size < 0:
		return nil, fmt.Errorf("%w: match cache size %d", ErrInvalidOption, size)
	case size > 0:
		l, err := lru.New[string, bool](size)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		c.store = lruStore{c: l}
	default:
		c.store = &mapStore{}
	}
	return c, nil
}

// ShouldAttach 判断是否向 url 附加传播头
func (c *MatchCache) ShouldAttach(url string) bool {
	if !c.configured {
		return true
	}
	if v, ok := c.store.load(url); ok {
		return v
	}
	v, _, _ := c.group.Do(url, func() (any, error) {
		if v, ok := c.store.load(url); ok {
			return v, nil
		}
		c.evaluations.Add(1)
		matched := c.evaluate(url)
		c.store.store(url, matched)
		return matched, nil
	})
	return v.(bool)
}

func (c *MatchCache) evaluate(url string) bool {
	for _, t := range c.targets {
		if t.Match(url) {
			return true
		}
	}
	return false
}

// Targets 返回编译后的模式列表副本
func (c *MatchCache) Targets() []Target {
	return append([]Target(nil), c.targets...)
}

// Evaluations 返回模式列表被求值的次数
func (c *MatchCache) Evaluations() int64 { return c.evaluations.Load() }

// Len 返回缓存条目数
func (c *MatchCache) Len() int { return c.store.len() }
