package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Source 一份已加载的配置数据
//
// 从文件创建的 Source 支持 Reload 与 Watch。所有方法并发安全。
type Source struct {
	opts   *options
	path   string
	format Format

	mu sync.RWMutex
	k  *koanf.Koanf
}

// Open 从文件加载配置，根据扩展名检测格式（.yaml/.yml 或 .json）。
func Open(path string, opts ...Option) (*Source, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	s := &Source{opts: applyOptions(opts), path: path, format: format}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenBytes 从字节数据加载配置，适用于 ConfigMap 或内嵌配置。
// 空数据得到空配置，Settings 返回默认值。
func OpenBytes(data []byte, format Format, opts ...Option) (*Source, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}
	s := &Source{opts: applyOptions(opts), format: format}
	k, err := parse(data, format, s.opts.delim)
	if err != nil {
		return nil, err
	}
	s.k = k
	return s, nil
}

// Load 打开文件并返回校验后的 Settings。
func Load(path string, opts ...Option) (Settings, error) {
	s, err := Open(path, opts...)
	if err != nil {
		return Settings{}, err
	}
	return s.Settings()
}

// Settings 在 [Default] 之上反序列化配置段并校验。
func (s *Source) Settings() (Settings, error) {
	out := Default()

	s.mu.RLock()
	err := s.k.UnmarshalWithConf(s.opts.section, &out, koanf.UnmarshalConf{Tag: s.opts.tag})
	s.mu.RUnlock()
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	if err := out.Validate(); err != nil {
		return Settings{}, err
	}
	return out, nil
}

// Client 返回底层的 koanf 实例，用于读取 Settings 之外的键。
func (s *Source) Client() *koanf.Koanf {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.k
}

// Reload 重新读取文件。解析失败时保留旧数据。
func (s *Source) Reload() error {
	if s.path == "" {
		return ErrNotReloadable
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k, err := parse(data, s.format, s.opts.delim)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.k = k
	s.mu.Unlock()
	return nil
}

// Path 返回配置文件路径，从字节数据创建时为空。
func (s *Source) Path() string { return s.path }

// Format 返回配置格式。
func (s *Source) Format() Format { return s.format }

// =============================================================================
// 内部辅助函数
// =============================================================================

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func isValidFormat(format Format) bool {
	return format == FormatYAML || format == FormatJSON
}

func parse(data []byte, format Format, delim string) (*koanf.Koanf, error) {
	k := koanf.New(delim)
	if len(data) == 0 {
		return k, nil
	}

	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, ErrUnsupportedFormat
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}
