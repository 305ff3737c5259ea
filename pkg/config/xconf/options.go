package xconf

// options 配置加载选项。
type options struct {
	delim   string
	tag     string
	section string
}

// Option 定义配置选项函数类型。
type Option func(*options)

func defaultOptions() *options {
	return &options{
		delim: ".",
		tag:   "koanf",
	}
}

// WithDelim 设置配置键分隔符，默认为 "."。
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

// WithTag 设置结构体标签名，默认为 "koanf"。
func WithTag(tag string) Option {
	return func(o *options) {
		if tag != "" {
			o.tag = tag
		}
	}
}

// WithSection 设置 Settings 所在的配置段，例如 "observability.outbound"。
// 默认为空，即整个文件。
func WithSection(section string) Option {
	return func(o *options) {
		o.section = section
	}
}
