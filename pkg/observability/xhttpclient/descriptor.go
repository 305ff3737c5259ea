package xhttpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Entry 出站请求的入口
type Entry string

// 入口常量
const (
	EntryTransport Entry = "transport"
	EntryClient    Entry = "client"
)

// Origin 调用来源，由包装层显式传给 Normalize
type Origin struct {
	Entry Entry

	// Scheme 地址缺少 scheme 时使用，为空时按 http 处理
	Scheme string
}

var (
	originTransport = Origin{Entry: EntryTransport, Scheme: "http"}
	originClient    = Origin{Entry: EntryClient, Scheme: "https"}
)

// Call 出站调用的参数
//
// Request 非 nil 时以它为准，否则依次使用 URL、RawURL。
type Call struct {
	Request *http.Request
	URL     *url.URL
	RawURL  string
	Method  string
	Header  http.Header
}

// Descriptor 规范化后的请求视图
//
// URL 为绝对地址且不含 userinfo；Header 是调用方头部的只读视图。
type Descriptor struct {
	Method string
	URL    string
	Header http.Header

	parsed *url.URL
}

// Parsed 返回解析后的地址副本（保留 userinfo）
func (d Descriptor) Parsed() *url.URL {
	if d.parsed == nil {
		return nil
	}
	u := *d.parsed
	return &u
}

// Normalize 从调用参数构造 Descriptor，不修改调用方的参数
//
// 缺少 method 默认为 GET，缺少 header 默认为空。
// 无法解析或缺少 host 的地址返回 ErrMalformedURL。
func Normalize(origin Origin, call Call) (Descriptor, error) {
	var (
		u      *url.URL
		method = call.Method
		header = call.Header
		tls    bool
	)

	switch {
	case call.Request != nil:
		if call.Request.URL == nil {
			return Descriptor{}, fmt.Errorf("%w: request without url", ErrMalformedURL)
		}
		cp := *call.Request.URL
		u = &cp
		if u.Host == "" {
			u.Host = call.Request.Host
		}
		method = call.Request.Method
		header = call.Request.Header
		tls = call.Request.TLS != nil
	case call.URL != nil:
		cp := *call.URL
		u = &cp
	default:
		parsed, err := parseRaw(call.RawURL, origin.scheme())
		if err != nil {
			return Descriptor{}, err
		}
		u = parsed
	}

	if u.Scheme == "" {
		u.Scheme = origin.scheme()
		if tls {
			u.Scheme = "https"
		}
	}
	if u.Host == "" {
		return Descriptor{}, fmt.Errorf("%w: missing host", ErrMalformedURL)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	if header == nil {
		header = http.Header{}
	}

	return Descriptor{
		Method: method,
		URL:    redact(u).String(),
		Header: header,
		parsed: u,
	}, nil
}

func (o Origin) scheme() string {
	if o.Scheme == "" {
		return "http"
	}
	return o.Scheme
}

func parseRaw(raw, scheme string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedURL)
	}
	if !strings.Contains(raw, "://") {
		raw = scheme + "://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedURL, err)
	}
	return u, nil
}

// redact 去掉 userinfo，避免凭证进入 Span 与面包屑
func redact(u *url.URL) *url.URL {
	if u.User == nil {
		return u
	}
	cp := *u
	cp.User = nil
	return &cp
}
