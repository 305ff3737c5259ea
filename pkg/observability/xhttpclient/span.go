package xhttpclient

import (
	"net/url"

	"github.com/omeyang/xoutbound/pkg/observability/xspan"
)

// OpHTTPClient 出站 HTTP 调用 Span 的操作类型
const OpHTTPClient = "http.client"

// Span 数据字段
const (
	DataMethod     = "http.method"
	DataURL        = "url"
	DataQuery      = "http.query"
	DataFragment   = "http.fragment"
	DataStatusCode = "http.response.status_code"
	DataAbandoned  = "http.abandoned"
)

// startChildSpan 在 parent 下创建描述出站调用的子 Span，parent 为 nil 时返回 nil
//
// 描述为 "<METHOD> <URL>"，查询串与片段移入 data。
func startChildSpan(parent *xspan.Span, d Descriptor) *xspan.Span {
	if parent == nil {
		return nil
	}
	bare, query, fragment := splitURL(d.parsed)
	opts := []xspan.SpanOption{
		xspan.WithDescription(d.Method + " " + bare),
		xspan.WithData(DataMethod, d.Method),
		xspan.WithData(DataURL, bare),
	}
	if query != "" {
		opts = append(opts, xspan.WithData(DataQuery, query))
	}
	if fragment != "" {
		opts = append(opts, xspan.WithData(DataFragment, fragment))
	}
	return parent.StartChild(OpHTTPClient, opts...)
}

// describe 返回 "<METHOD> <URL>"，URL 不含 userinfo、查询串与片段
func describe(method string, u *url.URL) string {
	bare, _, _ := splitURL(u)
	return method + " " + bare
}

func splitURL(u *url.URL) (bare, query, fragment string) {
	if u == nil {
		return "", "", ""
	}
	cp := *redact(u)
	query, fragment = cp.RawQuery, cp.EscapedFragment()
	cp.RawQuery, cp.ForceQuery = "", false
	cp.Fragment, cp.RawFragment = "", ""
	return cp.String(), query, fragment
}
