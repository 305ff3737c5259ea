package xhttpclient

import "net/http"

// transport 传输层入口
type transport struct {
	i    *Interceptor
	base http.RoundTripper
}

// RoundTripper 包装 base，base 为 nil 时使用 http.DefaultTransport
//
// 返回值与 base 的返回值完全相同；请求头只写在克隆的请求上。
func (i *Interceptor) RoundTripper(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{i: i, base: base}
}

// RoundTrip 实现 http.RoundTripper
//
// 外层客户端入口已插桩时不再创建 Span；若请求是重定向后的后续请求且目标不再命中
// 传播目标，在克隆的请求上移除外层写入的传播头。
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return t.base.RoundTrip(req)
	}
	if isInstrumented(req.Context()) {
		if t.i.revokeOnRedirect(req) {
			req = req.Clone(req.Context())
			propagationFrom(req.Context()).strip(req.Header)
		}
		return t.base.RoundTrip(req)
	}
	out, tr := t.i.begin(originTransport, req)
	resp, err := t.base.RoundTrip(out)
	if tr != nil {
		tr.complete(resp, err)
	}
	return resp, err
}

// CloseIdleConnections 透传给 base
func (t *transport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if c, ok := t.base.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}

// Unwrap 返回被包装的 RoundTripper
func (t *transport) Unwrap() http.RoundTripper { return t.base }
