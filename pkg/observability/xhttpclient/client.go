package xhttpclient

import (
	"context"
	"fmt"
	"net/http"
)

// Doer 客户端入口的最小接口，*http.Client 满足该接口
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client 客户端层入口
//
// 与 [Interceptor.RoundTripper] 同时使用时，内层传输自动透传，不会重复插桩。
// 客户端层能看到跟随重定向后的最终请求，Span 描述据此修正。
// 重定向到非传播目标或上报地址时，本次写入的传播头从后续请求中移除。
type Client struct {
	i    *Interceptor
	doer Doer
}

// Client 包装 doer，nil 时使用 http.DefaultClient
//
// doer 为 *http.Client 时使用其浅拷贝，原有 CheckRedirect 仍然生效。
func (i *Interceptor) Client(doer Doer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	if hc, ok := doer.(*http.Client); ok {
		doer = i.withRedirectCheck(hc)
	}
	return &Client{i: i, doer: doer}
}

// maxRedirects 与 net/http 未设置 CheckRedirect 时的上限一致
const maxRedirects = 10

func (i *Interceptor) withRedirectCheck(hc *http.Client) *http.Client {
	c := *hc
	next := hc.CheckRedirect
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if i.revokeOnRedirect(req) {
			propagationFrom(req.Context()).strip(req.Header)
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
	return &c
}

// Do 发送请求，返回值与被包装的 Do 完全相同
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req == nil || isInstrumented(req.Context()) {
		return c.doer.Do(req)
	}
	out, tr := c.i.begin(originClient, req)
	if tr != nil {
		out = out.WithContext(markInstrumented(out.Context(), tr.propagation))
	}
	resp, err := c.doer.Do(out)
	if tr != nil {
		tr.complete(resp, err)
	}
	return resp, err
}

// Get 发送 GET 请求
//
// rawURL 可以省略 scheme，此时按 https 处理。地址无法规范化时按原样构造请求，
// 行为与未插桩的调用一致。
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	target := rawURL
	if d, err := Normalize(originClient, Call{RawURL: rawURL}); err == nil {
		target = d.parsed.String()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}
