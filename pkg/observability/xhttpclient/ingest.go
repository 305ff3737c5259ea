package xhttpclient

import (
	"net/url"
	"strings"
)

// ingestEndpoint 解析后的上报地址前缀
//
// 按 scheme、主机名（忽略大小写）、端口（缺省按 scheme 补齐）与路径前缀比较，
// 写法不同但指向同一地址的 URL 视为同一上报地址。
type ingestEndpoint struct {
	scheme string
	host   string
	port   string
	path   string
}

func parseIngestEndpoint(raw string) (ingestEndpoint, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ingestEndpoint{}, false
	}
	return newIngestEndpoint(u), true
}

func newIngestEndpoint(u *url.URL) ingestEndpoint {
	scheme := strings.ToLower(u.Scheme)
	path := u.Path
	if path == "" {
		path = "/"
	}
	return ingestEndpoint{
		scheme: scheme,
		host:   strings.TrimSuffix(strings.ToLower(u.Hostname()), "."),
		port:   portOrDefault(u.Port(), scheme),
		path:   path,
	}
}

func (e ingestEndpoint) matches(u *url.URL) bool {
	if u == nil || u.Host == "" {
		return false
	}
	got := newIngestEndpoint(u)
	return got.scheme == e.scheme &&
		got.host == e.host &&
		got.port == e.port &&
		strings.HasPrefix(got.path, e.path)
}

func portOrDefault(port, scheme string) string {
	if port != "" {
		return port
	}
	switch scheme {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}
