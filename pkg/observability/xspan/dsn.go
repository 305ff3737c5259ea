package xspan

import (
	"fmt"
	"net/url"
	"strings"
)

// DSN 遥测后端接入地址
//
// 格式：{scheme}://{public_key}@{host}[:{port}][/{path}]/{project_id}
type DSN struct {
	scheme    string
	publicKey string
	host      string
	path      string
	projectID string
}

// ParseDSN 解析 DSN
func ParseDSN(raw string) (*DSN, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidDSN)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidDSN, u.Scheme)
	}
	if u.User == nil || u.User.Username() == "" {
		return nil, fmt.Errorf("%w: missing public key", ErrInvalidDSN)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidDSN)
	}

	p := strings.TrimSuffix(u.Path, "/")
	idx := strings.LastIndex(p, "/")
	if idx < 0 || p[idx+1:] == "" {
		return nil, fmt.Errorf("%w: missing project id", ErrInvalidDSN)
	}

	return &DSN{
		scheme:    u.Scheme,
		publicKey: u.User.Username(),
		host:      u.Host,
		path:      p[:idx],
		projectID: p[idx+1:],
	}, nil
}

// PublicKey 返回公钥
func (d *DSN) PublicKey() string { return d.publicKey }

// Host 返回 host[:port]
func (d *DSN) Host() string { return d.host }

// ProjectID 返回项目 ID
func (d *DSN) ProjectID() string { return d.projectID }

// IngestEndpoint 返回遥测后端自身的接入地址前缀
//
// 发往该前缀的请求属于上报流量，不应被再次插桩。
func (d *DSN) IngestEndpoint() string {
	return d.scheme + "://" + d.host + d.path + "/api/" + d.projectID + "/"
}

// String 返回规范形式，不含 secret 与查询参数
func (d *DSN) String() string {
	return d.scheme + "://" + d.publicKey + "@" + d.host + d.path + "/" + d.projectID
}
