package xspan

import "errors"

var (
	// ErrNilContext 传入的 context 为 nil
	ErrNilContext = errors.New("xspan: nil context")

	// ErrMissingSpan context 中没有活动 Span
	ErrMissingSpan = errors.New("xspan: missing active span")

	// ErrInvalidDSN DSN 格式错误
	ErrInvalidDSN = errors.New("xspan: invalid dsn")
)
