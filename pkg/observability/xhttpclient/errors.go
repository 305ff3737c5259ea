package xhttpclient

import "errors"

var (
	// ErrMalformedURL 请求地址无法解析或缺少 host，该请求不做插桩
	ErrMalformedURL = errors.New("xhttpclient: malformed url")

	// ErrInvalidOption 选项取值非法
	ErrInvalidOption = errors.New("xhttpclient: invalid option")
)
