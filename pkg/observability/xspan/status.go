package xspan

import "net/http"

// Status Span 完成状态
//
// 空字符串表示未设置。
type Status string

// 状态常量
const (
	StatusOK                 Status = "ok"
	StatusCancelled          Status = "cancelled"
	StatusUnknown            Status = "unknown_error"
	StatusInvalidArgument    Status = "invalid_argument"
	StatusDeadlineExceeded   Status = "deadline_exceeded"
	StatusNotFound           Status = "not_found"
	StatusAlreadyExists      Status = "already_exists"
	StatusPermissionDenied   Status = "permission_denied"
	StatusResourceExhausted  Status = "resource_exhausted"
	StatusFailedPrecondition Status = "failed_precondition"
	StatusAborted            Status = "aborted"
	StatusOutOfRange         Status = "out_of_range"
	StatusUnimplemented      Status = "unimplemented"
	StatusInternalError      Status = "internal_error"
	StatusUnavailable        Status = "unavailable"
	StatusDataLoss           Status = "data_loss"
	StatusUnauthenticated    Status = "unauthenticated"
)

// IsError 判断状态是否表示失败
func (s Status) IsError() bool {
	return s != "" && s != StatusOK
}

// HTTPStatus 把 HTTP 状态码映射为 Span 状态
//
// 1xx-3xx 为 ok；常见 4xx/5xx 有专门映射，其余 4xx 为 invalid_argument，
// 其余 5xx 为 internal_error。不在 [100, 600) 内的状态码返回 ("", false)，
// 调用方应保持状态未设置。
func HTTPStatus(code int) (Status, bool) {
	switch {
	case code >= 100 && code < 400:
		return StatusOK, true
	case code >= 400 && code < 500:
		switch code {
		case http.StatusUnauthorized:
			return StatusUnauthenticated, true
		case http.StatusForbidden:
			return StatusPermissionDenied, true
		case http.StatusNotFound:
			return StatusNotFound, true
		case http.StatusConflict:
			return StatusAlreadyExists, true
		case http.StatusRequestEntityTooLarge:
			return StatusFailedPrecondition, true
		case http.StatusTooManyRequests:
			return StatusResourceExhausted, true
		case 499: // client closed request
			return StatusCancelled, true
		}
		return StatusInvalidArgument, true
	case code >= 500 && code < 600:
		switch code {
		case http.StatusNotImplemented:
			return StatusUnimplemented, true
		case http.StatusServiceUnavailable:
			return StatusUnavailable, true
		case http.StatusGatewayTimeout:
			return StatusDeadlineExceeded, true
		}
		return StatusInternalError, true
	}
	return "", false
}
