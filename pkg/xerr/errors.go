package xerr

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeMsg 携带错误码、错误消息和原始错误
type CodeMsg struct {
	Code int    // 错误码
	Msg  string // 错误消息
	Err  error  // 原始错误
}

func (e *CodeMsg) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, msg=%s, err=%v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("code=%d, msg=%s", e.Code, e.Msg)
}

func (e *CodeMsg) Unwrap() error {
	return e.Err
}

// New 构造函数
func New(code int, msg string) error {
	return &CodeMsg{Code: code, Msg: msg}
}

// NotFound 资源不存在
func NotFound(msg string) error {
	return &CodeMsg{Code: ErrResourceNotFound, Msg: msg}
}

// InvalidParam 参数校验失败
func InvalidParam(msg string) error {
	return &CodeMsg{Code: ErrInvalidInput, Msg: msg}
}

// Upstream 上游服务不可用
func Upstream(msg string, err error) error {
	return &CodeMsg{Code: ErrUpstream, Msg: msg, Err: err}
}

// Store 持久层错误，保留原始错误便于排查
func Store(msg string, err error) error {
	return &CodeMsg{Code: ErrStore, Msg: msg, Err: err}
}

func codeOf(err error) (int, bool) {
	var cm *CodeMsg
	if errors.As(err, &cm) {
		return cm.Code, true
	}
	return 0, false
}

func IsNotFound(err error) bool {
	code, ok := codeOf(err)
	return ok && (code == ErrNotFound || code == ErrResourceNotFound)
}

func IsInvalidParam(err error) bool {
	code, ok := codeOf(err)
	return ok && code >= ErrBadRequest && code <= ErrInvalidJSON
}

func IsUpstream(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrUpstream
}

// HTTPStatus 将错误码映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalidParam(err):
		return http.StatusBadRequest
	case IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
