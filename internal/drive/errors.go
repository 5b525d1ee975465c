package drive

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 区分错误的传播策略：前四类终止请求，后两类只降级。
type Kind int

const (
	KindUnknown Kind = iota
	KindAccountNotFound
	KindForbidden
	KindNotFound
	KindUpstream
	KindContentFetch
	KindTooLarge
)

var kindCodes = map[Kind]string{
	KindUnknown:         "internal_error",
	KindAccountNotFound: "account_not_found",
	KindForbidden:       "forbidden",
	KindNotFound:        "not_found",
	KindUpstream:        "upstream_error",
	KindContentFetch:    "content_fetch_failed",
	KindTooLarge:        "too_large",
}

// String 返回用于 JSON 错误体与日志的短代码。
func (k Kind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindUnknown]
}

// Fatal 表示该类错误需要中止整个请求。
func (k Kind) Fatal() bool {
	return k != KindContentFetch && k != KindTooLarge
}

// Error 是领域错误，Message 面向最终用户，Err 保留底层原因。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError 构造领域错误。
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf 提取错误链中的 Kind，非领域错误返回 KindUnknown。
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// MessageOf 返回面向用户的错误信息。
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatus 将错误类别映射为 HTTP 状态码。
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindAccountNotFound, KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ErrItemNotFound 供“条目不存在”与“条目被隐藏”共用，二者对外不可区分。
func ErrItemNotFound() *Error {
	return NewError(KindNotFound, "file not found", nil)
}
