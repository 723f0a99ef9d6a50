// Package envelope 负责把用户意图转换为存储 API 的请求信封：内容指纹、记录标识、谓词列表、
// 字段合并、发送前校验以及响应归一化.
package envelope

import (
	"errors"
	"fmt"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

// Kind 错误分类.
type Kind string

const (
	// KindValidation 发送前的本地校验失败，不会发起网络请求.
	KindValidation Kind = "validation"
	// KindTransport 请求失败、超时或非 2xx 状态.
	KindTransport Kind = "transport"
	// KindApplication 2xx 响应但 success 为 false.
	KindApplication Kind = "application"
	// KindResponseShape 响应体不是合法 JSON.
	KindResponseShape Kind = "response_shape"
)

// Error 信封构建、发送与解析过程中的错误.
type Error struct {
	Kind    Kind
	Op      types.Operation
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}

	if e.Op != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Kind, msg)
	}

	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 允许 errors.Is(err, &Error{Kind: KindValidation}) 按分类匹配.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// ErrValidation 用于 errors.Is 匹配任意校验错误.
var ErrValidation = &Error{Kind: KindValidation}

func validationError(op types.Operation, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf 返回错误分类，非 *Error 返回空.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

// UserMessage 返回可直接展示给用户的错误文本.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}

		return e.Message
	}

	return err.Error()
}
