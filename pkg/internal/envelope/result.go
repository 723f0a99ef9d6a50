package envelope

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

// genericFailure success=false 且无 message 时的兜底文本.
const genericFailure = "operation failed"

// Result 存储响应的归一化结果，与产生它的操作无关.
type Result struct {
	Status  int
	Success bool
	Message string
	Records []types.Record
	// Body 解析后的 JSON；响应体不是 JSON 时为 nil，原文保存在 Raw
	Body any
	Raw  string
	// Failure 失败分类，成功时为空
	Failure Kind
}

// Err 失败时转换为 *Error，成功返回 nil.
func (r Result) Err(op types.Operation) error {
	if r.Success {
		return nil
	}

	msg := r.Message
	if r.Failure == KindResponseShape && msg == "" {
		msg = r.Raw
	}

	return &Error{Kind: r.Failure, Op: op, Message: msg}
}

type wireResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Normalize 解析 HTTP 状态与响应体. 非 2xx 一律视为传输失败；响应体不是 JSON 对象时原样保留在 Raw.
func Normalize(status int, body []byte) Result {
	res := Result{Status: status, Records: []types.Record{}}

	var parsed any
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		res.Raw = string(body)
	} else {
		res.Body = parsed
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		res.Failure = KindTransport
		res.Message = fmt.Sprintf("HTTP error! status: %d", status)

		return res
	}

	if _, isObject := res.Body.(map[string]any); !isObject {
		res.Failure = KindResponseShape
		res.Raw = string(body)

		if len(bytes.TrimSpace(body)) == 0 {
			res.Message = "empty response body"
		}

		return res
	}

	var w wireResult
	if err := sonic.Unmarshal(body, &w); err != nil {
		res.Failure = KindResponseShape
		res.Raw = string(body)

		return res
	}

	res.Message = w.Message

	if !w.Success {
		res.Failure = KindApplication
		if res.Message == "" {
			res.Message = genericFailure
		}

		return res
	}

	res.Success = true
	res.Records = toRecords(w.Data)

	return res
}

// toRecords 将 data 转换为记录列表：数组逐项转换，单个对象包装为一条，其余为空.
func toRecords(data any) []types.Record {
	switch v := data.(type) {
	case []any:
		out := make([]types.Record, 0, len(v))

		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, types.Record(m))
			}
		}

		return out
	case map[string]any:
		return []types.Record{types.Record(v)}
	default:
		return []types.Record{}
	}
}
