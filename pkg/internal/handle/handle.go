// Package handle 提供网关请求处理器的实现，把 HTTP 请求转换为记录工作流调用.
package handle

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/storeclient/pkg/internal/envelope"
	"github.com/yeisme/storeclient/pkg/internal/service"
	"github.com/yeisme/storeclient/pkg/internal/types"
	"github.com/yeisme/storeclient/pkg/rule"
)

// Response 网关统一响应：一次性提示加上工作流数据.
type Response struct {
	Notice types.Notification `json:"notice"`
	Data   any                `json:"data,omitempty"`
}

// RecordHandlers 持有唯一的 RecordService，所有请求共享同一个目标槽位.
type RecordHandlers struct {
	svc       *service.RecordService
	maxUpload int64
}

// NewRecordHandlers 创建处理器. maxUpload 为单个上传文件的字节上限，<=0 表示不限制.
// 创建时初始化 rule 引擎，gin 绑定请求时按 rule 标签校验.
func NewRecordHandlers(svc *service.RecordService, maxUpload int64) *RecordHandlers {
	rule.Engine()

	return &RecordHandlers{svc: svc, maxUpload: maxUpload}
}

// StatusOf 将工作流错误映射为 HTTP 状态码.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrNoSelection), errors.Is(err, service.ErrStaleTarget):
		return http.StatusConflict
	case service.IsNotFound(err):
		return http.StatusNotFound
	}

	switch envelope.KindOf(err) {
	case envelope.KindValidation:
		return http.StatusBadRequest
	case envelope.KindApplication:
		return http.StatusUnprocessableEntity
	case envelope.KindTransport, envelope.KindResponseShape:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// reply 写出工作流结果. 失败时不返回数据.
func reply[T any](c *gin.Context, okStatus int, r service.Reply[T]) {
	if r.Err != nil {
		_ = c.Error(r.Err)
		c.JSON(StatusOf(r.Err), Response{Notice: r.Notice})

		return
	}

	c.JSON(okStatus, Response{Notice: r.Notice, Data: r.Data})
}

// badRequest 请求本身无法解析时的响应.
func badRequest(c *gin.Context, msg string, err error) {
	if err != nil {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Notice: types.Failure(msg)})
}

// bindMessage 区分请求格式错误与字段校验失败.
func bindMessage(err error, malformed, invalid string) string {
	if rule.Errors(err) != nil {
		return invalid
	}

	return malformed
}

var errFileTooLarge = errors.New("file too large")

// readAttachment 读取 multipart 中的文件字段. 没有上传文件时返回 nil, nil.
// 请求未声明媒体类型时按内容探测.
func (h *RecordHandlers) readAttachment(c *gin.Context, field string) (*types.Attachment, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read form file: %w", err)
	}

	if h.maxUpload > 0 && fh.Size > h.maxUpload {
		return nil, fmt.Errorf("%w: %d bytes", errFileTooLarge, fh.Size)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open form file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read form file: %w", err)
	}

	return types.NewAttachment(fh.Filename, fh.Header.Get("Content-Type"), content), nil
}

// attachmentMessage 文件读取失败时展示给用户的文本.
func attachmentMessage(err error) string {
	if errors.Is(err, errFileTooLarge) {
		return "file is too large"
	}

	return "could not read the uploaded file"
}
