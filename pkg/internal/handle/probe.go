package handle

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

// Probe POST /probe，multipart 字段 file_type、operation、data、audit、isdel_field、
// isdel_value 以及可选文件 file. 存储返回非 2xx 时仍附带完整的请求与响应.
func (h *RecordHandlers) Probe() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ProbeRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, bindMessage(err, "invalid probe form",
				"API test failed: file_type and a supported operation are required"), err)
			return
		}

		att, err := h.readAttachment(c, "file")
		if err != nil {
			badRequest(c, attachmentMessage(err), err)
			return
		}

		r := h.svc.Probe(c.Request.Context(), req, att)
		if r.Err != nil && r.Data.Status != 0 {
			_ = c.Error(r.Err)
			c.JSON(StatusOf(r.Err), Response{Notice: r.Notice, Data: r.Data})

			return
		}

		reply(c, http.StatusOK, r)
	}
}

// TableAdd POST /probe/table，JSON 请求体 {"table": "...", "data": "..."}.
// 请求体直接解码，缺失字段交给工作流给出提示.
func (h *RecordHandlers) TableAdd() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.TableAddRequest
		if err := sonic.ConfigDefault.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			badRequest(c, "invalid request body", err)
			return
		}

		reply(c, http.StatusCreated, h.svc.TableAdd(c.Request.Context(), req))
	}
}
