package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

// SaveEdit PUT /selection，保存当前编辑目标. multipart 字段 file_name、file_type、
// file_description 以及可选的替换文件 file.
func (h *RecordHandlers) SaveEdit() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.EditRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, bindMessage(err, "invalid edit form", "file name is required"), err)
			return
		}

		att, err := h.readAttachment(c, "file")
		if err != nil {
			badRequest(c, attachmentMessage(err), err)
			return
		}

		reply(c, http.StatusOK, h.svc.SaveEdit(c.Request.Context(), req, att))
	}
}

// CloseSelection DELETE /selection.
func (h *RecordHandlers) CloseSelection() gin.HandlerFunc {
	return func(c *gin.Context) {
		r := h.svc.CloseSelection()
		c.JSON(http.StatusOK, Response{Notice: r.Notice, Data: r.Data})
	}
}
