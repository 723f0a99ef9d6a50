package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

// Upload POST /images，multipart 字段 file、description、classifier.
func (h *RecordHandlers) Upload() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.UploadRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, bindMessage(err, "invalid upload form", "classifier is too long"), err)
			return
		}

		att, err := h.readAttachment(c, "file")
		if err != nil {
			badRequest(c, attachmentMessage(err), err)
			return
		}

		reply(c, http.StatusCreated, h.svc.Upload(c.Request.Context(), att, req))
	}
}

// List GET /images?show_all=&keyword=，有关键字时按文件名搜索.
func (h *RecordHandlers) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		var q types.ListQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, "invalid query", err)
			return
		}

		if q.Keyword != "" {
			reply(c, http.StatusOK, h.svc.Search(c.Request.Context(), q))
			return
		}

		reply(c, http.StatusOK, h.svc.List(c.Request.Context(), q.ShowAll))
	}
}

// Detail GET /images/:id，打开详情并替换当前目标.
func (h *RecordHandlers) Detail() gin.HandlerFunc {
	return func(c *gin.Context) {
		reply(c, http.StatusOK, h.svc.Detail(c.Request.Context(), c.Param("id")))
	}
}

// OpenEdit GET /images/:id/edit，打开编辑目标.
func (h *RecordHandlers) OpenEdit() gin.HandlerFunc {
	return func(c *gin.Context) {
		reply(c, http.StatusOK, h.svc.OpenEdit(c.Request.Context(), c.Param("id")))
	}
}

// Delete DELETE /images/:id?deleted=true，deleted 表示记录已被标记删除.
func (h *RecordHandlers) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted := false

		if raw := c.Query("deleted"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				badRequest(c, "deleted must be true or false", err)
				return
			}

			deleted = v
		}

		reply(c, http.StatusOK, h.svc.Delete(c.Request.Context(), c.Param("id"), deleted))
	}
}
