package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/storeclient/pkg/context"
	"github.com/yeisme/storeclient/pkg/internal/storage"
)

// StorageMiddleware 将资源管理器注入请求上下文，健康检查等处理器从上下文读取.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
