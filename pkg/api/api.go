// Package api 定义网关对外暴露的 HTTP 接口分组.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/storeclient/pkg/internal/handle"
	"github.com/yeisme/storeclient/pkg/internal/router"
)

// RegisterGroup 在 /api 下注册记录工作流与健康检查路由.
func RegisterGroup(e *gin.Engine, handlers router.RecordHandlers) *gin.Engine {
	g := e.Group("/api")

	router.Register(g, handlers)
	router.RegisterHealthCheckRoute(g, handle.Health)

	return e
}
