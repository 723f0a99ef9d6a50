// Package router 管理网关路由配置，只负责将路径和处理器绑定到 gin 引擎.
package router

import (
	"github.com/gin-gonic/gin"
)

// RecordHandlers 定义由应用层注入的记录处理器，实现由 pkg/internal/handle 提供.
type RecordHandlers interface {
	Upload() gin.HandlerFunc
	List() gin.HandlerFunc
	Detail() gin.HandlerFunc
	OpenEdit() gin.HandlerFunc
	Delete() gin.HandlerFunc
	SaveEdit() gin.HandlerFunc
	CloseSelection() gin.HandlerFunc
	Probe() gin.HandlerFunc
	TableAdd() gin.HandlerFunc
}

// Register 将记录相关路由绑定到传入的路由组（假定上层为 /api）：
//
//	POST   /images           -> Upload
//	GET    /images           -> List
//	GET    /images/:id       -> Detail
//	GET    /images/:id/edit  -> OpenEdit
//	DELETE /images/:id       -> Delete
//	PUT    /selection        -> SaveEdit
//	DELETE /selection        -> CloseSelection
//	POST   /probe            -> Probe
//	POST   /probe/table      -> TableAdd
func Register(group *gin.RouterGroup, handlers RecordHandlers) {
	images := group.Group("/images")
	{
		images.POST("", handlers.Upload())
		images.GET("", handlers.List())
		images.GET("/:id", handlers.Detail())
		images.GET("/:id/edit", handlers.OpenEdit())
		images.DELETE("/:id", handlers.Delete())
	}

	selection := group.Group("/selection")
	{
		selection.PUT("", handlers.SaveEdit())
		selection.DELETE("", handlers.CloseSelection())
	}

	probe := group.Group("/probe")
	{
		probe.POST("", handlers.Probe())
		probe.POST("/table", handlers.TableAdd())
	}
}

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(g *gin.RouterGroup, health gin.HandlerFunc) {
	g.GET("/healthz", health)
}
