package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/storeclient/pkg/configs"
)

// CORSMiddleware CORS中间件. 浏览器端上传需要暴露请求标识头.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AddAllowHeaders(HeaderRequestID)
	config.AddExposeHeaders(HeaderRequestID)
	config.AllowFiles = true

	if cfg.Debug {
		config.MaxAge = 0
	}

	return cors.New(config)
}
