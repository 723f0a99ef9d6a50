// Package middleware 提供网关使用的 gin 中间件：访问日志、跨域、压缩、追踪、监控、限流、熔断以及资源注入.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

// abortWithNotice 以网关统一的提示格式中止请求.
func abortWithNotice(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"notice": types.Failure(msg)})
}
