package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/storeclient/pkg/context"
)

const timeout = 2 * time.Second

// healthProbeKey 健康检查读取的键，不存在是正常情况.
const healthProbeKey = "healthz"

// Health GET /healthz，报告存储 API 地址和 KV 状态. 不访问存储 API.
func Health(c *gin.Context) {
	mgr := ctxPkg.GetManager(c.Request.Context())
	if mgr == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "storage manager not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	kv := ctxPkg.GetKVClient(ctx)
	if kv == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "kv client not initialized"})
		return
	}

	if _, err := kv.Exists(ctx, healthProbeKey); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "component": "kv", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": mgr.GetStoreClient().BaseURL(), "kv": "ok"})
}
