// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集网关请求、存储 API 调用和出口地址查询的指标.
//
// Example:
//
//	import "github.com/yeisme/storeclient/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.StoreRequests.WithLabelValues("check", "success").Inc()
//	metrics.StoreRequestDuration.WithLabelValues("check").Observe(0.1)
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/storeclient/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// StoreRequests 存储 API 调用计数，outcome 为 success 或失败分类.
	StoreRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_requests_total",
			Help: "Total number of record store API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// StoreRequestDuration 存储 API 调用耗时.
	StoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_request_duration_seconds",
			Help:    "Record store API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// EgressLookups 出口地址查询计数.
	EgressLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "egress_lookups_total",
			Help: "Total number of egress address lookups by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// FingerprintFallbacks 摘要计算失败、改用合成指纹的次数.
	FingerprintFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fingerprint_fallbacks_total",
			Help: "Number of content fingerprints replaced by a synthetic value",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	registerOnce sync.Once
)

// InitMetrics 初始化Metrics. 重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	registerOnce.Do(func() {
		// 注册标准收集器
		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		registry.MustRegister(
			RequestCounter, RequestDuration, ActiveConnections,
			StoreRequests, StoreRequestDuration, EgressLookups, FingerprintFallbacks,
		)
	})

	return nil
}

// StartMetricsServer 在给定引擎上注册 /metrics 端点.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
