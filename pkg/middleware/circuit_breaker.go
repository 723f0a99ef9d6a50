package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"

	"github.com/yeisme/storeclient/pkg/configs"
	"github.com/yeisme/storeclient/pkg/log"
)

// errUpstream 标记一次失败的请求，只用于熔断计数.
var errUpstream = errors.New("upstream failure")

// CircuitBreakerMiddleware 基于 gobreaker 的简单熔断. 状态码达到 FailureStatus（默认 500，包括存储不可用时的 502）计为失败，
// 失败比例达到阈值后直接返回 503.
func CircuitBreakerMiddleware(cfg configs.CircuitBreakerConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	settings := gobreaker.Settings{
		Name:        "store-gateway",
		MaxRequests: cfg.MaxRequestsInHalf,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.ShouldTrip(counts.Requests, counts.TotalFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Logger().Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	cb := gobreaker.NewCircuitBreaker(settings)

	return func(c *gin.Context) {
		_, err := cb.Execute(func() (any, error) {
			c.Next()
			if cfg.Failed(c.Writer.Status()) {
				return nil, errUpstream
			}

			return nil, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			abortWithNotice(c, http.StatusServiceUnavailable, "record store temporarily unavailable, please try again later")
			return
		}
	}
}
