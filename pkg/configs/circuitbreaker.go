package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultCBEnabled           = false
	DefaultCBFailureRate       = 0.5
	DefaultCBMinRequests       = 10
	DefaultCBInterval          = time.Minute
	DefaultCBTimeout           = 30 * time.Second
	DefaultCBMaxRequestsInHalf = 3
	DefaultCBFailureStatus     = 500
)

// CircuitBreakerConfig 网关熔断配置. 存储不可用时网关返回 502，计入失败.
type CircuitBreakerConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	FailureRate       float64       `mapstructure:"failure_rate"         rule:"gte=0,lte=1"`
	MinRequests       uint32        `mapstructure:"min_requests"`         // 统计窗口内达到该请求数才判断
	Interval          time.Duration `mapstructure:"interval"`             // 闭合状态下计数清零的周期
	Timeout           time.Duration `mapstructure:"timeout"`              // 打开状态持续时间，之后半开
	MaxRequestsInHalf uint32        `mapstructure:"max_requests_in_half"` // 半开状态放行的请求数
	// FailureStatus 响应状态码不小于该值时计为失败
	FailureStatus int `mapstructure:"failure_status" rule:"gte=400,lte=599"`
}

// ShouldTrip 按失败比例判断是否打开熔断.
func (c CircuitBreakerConfig) ShouldTrip(requests, failures uint32) bool {
	if requests == 0 || requests < c.MinRequests {
		return false
	}

	return float64(failures)/float64(requests) >= c.FailureRate
}

// Failed 响应状态码是否计为失败.
func (c CircuitBreakerConfig) Failed(status int) bool {
	threshold := c.FailureStatus
	if threshold == 0 {
		threshold = DefaultCBFailureStatus
	}

	return status >= threshold
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", DefaultCBEnabled)
	v.SetDefault("circuit_breaker.failure_rate", DefaultCBFailureRate)
	v.SetDefault("circuit_breaker.min_requests", DefaultCBMinRequests)
	v.SetDefault("circuit_breaker.interval", DefaultCBInterval)
	v.SetDefault("circuit_breaker.timeout", DefaultCBTimeout)
	v.SetDefault("circuit_breaker.max_requests_in_half", DefaultCBMaxRequestsInHalf)
	v.SetDefault("circuit_breaker.failure_status", DefaultCBFailureStatus)
}
