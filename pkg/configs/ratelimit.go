package configs

import (
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultRateLimitEnabled = false
	DefaultRateLimitRPS     = 20.0 // 存储 API 单实例，网关侧按客户端限流
	DefaultRateLimitBurst   = 40
	DefaultRateLimitKey     = "ip"
)

// 限流维度.
const (
	RateLimitKeyGlobal = "global"
	RateLimitKeyIP     = "ip"
	RateLimitKeyHeader = "header"
)

// DefaultRateLimitExemptPaths 不参与限流的路由，健康检查和指标抓取不应被业务流量挤占.
func DefaultRateLimitExemptPaths() []string {
	return []string{"/api/healthz", "/metrics"}
}

// RateLimitConfig 网关限流配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"gte=0"` // 每秒允许的请求数
	Burst   int     `mapstructure:"burst" rule:"gte=0"` // 突发容量
	// Key 限流维度：global、ip 或 header:Header-Name
	Key         string   `mapstructure:"key"`
	ExemptPaths []string `mapstructure:"exempt_paths"`
}

// Active 限流是否生效.
func (c RateLimitConfig) Active() bool {
	return c.Enabled && c.RPS > 0
}

// KeyMode 解析 Key，返回维度以及 header 维度下的请求头名. 无法识别时按 ip 处理.
func (c RateLimitConfig) KeyMode() (mode, header string) {
	key := strings.TrimSpace(c.Key)
	if h, ok := strings.CutPrefix(strings.ToLower(key), RateLimitKeyHeader+":"); ok && h != "" {
		return RateLimitKeyHeader, strings.TrimSpace(key[len(RateLimitKeyHeader)+1:])
	}

	if strings.EqualFold(key, RateLimitKeyGlobal) {
		return RateLimitKeyGlobal, ""
	}

	return RateLimitKeyIP, ""
}

// Exempt 路由是否免于限流.
func (c RateLimitConfig) Exempt(path string) bool {
	return slices.Contains(c.ExemptPaths, path)
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.exempt_paths", DefaultRateLimitExemptPaths())
}
