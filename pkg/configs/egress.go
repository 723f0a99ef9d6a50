package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultEgressAttemptTimeout = 5 * time.Second  // 每个服务的查询超时
	DefaultEgressDefaultIP      = "127.0.0.1"      // 所有服务失败时使用的地址
	DefaultEgressCacheTTL       = 10 * time.Minute // 查询结果缓存时间，0 表示不缓存
)

type (
	// EgressConfig 出口地址查询配置. Providers 按顺序依次尝试.
	EgressConfig struct {
		Providers      []EgressProvider `mapstructure:"providers"       rule:"dive"`
		AttemptTimeout time.Duration    `mapstructure:"attempt_timeout"`
		DefaultIP      string           `mapstructure:"default_ip"      rule:"required,ip"`
		CacheTTL       time.Duration    `mapstructure:"cache_ttl"      `
	}

	// EgressProvider 单个出口地址查询服务.
	EgressProvider struct {
		Name string `mapstructure:"name"`
		URL  string `mapstructure:"url"    rule:"required,url"`
		// Format 响应格式：text（纯文本地址）或 json（读取 Field 字段）
		Format string `mapstructure:"format" rule:"omitempty,oneof=text json"`
		Field  string `mapstructure:"field"`
	}
)

// DefaultEgressProviders 内置的查询服务列表.
func DefaultEgressProviders() []EgressProvider {
	return []EgressProvider{
		{Name: "amazonaws", URL: "https://checkip.amazonaws.com/", Format: "text"},
		{Name: "ifconfig.me", URL: "https://ifconfig.me/ip", Format: "text"},
		{Name: "ipify", URL: "https://api.ipify.org?format=json", Format: "json", Field: "ip"},
	}
}

// GetAttemptTimeout 返回单次查询超时，未配置时使用默认值.
func (c *EgressConfig) GetAttemptTimeout() time.Duration {
	if c.AttemptTimeout <= 0 {
		return DefaultEgressAttemptTimeout
	}

	return c.AttemptTimeout
}

func (c *EgressConfig) setDefaults(v *viper.Viper) {
	providers := make([]map[string]any, 0, len(DefaultEgressProviders()))
	for _, p := range DefaultEgressProviders() {
		providers = append(providers, map[string]any{
			"name": p.Name, "url": p.URL, "format": p.Format, "field": p.Field,
		})
	}

	v.SetDefault("egress.providers", providers)
	v.SetDefault("egress.attempt_timeout", DefaultEgressAttemptTimeout)
	v.SetDefault("egress.default_ip", DefaultEgressDefaultIP)
	v.SetDefault("egress.cache_ttl", DefaultEgressCacheTTL)
}
