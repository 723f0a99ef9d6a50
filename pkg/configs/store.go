package configs

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultStoreBaseURL = "http://localhost:8080/api" // 存储 API 基础地址，路径为 <base>/v1/<operation>
	DefaultStoreTimeout = 30                          // 单次请求超时时间，单位秒
)

type (
	// StoreConfig 存储 API 配置.
	StoreConfig struct {
		BaseURL string `mapstructure:"base_url" rule:"required,url"`
		Timeout int    `mapstructure:"timeout"  rule:"min=1,max=300"`
	}
)

// GetBaseURL 返回去掉末尾斜杠的基础地址.
func (s *StoreConfig) GetBaseURL() string {
	return strings.TrimRight(s.BaseURL, "/")
}

// GetTimeoutDuration 返回超时时间作为time.Duration.
func (s *StoreConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (s *StoreConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("store.base_url", DefaultStoreBaseURL)
	v.SetDefault("store.timeout", DefaultStoreTimeout)
}
