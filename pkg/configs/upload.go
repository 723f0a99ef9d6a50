package configs

import "github.com/spf13/viper"

const (
	DefaultUploadUser      = "current_user" // 上传用户
	DefaultUploadStatus    = "active"       // 新记录状态
	DefaultSoftDeleteField = "is_del"       // 软删除标记字段
	DefaultSoftDeleteValue = "true"         // 软删除标记值，以字符串传输
	DefaultTestUploadUser  = "test_user"    // 表写入探测的上传用户
)

type (
	// UploadConfig 派生字段的默认值.
	UploadConfig struct {
		User            string   `mapstructure:"user"              rule:"required"`
		Roles           []string `mapstructure:"roles"`
		Status          string   `mapstructure:"status"            rule:"required"`
		SoftDeleteField string   `mapstructure:"soft_delete_field" rule:"required"`
		SoftDeleteValue string   `mapstructure:"soft_delete_value" rule:"required"`
		TestUser        string   `mapstructure:"test_user"`
		TestRoles       []string `mapstructure:"test_roles"`
	}
)

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.user", DefaultUploadUser)
	v.SetDefault("upload.roles", []string{"user"})
	v.SetDefault("upload.status", DefaultUploadStatus)
	v.SetDefault("upload.soft_delete_field", DefaultSoftDeleteField)
	v.SetDefault("upload.soft_delete_value", DefaultSoftDeleteValue)
	v.SetDefault("upload.test_user", DefaultTestUploadUser)
	v.SetDefault("upload.test_roles", []string{"test_role"})
}
