package service

import (
	"github.com/yeisme/storeclient/pkg/configs"
	"github.com/yeisme/storeclient/pkg/internal/envelope"
	"github.com/yeisme/storeclient/pkg/internal/storage"
	"github.com/yeisme/storeclient/pkg/internal/types"
)

// DefaultsFromConfig 将上传配置转换为信封派生字段默认值.
func DefaultsFromConfig(cfg configs.UploadConfig) envelope.Defaults {
	d := envelope.DefaultDefaults()

	if cfg.User != "" {
		d.User = cfg.User
	}

	if cfg.Roles != nil {
		d.Roles = cfg.Roles
	}

	if cfg.Status != "" {
		d.Status = cfg.Status
	}

	if cfg.SoftDeleteField != "" || cfg.SoftDeleteValue != "" {
		d.SoftDelete = types.SoftDeleteConfig{Field: cfg.SoftDeleteField, Value: cfg.SoftDeleteValue}
	}

	if cfg.TestUser != "" {
		d.TestUser = cfg.TestUser
	}

	if cfg.TestRoles != nil {
		d.TestRoles = cfg.TestRoles
	}

	return d
}

// NewFromManager 使用 Manager 中的存储客户端和出口地址查询器创建 RecordService.
func NewFromManager(mgr *storage.Manager, cfg configs.UploadConfig) *RecordService {
	builder := envelope.NewBuilder(
		envelope.NewHasher(),
		envelope.NewIdentifierGenerator(nil),
		mgr.GetEgressResolver(),
		DefaultsFromConfig(cfg),
	)

	return NewRecordService(mgr.GetStoreClient(), builder, NewSelection())
}
