// Package storage 聚合客户端依赖的外部资源：记录存储 API、出口地址查询以及缓存使用的键值存储.
//
// Example:
//
// 初始化
//
//	ctx := context.Background()
//	mgr, err := storage.Init(ctx)
//	if err != nil {
//	    // 处理错误
//	}
//	defer mgr.Close()
//
// 获取客户端
//
//	storeClient := mgr.GetStoreClient()
//	ip := mgr.GetEgressResolver().Resolve(ctx)
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/yeisme/storeclient/pkg/cache"
	"github.com/yeisme/storeclient/pkg/configs"
	"github.com/yeisme/storeclient/pkg/internal/egress"
	kvc "github.com/yeisme/storeclient/pkg/internal/storage/kv"
	"github.com/yeisme/storeclient/pkg/internal/store"
	nlog "github.com/yeisme/storeclient/pkg/log"
)

// Manager 聚合所有外部资源.
type Manager struct {
	Store  *store.Client
	Egress *egress.Resolver
	KV     *kvc.Client
	Cache  *cache.Cache
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 使用全局配置初始化默认 Manager. 重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = New(ctx, configs.GetConfig())
	})

	return mgr, mgrErr
}

// New 按给定配置创建 Manager. KV 不可用时退回内存实现，出口地址缓存仍然可用.
func New(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	logger := nlog.Logger()

	kv, err := kvc.NewKVClientFromConfig(ctx, cfg.KV)
	if err != nil {
		logger.Warn().Err(err).Str("type", cfg.KV.Type).Msg("kv store unavailable, falling back to memory")

		kv, err = kvc.NewKVClientFromConfig(ctx, configs.KVConfig{Type: string(kvc.KVTypeMemory)})
		if err != nil {
			return nil, fmt.Errorf("init kv store: %w", err)
		}
	}

	c := cache.NewCache(kv, cache.WithPrefix(cfg.KV.Prefix))

	m := &Manager{
		Store:  store.NewClient(cfg.Store),
		Egress: egress.NewResolverFromConfig(cfg.Egress, c),
		KV:     kv,
		Cache:  c,
	}

	logger.Info().Str("base_url", m.Store.BaseURL()).Str("kv", cfg.KV.Type).Msg("storage manager initialized")

	return m, nil
}

// GetStoreClient 获取存储 API 客户端.
func (m *Manager) GetStoreClient() *store.Client {
	return m.Store
}

// GetEgressResolver 获取出口地址查询器.
func (m *Manager) GetEgressResolver() *egress.Resolver {
	return m.Egress
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetCache 获取缓存.
func (m *Manager) GetCache() *cache.Cache {
	return m.Cache
}

// Close 释放连接.
func (m *Manager) Close() error {
	if m.KV != nil {
		return m.KV.Close()
	}

	return nil
}
