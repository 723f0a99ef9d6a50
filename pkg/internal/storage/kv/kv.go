// Package kv 提供用于键值存储的接口和实现，客户端用它缓存出口地址等查询结果.
package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/yeisme/storeclient/pkg/configs"
)

// ErrNotFound 键不存在或已过期.
var ErrNotFound = errors.New("key not found")

type Client struct {
	KVStore
}

// KVStore 定义键值存储接口.
type KVStore interface {
	// Get 获取键的值，不存在时返回 ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值，ttl<=0 表示不过期.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键.
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 获取匹配 glob 模式的键，空模式匹配全部.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Close 关闭存储连接.
	Close() error
}

// KVType 键值存储类型.
type KVType string

const (
	KVTypeMemory KVType = "memory"
	KVTypeRedis  KVType = "redis"
)

// KVFactory 定义创建 KVStore 的工厂函数类型.
type KVFactory func(ctx context.Context, config any) (KVStore, error)

// kvFactories 存储 KV 类型到工厂的映射.
var kvFactories = make(map[KVType]KVFactory)

// RegisterKVFactory 注册 KV 工厂函数.
func RegisterKVFactory(kvType KVType, factory KVFactory) {
	kvFactories[kvType] = factory
}

// GetRegisteredKVTypes 返回已注册的 KV 类型列表（按名称排序）.
func GetRegisteredKVTypes() []KVType {
	types := make([]KVType, 0, len(kvFactories))
	for kvType := range kvFactories {
		types = append(types, kvType)
	}

	slices.Sort(types)

	return types
}

// NewKVStore 根据类型创建 KVStore 实例.
func NewKVStore(ctx context.Context, kvType KVType, config any) (KVStore, error) {
	factory, exists := kvFactories[kvType]
	if !exists {
		return nil, fmt.Errorf("unsupported KV type: %s", kvType)
	}

	return factory(ctx, config)
}

// NewKVClient 按全局配置创建 KVClient.
func NewKVClient(ctx context.Context) (*Client, error) {
	return NewKVClientFromConfig(ctx, configs.GetConfig().KV)
}

// NewKVClientFromConfig 按给定配置创建 KVClient.
func NewKVClientFromConfig(ctx context.Context, cfg configs.KVConfig) (*Client, error) {
	var factoryCfg any

	if KVType(cfg.Type) == KVTypeRedis {
		factoryCfg = &cfg.Redis
	}

	store, err := NewKVStore(ctx, KVType(cfg.Type), factoryCfg)
	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store}, nil
}
