// Package cache 提供基于键值存储的泛型缓存实现.
//
// 值使用 sonic 序列化，键可以带命名空间前缀. 较长或不定长的键片段通过 Key 哈希为定长键.
//
// 基本用法:
//
//	c := cache.NewCache(kvStore, cache.WithPrefix("storeclient:"))
//
//	key := cache.Key("egress", providerURL)
//	ip, err := cache.GetOrSet(ctx, c, key, func() (string, error) {
//	    return lookup(ctx)
//	}, 10*time.Minute)
//
// 缓存未命中时 Get 返回的错误满足 errors.Is(err, cache.ErrMiss).
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"

	"github.com/yeisme/storeclient/pkg/internal/storage/kv"
)

// ErrMiss 缓存未命中.
var ErrMiss = errors.New("cache miss")

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
}

// Option 配置 Cache.
type Option func(*Cache)

// WithPrefix 为所有键添加前缀.
func WithPrefix(prefix string) Option {
	return func(c *Cache) { c.prefix = prefix }
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore, opts ...Option) *Cache {
	c := &Cache{kvStore: kvStore}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Key 由命名空间和若干片段生成定长键：<namespace>:<xxhash 十六进制>.
func Key(namespace string, parts ...string) string {
	sum := xxhash.Sum64String(strings.Join(parts, "\x00"))
	return namespace + ":" + strconv.FormatUint(sum, 16)
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.key(key))
	if errors.Is(err, kv.ErrNotFound) {
		return zero, fmt.Errorf("%w: %s", ErrMiss, key)
	}

	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.key(key))
}

// GetOrSet 获取缓存值，未命中时调用 getter 并写回. 写回失败不影响返回值.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		var zero T
		return zero, err
	}

	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}

// Keys 返回当前前缀下的键（不含前缀）.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	keys, err := c.kvStore.Keys(ctx, c.prefix+"*")
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, c.prefix))
	}

	return out, nil
}

// Clear 删除当前前缀下的所有键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, c.prefix+"*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
