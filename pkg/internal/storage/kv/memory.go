package kv

import (
	"context"
	"fmt"
	"path"
	"slices"
	"sync"
	"time"
)

// MemoryKV 基于 sync.Map 的内存 KV 实现，带 TTL 的值在读取时惰性过期.
type MemoryKV struct {
	data sync.Map // 并发安全的 map
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(ctx context.Context, config any) (KVStore, error) {
	// 内存实现不需要特殊配置
	return &MemoryKV{now: time.Now}, nil
}

// load 读取并解包值，过期的键会被删除.
func (m *MemoryKV) load(key string) ([]byte, bool, error) {
	value, exists := m.data.Load(key)
	if !exists {
		return nil, false, nil
	}

	raw, ok := value.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("invalid value type for key: %s", key)
	}

	data, expired, _, err := decodeWithTTL(raw, m.now())
	if err != nil {
		return nil, false, err
	}

	if expired {
		m.data.CompareAndDelete(key, value)
		return nil, false, nil
	}

	return data, true, nil
}

// Get 获取键的值.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok, err := m.load(key)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	// 返回副本
	return slices.Clone(data), nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	data, _, err := encodeWithTTL(slices.Clone(value), ttl, m.now())
	if err != nil {
		return err
	}

	m.data.Store(key, data)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := m.load(key)
	return ok, err
}

// Keys 获取匹配 glob 模式的键.
func (m *MemoryKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)

	var matchErr error

	m.data.Range(func(key, _ any) bool {
		k, ok := key.(string)
		if !ok {
			return true // 继续遍历
		}

		if _, live, _ := m.load(k); !live {
			return true
		}

		if pattern != "" {
			matched, err := path.Match(pattern, k)
			if err != nil {
				matchErr = fmt.Errorf("invalid key pattern %q: %w", pattern, err)
				return false
			}

			if !matched {
				return true
			}
		}

		keys = append(keys, k)

		return true
	})

	if matchErr != nil {
		return nil, matchErr
	}

	slices.Sort(keys)

	return keys, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
