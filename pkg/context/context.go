// Package context 拓展上下文功能，将日志、资源管理器等集成到上下文中，方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/storeclient/pkg/cache"
	"github.com/yeisme/storeclient/pkg/internal/egress"
	"github.com/yeisme/storeclient/pkg/internal/storage"
	kvc "github.com/yeisme/storeclient/pkg/internal/storage/kv"
	"github.com/yeisme/storeclient/pkg/internal/store"
)

type ContextKey string

const (
	StorageManagerKey ContextKey = "storageManager"
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// GetStoreClient 从 context 中获取存储 API 客户端.
func GetStoreClient(ctx context.Context) *store.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetStoreClient()
	}

	return nil
}

// GetEgressResolver 从 context 中获取出口地址查询器.
func GetEgressResolver(ctx context.Context) *egress.Resolver {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetEgressResolver()
	}

	return nil
}

// GetKVClient 从 context 中获取 KV 客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// GetCache 从 context 中获取缓存.
func GetCache(ctx context.Context) *cache.Cache {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetCache()
	}

	return nil
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}
