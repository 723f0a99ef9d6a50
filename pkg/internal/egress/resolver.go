package egress

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yeisme/storeclient/pkg/cache"
	"github.com/yeisme/storeclient/pkg/configs"
	nlog "github.com/yeisme/storeclient/pkg/log"
	"github.com/yeisme/storeclient/pkg/metrics"
)

const cacheNamespace = "egress"

// Resolver 依次尝试查询服务，返回第一个成功的地址；全部失败时返回默认地址.
// 并发调用合并为一次查询，成功结果可以缓存.
type Resolver struct {
	providers      []Provider
	attemptTimeout time.Duration
	defaultIP      string
	cache          *cache.Cache
	cacheTTL       time.Duration
	cacheKey       string
	group          singleflight.Group
}

// Option 配置 Resolver.
type Option func(*Resolver)

// WithAttemptTimeout 设置单个查询服务的超时.
func WithAttemptTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.attemptTimeout = d }
}

// WithDefaultIP 设置全部失败时的默认地址.
func WithDefaultIP(ip string) Option {
	return func(r *Resolver) { r.defaultIP = ip }
}

// WithCache 缓存成功的查询结果，ttl<=0 时不缓存.
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// NewResolver 创建 Resolver.
func NewResolver(providers []Provider, opts ...Option) *Resolver {
	r := &Resolver{
		providers:      providers,
		attemptTimeout: configs.DefaultEgressAttemptTimeout,
		defaultIP:      configs.DefaultEgressDefaultIP,
	}
	for _, opt := range opts {
		opt(r)
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}

	r.cacheKey = cache.Key(cacheNamespace, strings.Join(names, ","))

	return r
}

// NewResolverFromConfig 按配置创建 Resolver. c 为 nil 时不缓存.
func NewResolverFromConfig(cfg configs.EgressConfig, c *cache.Cache) *Resolver {
	opts := []Option{
		WithAttemptTimeout(cfg.GetAttemptTimeout()),
		WithDefaultIP(cfg.DefaultIP),
	}
	if c != nil {
		opts = append(opts, WithCache(c, cfg.CacheTTL))
	}

	return NewResolver(ProvidersFromConfig(cfg.Providers, nil), opts...)
}

// Resolve 返回出口地址，不会失败. 合并后的查询不受单个调用方取消的影响，
// 调用方被取消时自己立即拿到默认地址，其余等待者仍得到查询结果.
func (r *Resolver) Resolve(ctx context.Context) string {
	if ip, ok := r.cached(ctx); ok {
		return ip
	}

	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(r.cacheKey, func() (any, error) {
		return r.lookup(shared), nil
	})

	select {
	case res := <-ch:
		if ip, _ := res.Val.(string); ip != "" {
			return ip
		}

		return r.defaultIP
	case <-ctx.Done():
		return r.defaultIP
	}
}

func (r *Resolver) cached(ctx context.Context) (string, bool) {
	if r.cache == nil || r.cacheTTL <= 0 {
		return "", false
	}

	ip, err := cache.Get[string](ctx, r.cache, r.cacheKey)
	if err != nil || ip == "" {
		return "", false
	}

	return ip, true
}

func (r *Resolver) lookup(ctx context.Context) string {
	logger := nlog.Logger()

	for _, p := range r.providers {
		ip, err := r.attempt(ctx, p)
		if err != nil {
			metrics.EgressLookups.WithLabelValues(p.Name(), "failure").Inc()
			logger.Debug().Err(err).Str("provider", p.Name()).Msg("egress lookup failed")

			continue
		}

		metrics.EgressLookups.WithLabelValues(p.Name(), "success").Inc()

		if r.cache != nil && r.cacheTTL > 0 {
			if err := cache.Set(ctx, r.cache, r.cacheKey, ip, r.cacheTTL); err != nil {
				logger.Warn().Err(err).Msg("failed to cache egress address")
			}
		}

		return ip
	}

	logger.Warn().Str("default_ip", r.defaultIP).Msg("all egress providers failed, using default address")

	return r.defaultIP
}

func (r *Resolver) attempt(ctx context.Context, p Provider) (string, error) {
	actx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	return p.Lookup(actx)
}
