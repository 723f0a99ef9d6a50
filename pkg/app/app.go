// Package app 提供网关应用程序的初始化和运行功能.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/storeclient/pkg/api"
	"github.com/yeisme/storeclient/pkg/configs"
	"github.com/yeisme/storeclient/pkg/internal/handle"
	"github.com/yeisme/storeclient/pkg/internal/service"
	"github.com/yeisme/storeclient/pkg/internal/storage"
	"github.com/yeisme/storeclient/pkg/log"
	"github.com/yeisme/storeclient/pkg/metrics"
	"github.com/yeisme/storeclient/pkg/middleware"
	"github.com/yeisme/storeclient/pkg/tracing"
)

// shutdownTimeout 优雅关闭等待进行中请求的时间.
const shutdownTimeout = 5 * time.Second

type App struct {
	Engine  *gin.Engine
	config  *configs.AppConfig
	manager *storage.Manager
}

// NewApp 使用已加载的配置组装网关：追踪、监控、资源管理器、记录工作流以及中间件链.
func NewApp(ctx context.Context, config *configs.AppConfig) (*App, error) {
	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.MaxMultipartMemory = config.Server.MaxUploadBytes()

	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.CORSMiddleware(config.Server),
		middleware.GzipMiddleware(),
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.StorageMiddleware(manager),
	)

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	svc := service.NewFromManager(manager, config.Upload)
	api.RegisterGroup(engine, handle.NewRecordHandlers(svc, config.Server.MaxUploadBytes()))

	return &App{
		Engine:  engine,
		config:  config,
		manager: manager,
	}, nil
}

// Run 启动网关并阻塞，ctx 取消后优雅关闭.
func (a *App) Run(ctx context.Context) error {
	logger := log.Logger()

	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", a.manager.GetStoreClient().BaseURL()).Msg("gateway listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.close()

		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down gateway")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(stopCtx)
	a.close()

	if err := tracing.ShutdownTracer(stopCtx); err != nil {
		logger.Warn().Err(err).Msg("tracer shutdown failed")
	}

	return err
}

func (a *App) close() {
	if err := a.manager.Close(); err != nil {
		log.Logger().Warn().Err(err).Msg("close storage manager failed")
	}
}
