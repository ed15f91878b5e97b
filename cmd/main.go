package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/fjod/go_cart/storefront/internal/telemetry"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, zl)
	if err != nil {
		zl.Fatal("failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			zl.Error("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	m := metrics.New()

	loaderOpts := []catalog.LoaderOption{
		catalog.WithMetrics(m),
		catalog.WithFetchTimeout(cfg.Catalog.LoadTimeout),
	}
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		defer redisClient.Close()
		// The cache is optional: an unreachable Redis only costs a warning.
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			zl.Warn("redis ping failed, catalog cache disabled", zap.String("addr", cfg.Cache.Addr), zap.Error(err))
		} else {
			zl.Info("redis ping succeeded", zap.String("addr", cfg.Cache.Addr))
			loaderOpts = append(loaderOpts, catalog.WithCache(cache.NewRedisCache(redisClient, cfg.Cache.TTL)))
		}
	}

	breakerCfg := circuitbreaker.DefaultConfig("catalog")
	breakerCfg.MaxRequests = cfg.Breaker.MaxRequests
	breakerCfg.Interval = cfg.Breaker.Interval
	breakerCfg.Timeout = cfg.Breaker.Timeout
	breakerCfg.FailureThreshold = cfg.Breaker.FailureThreshold

	client := catalog.NewSheetClient(catalog.ClientConfig{
		URL:       cfg.Catalog.URL,
		Timeout:   cfg.Catalog.Timeout,
		RateLimit: cfg.Catalog.RateLimit,
		RateBurst: cfg.Catalog.RateBurst,
		Breaker:   breakerCfg,
	}, zl)
	loader := catalog.NewLoader(client, zl, loaderOpts...)

	sessions := store.NewMemoryStore[*service.Session](cfg.Session.IdleTTL, cfg.Session.CleanupInterval,
		store.WithEvictHook(service.EvictHook(m, zl)))
	defer sessions.Close()
	m.RegisterGauge("sessions_active", "Number of live view sessions.", func() float64 {
		return float64(sessions.Len())
	})

	storefront := service.NewStorefront(sessions, loader, zl,
		service.WithLoadTimeout(cfg.Catalog.LoadTimeout),
		service.WithMetrics(m),
	)

	router := h.NewRouter(h.RouterConfig{
		ServiceName:    cfg.App.Name,
		CookieName:     cfg.Session.CookieName,
		SecureCookie:   cfg.Session.SecureCookie || cfg.IsProduction(),
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, storefront, m, zl)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		zl.Info("storefront starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("catalog", client.Source()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}
