package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alphabook/internal/audit"
	"alphabook/internal/config"
	"alphabook/internal/orders"
	"alphabook/internal/ratelimit"
	"alphabook/internal/users"
	"alphabook/pkg/logger"
	"alphabook/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if err := run(rootCtx, stop, cfg, log); err != nil {
		log.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg config.Config, log *slog.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := utils.OpenPostgres(ctx, cfg.PostgresDSN(), utils.PoolConfig{})
	if err != nil {
		return err
	}
	defer db.Close()

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	r, err := buildRouter(deps{
		cfg:       cfg,
		log:       log,
		users:     users.NewPostgresStore(db),
		orders:    orders.NewPostgresRepo(db),
		auditRepo: audit.NewPostgresRepo(db),
		limiter:   limiter,
		ready: func(ctx context.Context) error {
			return utils.HealthCheck(ctx, db, 2*time.Second)
		},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "rate_limit_backend", cfg.RateLimit.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	return nil
}

// newLimiter picks the rate-limit backend. Redis is only dialed when selected.
func newLimiter(ctx context.Context, cfg config.Config) (ratelimit.Limiter, func(), error) {
	policy := ratelimit.Policy{MaxAttempts: cfg.RateLimit.MaxAttempts, Window: cfg.RateLimit.Window}
	if cfg.RateLimit.Backend != config.RateLimitBackendRedis {
		return ratelimit.NewMemoryLimiter(policy), func() {}, nil
	}

	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		return nil, nil, err
	}
	l, err := ratelimit.NewRedisLimiter(rdb, policy)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return l, func() { closeRedis(rdb) }, nil
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		slog.Warn("redis close failed", "err", err)
	}
}
