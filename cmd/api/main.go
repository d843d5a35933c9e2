package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/userhub/internal/accounts"
	"github.com/geocoder89/userhub/internal/cache"
	"github.com/geocoder89/userhub/internal/config"
	httpx "github.com/geocoder89/userhub/internal/http"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/notifications"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/redisclient"
	"github.com/geocoder89/userhub/internal/repo/memory"
	"github.com/geocoder89/userhub/internal/security"
	"github.com/geocoder89/userhub/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// users and the session live only as long as this process
	sess := session.New()
	svc := accounts.NewService(memory.NewUsersRepo(), sess, security.NewHasher(cfg.BcryptCost), log, prom).
		WithNotifier(notifications.NewProtectedNotifier(notifications.NewLogNotifier(log), notifications.ProtectedNotifierConfig{}))

	if cfg.SeedDemoUsers {
		if _, err := svc.SeedDemoUsers(ctx); err != nil {
			log.Error("seeding demo users failed", "err", err)
			os.Exit(1)
		}
	}

	var shuttingDown atomic.Bool

	deps := httpx.Deps{
		Log:          log,
		Config:       cfg,
		Accounts:     svc,
		Cache:        cache.New(cfg.UsersCacheTTL),
		Prom:         prom,
		Gatherer:     reg,
		Checks:       map[string]handlers.Pinger{},
		ShuttingDown: shuttingDown.Load,
	}

	var rdb *redisclient.Client
	if cfg.RedisAddr != "" {
		cctx, cancel := config.WithTimeout(30 * time.Second)
		rdb, err = redisclient.Connect(cctx, redisclient.Config{
			Addr:            cfg.RedisAddr,
			Password:        cfg.RedisPassword,
			DB:              cfg.RedisDB,
			ConnectAttempts: cfg.RedisAttempts,
		})
		cancel()

		if err != nil {
			log.Error("redis connect failed", "err", err)
			os.Exit(1)
		}

		deps.Limiter = middlewares.NewRedisLimiter(rdb.Raw(), cfg.AuthRateLimit, cfg.AuthRateWindow)
		deps.Checks["redis"] = rdb.Ping
		log.Info("rate limiting backed by redis", "addr", cfg.RedisAddr)
	}

	router := httpx.NewRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// no WriteTimeout: /session/stream responses stay open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")
	shuttingDown.Store(true)

	// end open session streams so Shutdown does not wait on them
	sess.Close()

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("redis close failed", "err", err)
		}
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}
