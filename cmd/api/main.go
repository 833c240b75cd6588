package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/cache"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/db"
	httpx "github.com/geocoder89/storefront/internal/http"
	"github.com/geocoder89/storefront/internal/notifications"
	"github.com/geocoder89/storefront/internal/observability"
	mongorepo "github.com/geocoder89/storefront/internal/repo/mongo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		Enabled:     cfg.OTELEnabled,
		ServiceName: "storefront-api",
		Endpoint:    cfg.OTELEndpoint,
		Environment: cfg.Env,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}
	database := client.Database(cfg.MongoDatabase)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	users, err := mongorepo.NewUsersRepo(ctx, database, prom)
	if err != nil {
		log.Error("users repo init failed", "err", err)
		os.Exit(1)
	}
	products := mongorepo.NewProductsRepo(database, prom)

	if err := db.EnsureAdminUser(ctx, users, cfg); err != nil {
		log.Error("admin bootstrap failed", "err", err)
		os.Exit(1)
	}

	catalog, closeCatalog := newCatalogCache(ctx, cfg, log)
	defer closeCatalog()

	notifier, closeNotifier := newNotifier(cfg, prom, log)
	defer closeNotifier()

	router := httpx.NewRouter(httpx.RouterDeps{
		Env:            cfg.Env,
		Users:          users,
		Products:       products,
		Catalog:        catalog,
		Tokens:         auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL),
		Notifier:       notifier,
		Prom:           prom,
		Gatherer:       reg,
		Ping:           db.Pinger{Client: client}.Ping,
		AllowedOrigins: cfg.AllowedOrigins(),
		TrustedProxies: cfg.TrustedProxyList(),
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
		if err := shutdownTracer(sctx); err != nil {
			log.Warn("tracer shutdown failed", "err", err)
		}
		if err := client.Disconnect(sctx); err != nil {
			log.Warn("mongo disconnect failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// newCatalogCache prefers Redis and falls back to the in-process cache when Redis is
// not configured or unreachable.
func newCatalogCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Store, func()) {
	if cfg.RedisAddr == "" {
		return cache.New(cfg.CacheTTL), func() {}
	}

	rcfg := cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	}
	rc := cache.NewRedisCache(cache.NewRedisClient(rcfg), rcfg)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rc.Ping(pctx); err != nil {
		log.Warn("redis unavailable, using in-process catalog cache", "addr", cfg.RedisAddr, "err", err)
		_ = rc.Close()
		return cache.New(cfg.CacheTTL), func() {}
	}

	log.Info("catalog cache", "backend", "redis", "addr", cfg.RedisAddr)
	return rc, func() { _ = rc.Close() }
}

func newNotifier(cfg config.Config, prom *observability.Prom, log *slog.Logger) (notifications.Notifier, func()) {
	if cfg.NATSURL == "" {
		log.Info("order events disabled")
		return notifications.Nop{}, func() {}
	}

	nc, err := notifications.Connect(cfg.NATSURL, "storefront-api", log)
	if err != nil {
		log.Warn("nats unavailable, order events disabled", "err", err)
		return notifications.Nop{}, func() {}
	}

	n := notifications.NewProtectedNotifier(notifications.NewNATSPublisher(nc, prom), notifications.ProtectedNotifierConfig{
		Timeout:          2 * time.Second,
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	})

	return n, func() {
		if err := nc.Drain(); err != nil {
			log.Warn("nats drain failed", "err", err)
		}
	}
}
