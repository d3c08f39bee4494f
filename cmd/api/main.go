package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "storefront/docs"
	"storefront/pkg/cart"
	cartmem "storefront/pkg/cart/memory"
	cartpg "storefront/pkg/cart/postgres"
	cartredis "storefront/pkg/cart/redis"
	catalogmem "storefront/pkg/catalog/memory"
	"storefront/pkg/checkout"
	"storefront/pkg/config"
	"storefront/pkg/database"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	ordermem "storefront/pkg/order/memory"
	orderpg "storefront/pkg/order/postgres"
	"storefront/pkg/otel"
)

// @title Storefront API
// @version 1.0
// @description Spice store catalog, session cart and checkout
// @host localhost:8080
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), "storefront", otel.GetTraceID)
	defer log.Sync()

	ctx := context.Background()

	tp, shutdownTracing, err := otel.InitTracing(log, otel.Config{
		ServiceName: "storefront",
		Host:        cfg.OTELHost,
		Probability: cfg.OTELSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db, log); err != nil {
			return err
		}
	}

	products := catalogmem.New()
	if cfg.SeedDemoData {
		if err := catalogmem.Seed(ctx, products); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		log.Info(ctx, "demo catalog seeded")
	}

	var orders order.Repository = ordermem.New()
	if db != nil {
		orders = orderpg.New(db)
	}
	orderSvc := order.NewService(products, orders, log)

	storage, closeStorage := newCartStorage(ctx, cfg, db, log)
	defer closeStorage()

	s := &server{
		log:      log,
		tracer:   tp.Tracer("storefront"),
		catalog:  products,
		sessions: cart.NewSessions(storage, log),
		checkout: checkout.NewService(orderSvc, log),
		orders:   orderSvc,
		secure:   cfg.TLSCert != "",
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", srv.Addr, "env", cfg.AppEnv, "cart_backend", cfg.CartBackend, "tls", s.secure)
		var err error
		if s.secure {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-sigCtx.Done():
		log.Info(ctx, "shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "graceful shutdown", "error", err)
	}
	return nil
}

// newCartStorage picks the configured cart backend. An unreachable Redis
// falls back to process memory so the storefront keeps serving carts.
func newCartStorage(ctx context.Context, cfg config.Config, db *sql.DB, log *logger.Logger) (cart.Storage, func()) {
	switch cfg.CartBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn(ctx, "redis unavailable, carts kept in memory", "addr", cfg.RedisAddr, "error", err)
			client.Close()
			return cartmem.New(), func() {}
		}
		log.Info(ctx, "redis connected", "addr", cfg.RedisAddr)
		return cartredis.New(client, cfg.CartTTL), func() { client.Close() }
	case config.BackendPostgres:
		return cartpg.New(db), func() {}
	default:
		return cartmem.New(), func() {}
	}
}
