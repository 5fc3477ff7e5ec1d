package main

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/adapters/cache"
	"delivery-route-optimizer/internal/adapters/repositories"
	"delivery-route-optimizer/internal/adapters/routing"
	"delivery-route-optimizer/internal/api"
	"delivery-route-optimizer/internal/config"
	"delivery-route-optimizer/internal/platform/db"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"delivery-route-optimizer/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires the ORS adapter and the optional leg cache behind ports and starts
// the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, err := obs.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	planner := &services.Planner{Metrics: metrics}

	if cfg.ORSAPIKey == "" {
		// Every segment falls back to a straight line and the external
		// strategy is rejected.
		logger.Warn("ORS_API_KEY is not set; routes will use straight-line estimates")
	} else {
		ors, err := routing.NewORSProvider(routing.ORSConfig{
			APIKey:  cfg.ORSAPIKey,
			BaseURL: cfg.ORSBaseURL,
			Timeout: cfg.HTTPTimeout,
			Metrics: metrics,
		})
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}

		legCache, closeCache, err := openLegCache(ctx, cfg)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		defer closeCache()

		planner.Optimizer = ors
		planner.Routing = ors
		if legCache != nil {
			planner.Routing = routing.NewCachedProvider(ors, legCache, metrics)
		}
	}

	router, err := api.NewRouter(api.RouterConfig{
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		DefaultMode:        cfg.DefaultTravelMode,
		DefaultServiceTime: cfg.ServiceTime(),
	}, planner, metrics, logger)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	// Timeouts are tuned for cold-cache route assembly (one external call per segment).
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("cache", cfg.CacheBackend),
			zap.String("default_mode", string(cfg.DefaultTravelMode)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openLegCache returns the configured leg cache, or nil when caching is off.
func openLegCache(ctx context.Context, cfg config.Config) (ports.LegCache, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case config.CacheSQLite:
		conn, err := openSqlite(cfg.DBPath)
		if err != nil {
			return nil, noop, err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return cache.NewSqliteLegCache(conn, cfg.CacheTTL), func() { conn.Close() }, nil

	case config.CachePostgres:
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return cache.NewSQLLegCache(conn, cfg.CacheTTL), func() { conn.Close() }, nil

	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("open redis cache %q: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisLegCache(client, cfg.CacheTTL), func() { client.Close() }, nil
	}

	return nil, noop, nil
}

func openSqlite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("openSqlite: create directory for %q: %w", dbPath, err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openSqlite: open sqlite database %q: %w", dbPath, err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("openSqlite: verify sqlite connection to %q: %w", dbPath, err)
	}

	return conn, nil
}
