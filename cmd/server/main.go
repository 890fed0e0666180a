package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/alreadysons/StayAtHome/internal/app"
	"github.com/alreadysons/StayAtHome/internal/config"
	"github.com/alreadysons/StayAtHome/internal/database"
	"github.com/alreadysons/StayAtHome/internal/logging"
	"github.com/alreadysons/StayAtHome/internal/redis"
	"github.com/alreadysons/StayAtHome/internal/retry"
	"github.com/alreadysons/StayAtHome/internal/server"
)

// startupRetryPolicy covers the window where the service comes up before its
// backing stores do, e.g. during a compose or rolling deploy.
var startupRetryPolicy = retry.Policy{
	MaxAttempts:    5,
	InitialBackoff: time.Second,
	OnRetry: func(attempt int, err error, backoff time.Duration) {
		slog.Warn("Dependency not ready, retrying", "attempt", attempt, "backoff", backoff, "error", err)
	},
}

func transient(error) retry.Action { return retry.Retry }

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := retry.Do(ctx, startupRetryPolicy, transient, func() (*pgxpool.Pool, error) {
		return database.Connect(ctx, cfg.DatabaseURL)
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := retry.Do(ctx, startupRetryPolicy, transient, func() (*goredis.Client, error) {
		return redis.NewClient(ctx, cfg.RedisURL)
	})
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "timezone", cfg.Timezone)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	userRepo := database.NewUserRepo(pool)
	sessionRepo := database.NewSessionRepo(pool)
	statsCache := redis.NewStatsCache(redisClient, cfg.StatsCacheTTL)

	appSvc := app.NewService(userRepo, sessionRepo, statsCache, clock, cfg.Location)

	srv := server.NewServer(cfg, appSvc, pool, redisClient)

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
