package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/alreadysons/StayAtHome/internal/config"
	"github.com/alreadysons/StayAtHome/internal/domain"
	apperrors "github.com/alreadysons/StayAtHome/internal/errors"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       domain.AppService
	db        *pgxpool.Pool
	redis     *goredis.Client
	startTime time.Time

	// Test seams for health checks; production wiring uses db and redis.
	postgresHealthCheck postgresHealthChecker
	redisHealthCheck    redisHealthChecker
}

func NewServer(cfg *config.Config, app domain.AppService, db *pgxpool.Pool, redisClient *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       app,
		db:        db,
		redis:     redisClient,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
