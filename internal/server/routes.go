package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints, exempt from rate limiting
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	limiter := newRateLimiter(s.config.RateLimitPerSecond, s.config.RateLimitBurst)

	// Presence log routes
	log := s.echo.Group("/log", limiter)
	log.POST("/start", s.handleStartLog)
	log.POST("/end/:session_id", s.handleEndLog)
	log.GET("/open/:user_id", s.handleOpenLog)
	log.GET("/list", s.handleListLogs)

	// User routes
	user := s.echo.Group("/user", limiter)
	user.POST("/create", s.handleCreateUser)
	user.GET("/id/:user_id", s.handleGetUserByID)
	user.GET("/name/:user_name", s.handleGetUserByName)
	user.GET("/list", s.handleListUsers)
	user.PUT("/:user_id/home_wifi", s.handleUpdateHomeWifi)
	user.DELETE("/delete/:user_id", s.handleDeleteUser)

	// Statistics routes
	stats := s.echo.Group("/statistics", limiter)
	stats.GET("/weekly/:user_id", s.handleWeeklyStatistics)
}
