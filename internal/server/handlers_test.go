package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/alreadysons/StayAtHome/internal/config"
	"github.com/alreadysons/StayAtHome/internal/domain"
	apperrors "github.com/alreadysons/StayAtHome/internal/errors"
)

// --- Mock implementations ---

type mockAppService struct {
	recordArrivalFn    func(ctx context.Context, userID uuid.UUID) (*domain.Session, error)
	recordDepartureFn  func(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)
	getOpenSessionFn   func(ctx context.Context, userID uuid.UUID) (*domain.Session, error)
	listSessionsFn     func(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]*domain.Session, error)
	createUserFn       func(ctx context.Context, name, homeSSID, homeBSSID string) (*domain.User, error)
	getUserByIDFn      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	getUserByNameFn    func(ctx context.Context, name string) (*domain.User, error)
	listUsersFn        func(ctx context.Context, offset, limit int) ([]*domain.User, error)
	updateHomeWifiFn   func(ctx context.Context, userID uuid.UUID, homeSSID, homeBSSID string) (*domain.User, error)
	deleteUserFn       func(ctx context.Context, userID uuid.UUID) error
	weeklyStatisticsFn func(ctx context.Context, userID uuid.UUID) (*domain.WeeklyReport, error)
}

func (m *mockAppService) RecordArrival(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	if m.recordArrivalFn != nil {
		return m.recordArrivalFn(ctx, userID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) RecordDeparture(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	if m.recordDepartureFn != nil {
		return m.recordDepartureFn(ctx, sessionID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) GetOpenSession(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	if m.getOpenSessionFn != nil {
		return m.getOpenSessionFn(ctx, userID)
	}
	return nil, domain.ErrNoOpenSession
}

func (m *mockAppService) ListSessions(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]*domain.Session, error) {
	if m.listSessionsFn != nil {
		return m.listSessionsFn(ctx, userID, offset, limit)
	}
	return nil, nil
}

func (m *mockAppService) CreateUser(ctx context.Context, name, homeSSID, homeBSSID string) (*domain.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, name, homeSSID, homeBSSID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockAppService) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	if m.getUserByNameFn != nil {
		return m.getUserByNameFn(ctx, name)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockAppService) ListUsers(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockAppService) UpdateHomeWifi(ctx context.Context, userID uuid.UUID, homeSSID, homeBSSID string) (*domain.User, error) {
	if m.updateHomeWifiFn != nil {
		return m.updateHomeWifiFn(ctx, userID, homeSSID, homeBSSID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, userID)
	}
	return nil
}

func (m *mockAppService) WeeklyStatistics(ctx context.Context, userID uuid.UUID) (*domain.WeeklyReport, error) {
	if m.weeklyStatisticsFn != nil {
		return m.weeklyStatisticsFn(ctx, userID)
	}
	return nil, fmt.Errorf("not implemented")
}

// --- Test helpers ---

func newTestServer(t *testing.T, app domain.AppService, opts ...func(*Server)) *Server {
	t.Helper()

	e := echo.New()
	// Install error middleware so tests exercise production error mapping
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo: e,
		config: &config.Config{
			Port:               "8080",
			RateLimitPerSecond: 1000,
			RateLimitBurst:     1000,
		},
		app:       app,
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

// newTestServerWithLimits builds a server with a deliberately small token
// bucket for rate limiter tests.
func newTestServerWithLimits(t *testing.T, ratePerSecond float64, burst int) *Server {
	t.Helper()

	e := echo.New()
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo: e,
		config: &config.Config{
			Port:               "8080",
			RateLimitPerSecond: ratePerSecond,
			RateLimitBurst:     burst,
		},
		app:       &mockAppService{},
		startTime: time.Now(),
	}
	srv.registerRoutes()
	return srv
}

func withRedisHealthCheck(redis redisHealthChecker) func(*Server) {
	return func(s *Server) {
		s.redisHealthCheck = redis
	}
}

func withPostgresHealthCheck(pg postgresHealthChecker) func(*Server) {
	return func(s *Server) {
		s.postgresHealthCheck = pg
	}
}

// doRequest runs a request through the full router, middleware included.
func doRequest(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func sampleSession(userID uuid.UUID) *domain.Session {
	return &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		StartTime: time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC),
	}
}
