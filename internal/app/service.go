package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/alreadysons/StayAtHome/internal/domain"
	"github.com/alreadysons/StayAtHome/internal/metrics"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// Service is the application layer. It owns the presence-session lifecycle
// and the weekly aggregation; everything below it is storage.
type Service struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	statsCache domain.StatsCache
	clock      clockwork.Clock
	loc        *time.Location
	statsGroup singleflight.Group
}

// NewService creates the application layer service. The location is the single
// fixed timezone used for every timestamp write and every window computation.
// statsCache may be nil, which disables caching.
func NewService(users domain.UserRepository, sessions domain.SessionRepository, statsCache domain.StatsCache, clock clockwork.Clock, loc *time.Location) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		statsCache: statsCache,
		clock:      clock,
		loc:        loc,
	}
}

// now is the only place wall-clock time enters the domain.
func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// RecordArrival opens a presence session for the user, or returns the already
// open one. Repeated arrival signals while present are no-ops, not new
// sessions. Returns domain.ErrUserNotFound for an unknown user.
func (s *Service) RecordArrival(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	open, err := s.sessions.FindOpen(ctx, userID)
	if err == nil {
		metrics.ArrivalsIdempotentTotal.Inc()
		return open, nil
	}
	if !errors.Is(err, domain.ErrNoOpenSession) {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, userID, s.now())
	if errors.Is(err, domain.ErrOpenSessionExists) {
		// Lost the insert race against a concurrent arrival; the winner's
		// session is the one to return.
		metrics.ArrivalConflictsTotal.Inc()
		return s.sessions.FindOpen(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	metrics.SessionsOpenedTotal.Inc()
	s.invalidateStats(ctx, userID)
	return session, nil
}

// RecordDeparture closes the identified session at the current time. Closing
// an already-closed session overwrites its end time (last write wins).
// Returns domain.ErrSessionNotFound for an unknown id.
func (s *Service) RecordDeparture(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessions.SetEndTime(ctx, sessionID, s.now())
	if err != nil {
		return nil, err
	}

	metrics.SessionsClosedTotal.Inc()
	s.invalidateStats(ctx, session.UserID)
	return session, nil
}

// GetOpenSession returns the user's currently open session, or
// domain.ErrNoOpenSession. Lets callers close by user instead of having to
// remember the session id from the arrival response.
func (s *Service) GetOpenSession(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	return s.sessions.FindOpen(ctx, userID)
}

// ListSessions returns a page of sessions, newest first, optionally filtered
// by user.
func (s *Service) ListSessions(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]*domain.Session, error) {
	offset, limit = clampPage(offset, limit)
	return s.sessions.List(ctx, userID, offset, limit)
}

// CreateUser registers a user together with their home network identifiers.
func (s *Service) CreateUser(ctx context.Context, name, homeSSID, homeBSSID string) (*domain.User, error) {
	return s.users.Create(ctx, name, homeSSID, homeBSSID)
}

// GetUserByID retrieves a user by id.
func (s *Service) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GetUserByName retrieves a user by display name.
func (s *Service) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	return s.users.GetByName(ctx, name)
}

// ListUsers returns a page of users.
func (s *Service) ListUsers(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	offset, limit = clampPage(offset, limit)
	return s.users.List(ctx, offset, limit)
}

// UpdateHomeWifi replaces the user's home network identifiers.
func (s *Service) UpdateHomeWifi(ctx context.Context, userID uuid.UUID, homeSSID, homeBSSID string) (*domain.User, error) {
	return s.users.UpdateHomeWifi(ctx, userID, homeSSID, homeBSSID)
}

// DeleteUser removes the user and all owned sessions.
func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.invalidateStats(ctx, userID)
	return nil
}

// invalidateStats drops the user's cached report for the current week.
// Best-effort: the cache entry expires on its own TTL anyway.
func (s *Service) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.statsCache == nil {
		return
	}
	weekKey := weekStartOf(s.now()).Format(dateLayout)
	if err := s.statsCache.Invalidate(ctx, userID, weekKey); err != nil {
		slog.Warn("Failed to invalidate weekly stats cache",
			"user_id", userID.String(), "week_start", weekKey, "error", err)
	}
}

func clampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return offset, limit
}
