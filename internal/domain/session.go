package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is one continuous interval of presence on the home network.
// A nil EndTime means the session is still open. StartTime is immutable
// after creation; EndTime is written by departure.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// Open reports whether the session has no departure recorded yet.
func (s *Session) Open() bool {
	return s.EndTime == nil
}

type SessionRepository interface {
	// Create inserts an open session. Returns ErrOpenSessionExists when the
	// user already has an open session (partial unique index on the table).
	Create(ctx context.Context, userID uuid.UUID, startTime time.Time) (*Session, error)
	GetByID(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	// FindOpen returns the user's open session, or ErrNoOpenSession.
	FindOpen(ctx context.Context, userID uuid.UUID) (*Session, error)
	// SetEndTime overwrites end_time unconditionally (last write wins) and
	// returns the updated session, or ErrSessionNotFound.
	SetEndTime(ctx context.Context, sessionID uuid.UUID, endTime time.Time) (*Session, error)
	// List returns sessions ordered by start_time descending. A nil userID
	// lists sessions across all users.
	List(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]*Session, error)
	// FindInRange returns the user's sessions whose start_time falls within
	// [from, to], ordered by start_time ascending.
	FindInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Session, error)
}
