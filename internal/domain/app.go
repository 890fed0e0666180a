package domain

import (
	"context"

	"github.com/google/uuid"
)

// AppService is the application layer contract. Handlers route every
// operation through here.
type AppService interface {
	RecordArrival(ctx context.Context, userID uuid.UUID) (*Session, error)
	RecordDeparture(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	GetOpenSession(ctx context.Context, userID uuid.UUID) (*Session, error)
	ListSessions(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]*Session, error)

	CreateUser(ctx context.Context, name, homeSSID, homeBSSID string) (*User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetUserByName(ctx context.Context, name string) (*User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*User, error)
	UpdateHomeWifi(ctx context.Context, userID uuid.UUID, homeSSID, homeBSSID string) (*User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error

	WeeklyStatistics(ctx context.Context, userID uuid.UUID) (*WeeklyReport, error)
}
