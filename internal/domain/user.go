package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User owns presence sessions. HomeSSID and HomeBSSID identify the home
// network; matching against them happens on the device, not here.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"user_name"`
	HomeSSID  string    `json:"home_ssid"`
	HomeBSSID string    `json:"home_bssid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserRepository interface {
	Create(ctx context.Context, name, homeSSID, homeBSSID string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]*User, error)
	UpdateHomeWifi(ctx context.Context, userID uuid.UUID, homeSSID, homeBSSID string) (*User, error)
	// Delete removes the user and all owned sessions in one transaction.
	Delete(ctx context.Context, userID uuid.UUID) error
}
