package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alreadysons/StayAtHome/internal/domain"
)

// CreateTestUser creates a user with default home network values for testing.
func CreateTestUser(t *testing.T, repo *UserRepo, name string) *domain.User {
	t.Helper()

	user, err := repo.Create(context.Background(), name, "HomeNet", "aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)

	return user
}

// CreateClosedTestSession inserts a session with both endpoints set, bypassing
// the open-session path so tests can lay out historical data directly.
func CreateClosedTestSession(t *testing.T, repo *SessionRepo, userID uuid.UUID, start, end time.Time) *domain.Session {
	t.Helper()

	ctx := context.Background()
	session, err := repo.Create(ctx, userID, start)
	require.NoError(t, err)

	session, err = repo.SetEndTime(ctx, session.ID, end)
	require.NoError(t, err)
	return session
}
