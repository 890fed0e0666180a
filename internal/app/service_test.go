package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alreadysons/StayAtHome/internal/domain"
)

// --- Mock implementations ---

type mockUserRepo struct {
	getByIDFn func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	createFn  func(ctx context.Context, name, homeSSID, homeBSSID string) (*domain.User, error)
	deleteFn  func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockUserRepo) Create(ctx context.Context, name, homeSSID, homeBSSID string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, homeSSID, homeBSSID)
	}
	return &domain.User{ID: uuid.New(), Name: name, HomeSSID: homeSSID, HomeBSSID: homeBSSID}, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID)
	}
	return &domain.User{ID: userID, Name: "testuser"}, nil
}

func (m *mockUserRepo) GetByName(ctx context.Context, name string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	return nil, nil
}

func (m *mockUserRepo) UpdateHomeWifi(ctx context.Context, userID uuid.UUID, homeSSID, homeBSSID string) (*domain.User, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

// memSessionRepo is a stateful in-memory session store that enforces the same
// one-open-session constraint as the partial unique index in PostgreSQL.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions []*domain.Session
}

func (m *memSessionRepo) Create(_ context.Context, userID uuid.UUID, startTime time.Time) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.EndTime == nil {
			return nil, domain.ErrOpenSessionExists
		}
	}
	session := &domain.Session{ID: uuid.New(), UserID: userID, StartTime: startTime}
	m.sessions = append(m.sessions, session)
	return copySession(session), nil
}

func (m *memSessionRepo) GetByID(_ context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == sessionID {
			return copySession(s), nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

func (m *memSessionRepo) FindOpen(_ context.Context, userID uuid.UUID) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.EndTime == nil {
			return copySession(s), nil
		}
	}
	return nil, domain.ErrNoOpenSession
}

func (m *memSessionRepo) SetEndTime(_ context.Context, sessionID uuid.UUID, endTime time.Time) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == sessionID {
			end := endTime
			s.EndTime = &end
			return copySession(s), nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

func (m *memSessionRepo) List(_ context.Context, userID *uuid.UUID, offset, limit int) ([]*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Session
	for _, s := range m.sessions {
		if userID == nil || s.UserID == *userID {
			out = append(out, copySession(s))
		}
	}
	return out, nil
}

func (m *memSessionRepo) FindInRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.UserID == userID && !s.StartTime.Before(from) && !s.StartTime.After(to) {
			out = append(out, copySession(s))
		}
	}
	return out, nil
}

func (m *memSessionRepo) openCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.EndTime == nil {
			count++
		}
	}
	return count
}

func copySession(s *domain.Session) *domain.Session {
	out := *s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	return &out
}

// funcSessionRepo is a function-field mock for error-path tests.
type funcSessionRepo struct {
	createFn      func(ctx context.Context, userID uuid.UUID, startTime time.Time) (*domain.Session, error)
	findOpenFn    func(ctx context.Context, userID uuid.UUID) (*domain.Session, error)
	setEndTimeFn  func(ctx context.Context, sessionID uuid.UUID, endTime time.Time) (*domain.Session, error)
	listFn        func(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]*domain.Session, error)
	findInRangeFn func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Session, error)
}

func (m *funcSessionRepo) Create(ctx context.Context, userID uuid.UUID, startTime time.Time) (*domain.Session, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, startTime)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *funcSessionRepo) GetByID(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *funcSessionRepo) FindOpen(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	if m.findOpenFn != nil {
		return m.findOpenFn(ctx, userID)
	}
	return nil, domain.ErrNoOpenSession
}

func (m *funcSessionRepo) SetEndTime(ctx context.Context, sessionID uuid.UUID, endTime time.Time) (*domain.Session, error) {
	if m.setEndTimeFn != nil {
		return m.setEndTimeFn(ctx, sessionID, endTime)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *funcSessionRepo) List(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]*domain.Session, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, offset, limit)
	}
	return nil, nil
}

func (m *funcSessionRepo) FindInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Session, error) {
	if m.findInRangeFn != nil {
		return m.findInRangeFn(ctx, userID, from, to)
	}
	return nil, nil
}

// recordingStatsCache records invalidations; Get always misses.
type recordingStatsCache struct {
	mu           sync.Mutex
	invalidated  []string
	setKeys      []string
	getFn        func(ctx context.Context, userID uuid.UUID, weekStart string) (*domain.WeeklyReport, bool)
	invalidateFn func(ctx context.Context, userID uuid.UUID, weekStart string) error
}

func (c *recordingStatsCache) Get(ctx context.Context, userID uuid.UUID, weekStart string) (*domain.WeeklyReport, bool) {
	if c.getFn != nil {
		return c.getFn(ctx, userID, weekStart)
	}
	return nil, false
}

func (c *recordingStatsCache) Set(_ context.Context, userID uuid.UUID, weekStart string, _ *domain.WeeklyReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setKeys = append(c.setKeys, userID.String()+":"+weekStart)
}

func (c *recordingStatsCache) Invalidate(ctx context.Context, userID uuid.UUID, weekStart string) error {
	if c.invalidateFn != nil {
		return c.invalidateFn(ctx, userID, weekStart)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID.String()+":"+weekStart)
	return nil
}

// --- Test helpers ---

var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		panic(err)
	}
	return loc
}()

// refInstant is a Wednesday afternoon; its week runs 2024-06-10 .. 2024-06-16.
var refInstant = time.Date(2024, 6, 12, 15, 0, 0, 0, seoul)

func newTestService(sessions domain.SessionRepository, cache domain.StatsCache) (*Service, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(refInstant)
	return NewService(&mockUserRepo{}, sessions, cache, clock, seoul), clock
}

// --- Session tracker tests ---

func TestRecordArrival_OpensSession(t *testing.T) {
	repo := &memSessionRepo{}
	svc, _ := newTestService(repo, nil)
	userID := uuid.New()

	session, err := svc.RecordArrival(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID)
	assert.True(t, session.Open())
	assert.True(t, session.StartTime.Equal(refInstant))
}

func TestRecordArrival_UnknownUser(t *testing.T) {
	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	svc := NewService(users, &memSessionRepo{}, nil, clockwork.NewFakeClockAt(refInstant), seoul)

	_, err := svc.RecordArrival(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRecordArrival_Idempotent(t *testing.T) {
	repo := &memSessionRepo{}
	svc, clock := newTestService(repo, nil)
	userID := uuid.New()
	ctx := context.Background()

	first, err := svc.RecordArrival(ctx, userID)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)

	// Arrival while already present returns the same session unchanged.
	second, err := svc.RecordArrival(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.StartTime.Equal(first.StartTime))

	third, err := svc.RecordArrival(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	assert.Equal(t, 1, repo.openCount(userID))
}

func TestRecordArrival_LostRaceReturnsWinner(t *testing.T) {
	winner := &domain.Session{ID: uuid.New(), UserID: uuid.New(), StartTime: refInstant}
	calls := 0
	repo := &funcSessionRepo{
		findOpenFn: func(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
			calls++
			if calls == 1 {
				return nil, domain.ErrNoOpenSession
			}
			return winner, nil
		},
		createFn: func(ctx context.Context, userID uuid.UUID, startTime time.Time) (*domain.Session, error) {
			return nil, domain.ErrOpenSessionExists
		},
	}
	svc, _ := newTestService(repo, nil)

	session, err := svc.RecordArrival(context.Background(), winner.UserID)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, session.ID)
	assert.Equal(t, 2, calls)
}

func TestRecordDeparture_ClosesSession(t *testing.T) {
	repo := &memSessionRepo{}
	svc, clock := newTestService(repo, nil)
	userID := uuid.New()
	ctx := context.Background()

	session, err := svc.RecordArrival(ctx, userID)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	closed, err := svc.RecordDeparture(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndTime)
	assert.False(t, closed.EndTime.Before(closed.StartTime))
	assert.Equal(t, 0, repo.openCount(userID))
}

func TestRecordDeparture_Unknown(t *testing.T) {
	svc, _ := newTestService(&memSessionRepo{}, nil)

	_, err := svc.RecordDeparture(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRecordDeparture_DoubleCloseOverwrites(t *testing.T) {
	repo := &memSessionRepo{}
	svc, clock := newTestService(repo, nil)
	ctx := context.Background()

	session, err := svc.RecordArrival(ctx, uuid.New())
	require.NoError(t, err)

	clock.Advance(time.Hour)
	first, err := svc.RecordDeparture(ctx, session.ID)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	second, err := svc.RecordDeparture(ctx, session.ID)
	require.NoError(t, err)

	assert.True(t, second.EndTime.After(*first.EndTime))
}

func TestAtMostOneOpenSession(t *testing.T) {
	repo := &memSessionRepo{}
	svc, clock := newTestService(repo, nil)
	userID := uuid.New()
	ctx := context.Background()

	// Arbitrary arrival/departure interleaving never leaves more than one
	// session open.
	for i := 0; i < 5; i++ {
		session, err := svc.RecordArrival(ctx, userID)
		require.NoError(t, err)
		require.LessOrEqual(t, repo.openCount(userID), 1)

		_, err = svc.RecordArrival(ctx, userID)
		require.NoError(t, err)
		require.LessOrEqual(t, repo.openCount(userID), 1)

		clock.Advance(30 * time.Minute)
		_, err = svc.RecordDeparture(ctx, session.ID)
		require.NoError(t, err)
		require.LessOrEqual(t, repo.openCount(userID), 1)

		clock.Advance(30 * time.Minute)
	}
}

func TestGetOpenSession(t *testing.T) {
	repo := &memSessionRepo{}
	svc, _ := newTestService(repo, nil)
	userID := uuid.New()
	ctx := context.Background()

	_, err := svc.GetOpenSession(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrNoOpenSession)

	created, err := svc.RecordArrival(ctx, userID)
	require.NoError(t, err)

	open, err := svc.GetOpenSession(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, open.ID)
}

func TestListSessions_ClampsPage(t *testing.T) {
	var gotOffset, gotLimit int
	repo := &funcSessionRepo{
		listFn: func(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]*domain.Session, error) {
			gotOffset, gotLimit = offset, limit
			return nil, nil
		},
	}
	svc, _ := newTestService(repo, nil)
	ctx := context.Background()

	_, err := svc.ListSessions(ctx, nil, -5, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, defaultListLimit, gotLimit)

	_, err = svc.ListSessions(ctx, nil, 10, 10000)
	require.NoError(t, err)
	assert.Equal(t, 10, gotOffset)
	assert.Equal(t, maxListLimit, gotLimit)
}

func TestArrivalAndDepartureInvalidateStatsCache(t *testing.T) {
	repo := &memSessionRepo{}
	cache := &recordingStatsCache{}
	svc, clock := newTestService(repo, cache)
	userID := uuid.New()
	ctx := context.Background()

	session, err := svc.RecordArrival(ctx, userID)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	_, err = svc.RecordDeparture(ctx, session.ID)
	require.NoError(t, err)

	wantKey := userID.String() + ":2024-06-10"
	assert.Equal(t, []string{wantKey, wantKey}, cache.invalidated)
}

func TestDeleteUser_InvalidatesStatsCache(t *testing.T) {
	cache := &recordingStatsCache{}
	svc, _ := newTestService(&memSessionRepo{}, cache)
	userID := uuid.New()

	require.NoError(t, svc.DeleteUser(context.Background(), userID))
	assert.Len(t, cache.invalidated, 1)
}

func TestDeleteUser_Unknown(t *testing.T) {
	users := &mockUserRepo{
		deleteFn: func(ctx context.Context, userID uuid.UUID) error {
			return domain.ErrUserNotFound
		},
	}
	cache := &recordingStatsCache{}
	svc := NewService(users, &memSessionRepo{}, cache, clockwork.NewFakeClockAt(refInstant), seoul)

	err := svc.DeleteUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Empty(t, cache.invalidated)
}
