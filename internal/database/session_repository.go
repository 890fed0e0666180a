package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alreadysons/StayAtHome/internal/domain"
)

// sessionColumns must match the Scan order in scanSession.
const sessionColumns = `id, user_id, start_time, end_time`

// SessionRepo implements domain.SessionRepository backed by PostgreSQL.
type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var session domain.Session
	err := row.Scan(&session.ID, &session.UserID, &session.StartTime, &session.EndTime)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepo) Create(ctx context.Context, userID uuid.UUID, startTime time.Time) (*domain.Session, error) {
	session, err := scanSession(r.pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, start_time)
		VALUES ($1, $2)
		RETURNING `+sessionColumns,
		userID, startTime))
	if isUniqueViolation(err) {
		return nil, domain.ErrOpenSessionExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func (r *SessionRepo) GetByID(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session by ID: %w", err)
	}
	return session, nil
}

func (r *SessionRepo) FindOpen(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	session, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = $1 AND end_time IS NULL`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoOpenSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	return session, nil
}

func (r *SessionRepo) SetEndTime(ctx context.Context, sessionID uuid.UUID, endTime time.Time) (*domain.Session, error) {
	session, err := scanSession(r.pool.QueryRow(ctx, `
		UPDATE sessions
		SET end_time = $2
		WHERE id = $1
		RETURNING `+sessionColumns,
		sessionID, endTime))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set session end time: %w", err)
	}
	return session, nil
}

func (r *SessionRepo) List(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]*domain.Session, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if userID != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT `+sessionColumns+` FROM sessions WHERE user_id = $1 ORDER BY start_time DESC OFFSET $2 LIMIT $3`,
			*userID, offset, limit)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+sessionColumns+` FROM sessions ORDER BY start_time DESC OFFSET $1 LIMIT $2`,
			offset, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func (r *SessionRepo) FindInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND start_time >= $2 AND start_time <= $3
		 ORDER BY start_time`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions in range: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]*domain.Session, error) {
	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	return sessions, nil
}
