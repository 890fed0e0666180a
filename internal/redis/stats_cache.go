package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/alreadysons/StayAtHome/internal/domain"
)

const statsCachePrefix = "weekly_stats:"

// StatsCache implements domain.StatsCache on Redis. Entries are keyed by user
// and week start date so a cached report can never leak across weeks. All
// failures degrade to a miss; the aggregator recomputes from PostgreSQL.
type StatsCache struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewStatsCache(rdb goredis.Cmdable, ttl time.Duration) *StatsCache {
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func statsKey(userID uuid.UUID, weekStart string) string {
	return fmt.Sprintf("%s%s:%s", statsCachePrefix, userID, weekStart)
}

func (c *StatsCache) Get(ctx context.Context, userID uuid.UUID, weekStart string) (*domain.WeeklyReport, bool) {
	data, err := c.rdb.Get(ctx, statsKey(userID, weekStart)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("Weekly stats cache GET failed, recomputing from PostgreSQL",
			"user_id", userID.String(), "error", err)
		return nil, false
	}

	var report domain.WeeklyReport
	if err := json.Unmarshal(data, &report); err != nil {
		slog.Warn("Failed to unmarshal cached weekly report, recomputing",
			"user_id", userID.String(), "error", err)
		return nil, false
	}
	return &report, true
}

// Set stores a report best-effort; cache write failures are logged, not returned.
func (c *StatsCache) Set(ctx context.Context, userID uuid.UUID, weekStart string, report *domain.WeeklyReport) {
	encoded, err := json.Marshal(report)
	if err != nil {
		slog.Warn("Failed to marshal weekly report for cache", "user_id", userID.String(), "error", err)
		return
	}
	if err := c.rdb.Set(ctx, statsKey(userID, weekStart), encoded, c.ttl).Err(); err != nil {
		slog.Warn("Failed to populate weekly stats cache", "user_id", userID.String(), "error", err)
	}
}

// Invalidate removes the user's cached report for one week.
func (c *StatsCache) Invalidate(ctx context.Context, userID uuid.UUID, weekStart string) error {
	if err := c.rdb.Del(ctx, statsKey(userID, weekStart)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate weekly stats cache: %w", err)
	}
	return nil
}
