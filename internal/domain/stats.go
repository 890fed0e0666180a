package domain

import (
	"context"

	"github.com/google/uuid"
)

// WeeklyReport summarizes at-home hours for one Monday-Sunday calendar week.
// Dates are formatted as "2006-01-02" in the configured timezone; DailyHours
// always carries exactly seven entries. Field names match the mobile client's
// wire format.
type WeeklyReport struct {
	WeekStart     string             `json:"week_start"`
	WeekEnd       string             `json:"week_end"`
	DailyHours    map[string]float64 `json:"daily_hours"`
	WeeklyTotal   float64            `json:"weekly_total"`
	WeeklyAverage float64            `json:"weekly_average"`
}

// StatsCache caches weekly reports keyed by user and week start date.
// Implementations are best-effort: a miss or a cache failure must never
// fail the statistics request itself.
type StatsCache interface {
	Get(ctx context.Context, userID uuid.UUID, weekStart string) (*WeeklyReport, bool)
	Set(ctx context.Context, userID uuid.UUID, weekStart string, report *WeeklyReport)
	Invalidate(ctx context.Context, userID uuid.UUID, weekStart string) error
}
