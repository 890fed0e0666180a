package app

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alreadysons/StayAtHome/internal/domain"
	"github.com/alreadysons/StayAtHome/internal/metrics"
)

const (
	dateLayout = "2006-01-02"

	// maxDailyHours caps what a single session may contribute. A session that
	// was never closed (or a skewed clock) would otherwise inflate one day far
	// beyond what is physically possible.
	maxDailyHours = 24.0
)

// WeeklyStatistics computes the Monday-Sunday report for the calendar week
// containing the current instant. An unknown user yields an all-zero report,
// not an error. Results are cached per user and week; concurrent computations
// for the same key are collapsed into one.
func (s *Service) WeeklyStatistics(ctx context.Context, userID uuid.UUID) (*domain.WeeklyReport, error) {
	ref := s.now()
	weekKey := weekStartOf(ref).Format(dateLayout)

	if s.statsCache == nil {
		metrics.StatsRequestsTotal.WithLabelValues("bypass").Inc()
		return s.computeWeekly(ctx, userID, ref)
	}

	if cached, ok := s.statsCache.Get(ctx, userID, weekKey); ok {
		metrics.StatsRequestsTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.StatsRequestsTotal.WithLabelValues("miss").Inc()

	result, err, _ := s.statsGroup.Do(userID.String()+":"+weekKey, func() (any, error) {
		report, err := s.computeWeekly(ctx, userID, ref)
		if err != nil {
			return nil, err
		}
		s.statsCache.Set(ctx, userID, weekKey, report)
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.WeeklyReport), nil
}

// computeWeekly is the aggregation core. The window is the Monday on or
// before ref through the following Sunday, both taken as calendar dates in
// the fixed timezone. Every session is attributed whole to the date it
// started on, even when it ran past midnight.
func (s *Service) computeWeekly(ctx context.Context, userID uuid.UUID, ref time.Time) (*domain.WeeklyReport, error) {
	timer := prometheus.NewTimer(metrics.StatsComputeDuration)
	defer timer.ObserveDuration()

	weekStart := weekStartOf(ref)
	weekEnd := weekStart.AddDate(0, 0, 6)
	windowEnd := time.Date(weekEnd.Year(), weekEnd.Month(), weekEnd.Day(), 23, 59, 59, 999999000, s.loc)

	sessions, err := s.sessions.FindInRange(ctx, userID, weekStart, windowEnd)
	if err != nil {
		return nil, err
	}

	daily := make(map[string]float64, 7)
	for i := 0; i < 7; i++ {
		daily[weekStart.AddDate(0, 0, i).Format(dateLayout)] = 0
	}

	for _, session := range sessions {
		start := session.StartTime.In(s.loc)
		day := start.Format(dateLayout)

		// An open session is still accumulating: count it up to ref, never
		// into the future.
		end := ref
		if session.EndTime != nil {
			end = session.EndTime.In(s.loc)
		}

		hours := end.Sub(start).Seconds() / 3600
		if hours > maxDailyHours {
			hours = maxDailyHours
		}

		daily[day] = round1(daily[day] + hours)
	}

	var total float64
	for _, hours := range daily {
		total += hours
	}
	total = round1(total)

	return &domain.WeeklyReport{
		WeekStart:     weekStart.Format(dateLayout),
		WeekEnd:       weekEnd.Format(dateLayout),
		DailyHours:    daily,
		WeeklyTotal:   total,
		WeeklyAverage: round1(total / 7),
	}, nil
}

// weekStartOf returns midnight of the Monday on or before t, in t's location.
func weekStartOf(t time.Time) time.Time {
	// time.Weekday counts Sunday=0; shift so Monday=0.
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, -offset)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
