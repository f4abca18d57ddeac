package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Ufhano/Minimalist-App/internal/domain"
	"github.com/Ufhano/Minimalist-App/internal/metrics"
)

// Summary is the habit-change feedback view: today's usage against the
// weekly trend plus the goal streak.
type Summary struct {
	ReferenceDate        time.Time `json:"reference_date"`
	TodayMinutes         int       `json:"today_minutes"`
	WeeklySeries         []Point   `json:"weekly_series"`
	WeeklyAverageMinutes int       `json:"weekly_average_minutes"`
	DeviationPercent     int       `json:"deviation_percent"`
	StreakLength         int       `json:"streak_length"`
	GoalMet              bool      `json:"goal_met"`
	DailyGoalMinutes     int       `json:"daily_goal_minutes"`
}

// Service fetches the aggregation windows from the remote store and applies
// the pure computations. It holds no state of its own.
type Service struct {
	remote           domain.RemoteStore
	clock            clockwork.Clock
	dailyGoalMinutes int
}

func NewService(remote domain.RemoteStore, clock clockwork.Clock, dailyGoalMinutes int) *Service {
	return &Service{remote: remote, clock: clock, dailyGoalMinutes: dailyGoalMinutes}
}

// Summary computes the feedback view for the current UTC day. Anonymous
// callers get a zero-filled summary with correct weekday labels, so the
// dashboard renders without a remote round trip.
func (s *Service) Summary(ctx context.Context, owner *uuid.UUID) (*Summary, error) {
	reference := DayStart(s.clock.Now())

	if owner == nil {
		return s.build(nil, nil, reference), nil
	}

	from := reference.AddDate(0, 0, -6)
	to := reference.Add(24 * time.Hour)
	logs, err := s.remote.ListUsageLogs(ctx, *owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("list usage logs: %w", err)
	}

	streaks, err := s.remote.ListStreaks(ctx, *owner, reference.AddDate(0, 0, -29), reference)
	if err != nil {
		return nil, fmt.Errorf("list streaks: %w", err)
	}

	return s.build(logs, streaks, reference), nil
}

func (s *Service) build(logs []domain.UsageLog, streaks []domain.Streak, reference time.Time) *Summary {
	today := DailyTotalMinutes(logs, reference)
	average := WeeklyAverageMinutes(logs, reference)

	return &Summary{
		ReferenceDate:        reference,
		TodayMinutes:         today,
		WeeklySeries:         WeeklySeries(logs, reference),
		WeeklyAverageMinutes: average,
		DeviationPercent:     DeviationPercent(today, average),
		StreakLength:         StreakLength(streaks),
		GoalMet:              GoalMet(today, s.dailyGoalMinutes),
		DailyGoalMinutes:     s.dailyGoalMinutes,
	}
}

// RollupDay derives the streak row for one calendar day from that day's
// usage logs and upserts it. Re-running the rollup for the same day
// overwrites the row rather than duplicating it.
func (s *Service) RollupDay(ctx context.Context, owner uuid.UUID, day time.Time) (*domain.Streak, error) {
	start := DayStart(day)
	logs, err := s.remote.ListUsageLogs(ctx, owner, start, start.Add(24*time.Hour))
	if err != nil {
		metrics.StreakRollupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("list usage logs for rollup: %w", err)
	}

	total := DailyTotalMinutes(logs, start)
	streak, err := s.remote.UpsertStreak(ctx, owner, start, total, GoalMet(total, s.dailyGoalMinutes))
	if err != nil {
		metrics.StreakRollupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upsert streak: %w", err)
	}

	metrics.StreakRollupsTotal.WithLabelValues("ok").Inc()
	return streak, nil
}
