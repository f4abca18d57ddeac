package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

const streakColumns = `id, user_id, date, total_screen_time_minutes, goal_met`

func scanStreak(row pgx.Row) (*domain.Streak, error) {
	var streak domain.Streak
	err := row.Scan(
		&streak.ID, &streak.Owner, &streak.Date,
		&streak.TotalScreenTimeMinutes, &streak.GoalMet,
	)
	if err != nil {
		return nil, err
	}
	return &streak, nil
}

func (s *Store) ListStreaks(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]domain.Streak, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+streakColumns+` FROM streaks
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC
	`, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks: %w", err)
	}
	defer rows.Close()

	var streaks []domain.Streak
	for rows.Next() {
		streak, err := scanStreak(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan streak: %w", err)
		}
		streaks = append(streaks, *streak)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read streaks: %w", err)
	}
	return streaks, nil
}

func (s *Store) UpsertStreak(ctx context.Context, owner uuid.UUID, date time.Time, totalMinutes int, goalMet bool) (*domain.Streak, error) {
	streak, err := scanStreak(s.pool.QueryRow(ctx, `
		INSERT INTO streaks (user_id, date, total_screen_time_minutes, goal_met)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, date) DO UPDATE SET
			total_screen_time_minutes = EXCLUDED.total_screen_time_minutes,
			goal_met = EXCLUDED.goal_met
		RETURNING `+streakColumns+`
	`, owner, date, totalMinutes, goalMet))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert streak: %w", err)
	}
	return streak, nil
}
