package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

// usageColumns must match the Scan order in scanUsageLog.
const usageColumns = `id, user_id, app_id, COALESCE(app_name, ''), COALESCE(package_name, ''), opened_at, closed_at, COALESCE(intention, ''), reflection, duration_seconds`

func scanUsageLog(row pgx.Row) (*domain.UsageLog, error) {
	var log domain.UsageLog
	err := row.Scan(
		&log.ID, &log.Owner, &log.AppID, &log.AppName, &log.PackageName,
		&log.OpenedAt, &log.ClosedAt, &log.Intention, &log.Reflection, &log.DurationSeconds,
	)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *Store) InsertUsageLog(ctx context.Context, owner uuid.UUID, entry domain.UsageEntry) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO usage_logs (user_id, app_id, app_name, package_name, opened_at, intention)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''))
		RETURNING id
	`, owner, entry.AppID, entry.AppName, entry.PackageName, entry.OpenedAt, entry.Intention).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert usage log: %w", err)
	}
	return id, nil
}

func (s *Store) CloseUsageLog(ctx context.Context, logID uuid.UUID, closedAt time.Time, durationSeconds int, reflection string) error {
	// closed_at, duration_seconds and reflection are set together, once;
	// a second close finds no open row and affects nothing.
	tag, err := s.pool.Exec(ctx, `
		UPDATE usage_logs
		SET closed_at = $1, duration_seconds = $2, reflection = $3
		WHERE id = $4 AND closed_at IS NULL
	`, closedAt, durationSeconds, reflection, logID)
	if err != nil {
		return fmt.Errorf("failed to close usage log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLogNotFound
	}
	return nil
}

func (s *Store) ListUsageLogs(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]domain.UsageLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+usageColumns+` FROM usage_logs
		WHERE user_id = $1 AND opened_at >= $2 AND opened_at <= $3
		ORDER BY opened_at DESC
	`, owner, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.UsageLog
	for rows.Next() {
		log, err := scanUsageLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage log: %w", err)
		}
		logs = append(logs, *log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usage logs: %w", err)
	}
	return logs, nil
}
