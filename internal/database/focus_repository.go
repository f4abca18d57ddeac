package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

func (s *Store) InsertFocusSession(ctx context.Context, owner uuid.UUID, startedAt time.Time, sessionType domain.SessionType) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO focus_sessions (user_id, session_type, started_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, owner, sessionType, startedAt).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert focus session: %w", err)
	}
	return id, nil
}

func (s *Store) EndFocusSession(ctx context.Context, sessionID uuid.UUID, endedAt time.Time, durationMinutes int) error {
	// ended_at and duration_minutes are set together, at most once.
	tag, err := s.pool.Exec(ctx, `
		UPDATE focus_sessions
		SET ended_at = $1, duration_minutes = $2
		WHERE id = $3 AND ended_at IS NULL
	`, endedAt, durationMinutes, sessionID)
	if err != nil {
		return fmt.Errorf("failed to end focus session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
