package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

// appColumns must match the Scan order in scanApp.
const appColumns = `id, user_id, app_name, package_name, category, daily_limit_minutes, profile_id, created_at, updated_at`

// Store implements domain.RemoteStore backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ domain.RemoteStore = (*Store)(nil)

// NewStore creates a Store from the shared connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity, used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanApp(row pgx.Row) (*domain.App, error) {
	var app domain.App
	err := row.Scan(
		&app.ID, &app.Owner, &app.Name, &app.PackageName, &app.Category,
		&app.DailyLimitMinutes, &app.ProfileID, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Store) ListApps(ctx context.Context, owner uuid.UUID, profile *uuid.UUID) ([]domain.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps WHERE user_id = $1`
	args := []any{owner}
	if profile != nil {
		query += ` AND (profile_id IS NULL OR profile_id = $2)`
		args = append(args, *profile)
	}
	query += ` ORDER BY app_name ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	defer rows.Close()

	var apps []domain.App
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read apps: %w", err)
	}
	return apps, nil
}

func (s *Store) UpsertApp(ctx context.Context, owner uuid.UUID, change domain.AppChange) (*domain.App, error) {
	app, err := scanApp(s.pool.QueryRow(ctx, `
		INSERT INTO apps (user_id, app_name, package_name, category, daily_limit_minutes, profile_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id, package_name) DO UPDATE SET
			app_name = EXCLUDED.app_name,
			category = EXCLUDED.category,
			daily_limit_minutes = EXCLUDED.daily_limit_minutes,
			profile_id = EXCLUDED.profile_id,
			updated_at = NOW()
		RETURNING `+appColumns+`
	`, owner, change.Name, change.PackageName, change.Category, change.DailyLimitMinutes, change.ProfileID))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert app: %w", err)
	}
	return app, nil
}

func (s *Store) DeleteApp(ctx context.Context, appID uuid.UUID) error {
	// Idempotent: deleting an absent id affects zero rows and succeeds.
	if _, err := s.pool.Exec(ctx, `DELETE FROM apps WHERE id = $1`, appID); err != nil {
		return fmt.Errorf("failed to delete app: %w", err)
	}
	return nil
}

// GetApp looks up a single app by id.
func (s *Store) GetApp(ctx context.Context, appID uuid.UUID) (*domain.App, error) {
	app, err := scanApp(s.pool.QueryRow(ctx,
		`SELECT `+appColumns+` FROM apps WHERE id = $1`, appID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAppNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return app, nil
}
