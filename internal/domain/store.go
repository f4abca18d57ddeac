package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RemoteStore is the authoritative owner-scoped store all components
// eventually reconcile against. Implementations must map transport failures
// to ErrRemoteUnavailable so callers can degrade to cached or local data.
type RemoteStore interface {
	// ListApps returns all apps for owner whose profile scope is nil or
	// equals profile, sorted by name.
	ListApps(ctx context.Context, owner uuid.UUID, profile *uuid.UUID) ([]App, error)
	// UpsertApp inserts or updates an app keyed by (owner, package name).
	UpsertApp(ctx context.Context, owner uuid.UUID, change AppChange) (*App, error)
	// DeleteApp removes an app by id. Deleting an absent id is not an error.
	DeleteApp(ctx context.Context, appID uuid.UUID) error

	InsertUsageLog(ctx context.Context, owner uuid.UUID, entry UsageEntry) (uuid.UUID, error)
	CloseUsageLog(ctx context.Context, logID uuid.UUID, closedAt time.Time, durationSeconds int, reflection string) error
	// ListUsageLogs returns logs with opened_at in [from, to], newest first.
	ListUsageLogs(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]UsageLog, error)

	InsertFocusSession(ctx context.Context, owner uuid.UUID, startedAt time.Time, sessionType SessionType) (uuid.UUID, error)
	EndFocusSession(ctx context.Context, sessionID uuid.UUID, endedAt time.Time, durationMinutes int) error

	// ListStreaks returns streak rows with date in [from, to], newest first.
	ListStreaks(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]Streak, error)
	// UpsertStreak writes the derived row for a day, unique on (owner, date).
	UpsertStreak(ctx context.Context, owner uuid.UUID, date time.Time, totalMinutes int, goalMet bool) (*Streak, error)
}

// LocalCache is durable on-device key-value persistence for the catalog
// snapshot and user settings. Values are opaque serialized records.
type LocalCache interface {
	// Get returns the stored value or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
