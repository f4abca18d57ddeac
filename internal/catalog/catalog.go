// Package catalog implements the local-first App Catalog Cache. Reads are
// always served from an in-memory snapshot that survives restarts via the
// local cache; the remote store is consulted opportunistically and a failed
// refresh degrades to stale data instead of erroring.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Ufhano/Minimalist-App/internal/domain"
	"github.com/Ufhano/Minimalist-App/internal/metrics"
)

// snapshotKey is the local cache key the serialized snapshot lives under.
const snapshotKey = "catalog_snapshot"

// Cache owns the in-memory app collection and its durable snapshot.
// The snapshot is a single value replaced atomically, never mutated in
// place, so concurrent refreshes cannot interleave partial writes.
type Cache struct {
	remote domain.RemoteStore
	local  domain.LocalCache
	events domain.EventPublisher

	group    singleflight.Group
	snapshot atomic.Pointer[[]domain.App]
	dirty    atomic.Bool
}

func New(remote domain.RemoteStore, local domain.LocalCache, events domain.EventPublisher) *Cache {
	c := &Cache{remote: remote, local: local, events: events}
	empty := []domain.App{}
	c.snapshot.Store(&empty)
	c.loadPersisted()
	return c
}

// loadPersisted restores the last known-good snapshot from the local cache
// so the launcher is usable before the first successful refresh.
func (c *Cache) loadPersisted() {
	data, err := c.local.Get(context.Background(), snapshotKey)
	if err != nil {
		if err != domain.ErrCacheMiss {
			slog.Warn("Failed to load persisted catalog snapshot", "error", err)
		}
		return
	}

	var apps []domain.App
	if err := json.Unmarshal(data, &apps); err != nil {
		slog.Warn("Discarding corrupt catalog snapshot", "error", err)
		return
	}

	c.snapshot.Store(&apps)
	metrics.CatalogSnapshotApps.Set(float64(len(apps)))
}

// Snapshot returns a copy of the last known-good app set.
func (c *Cache) Snapshot() []domain.App {
	apps := *c.snapshot.Load()
	out := make([]domain.App, len(apps))
	copy(out, apps)
	return out
}

// Stale reports whether a mutation has invalidated the snapshot since the
// last successful refresh.
func (c *Cache) Stale() bool {
	return c.dirty.Load()
}

// Refresh fetches the owner's apps from the remote store. On success the
// durable snapshot is replaced and the fresh set returned. On any failure
// the previous snapshot is returned unchanged together with an error
// wrapping domain.ErrSyncFailed; the caller proceeds with stale data.
// Concurrent refreshes for the same owner are collapsed.
func (c *Cache) Refresh(ctx context.Context, owner uuid.UUID, profile *uuid.UUID) ([]domain.App, error) {
	result, err, _ := c.group.Do(owner.String(), func() (any, error) {
		return c.remote.ListApps(ctx, owner, profile)
	})
	if err != nil {
		metrics.CatalogRefreshesTotal.WithLabelValues("stale").Inc()
		slog.Warn("Catalog refresh failed, serving stale snapshot", "owner", owner.String(), "error", err)
		return c.Snapshot(), fmt.Errorf("%w: %w", domain.ErrSyncFailed, err)
	}

	apps := result.([]domain.App)
	if apps == nil {
		apps = []domain.App{}
	}
	c.snapshot.Store(&apps)
	c.dirty.Store(false)
	metrics.CatalogRefreshesTotal.WithLabelValues("fresh").Inc()
	metrics.CatalogSnapshotApps.Set(float64(len(apps)))
	c.persist(ctx, apps)

	if c.events != nil {
		c.events.Publish(domain.Event{
			Type:    domain.EventCatalogUpdated,
			Payload: map[string]any{"apps": len(apps)},
		})
	}

	return c.Snapshot(), nil
}

// persist writes the snapshot to the local cache, best-effort.
func (c *Cache) persist(ctx context.Context, apps []domain.App) {
	data, err := json.Marshal(apps)
	if err != nil {
		slog.Error("Failed to marshal catalog snapshot", "error", err)
		return
	}
	if err := c.local.Set(ctx, snapshotKey, data); err != nil {
		slog.Warn("Failed to persist catalog snapshot", "error", err)
	}
}

// Upsert writes an app to the remote store keyed by (owner, package name):
// re-adding an existing package updates category/limit instead of
// duplicating. On success the snapshot is marked stale so the next refresh
// picks the change up. There is no offline write queue; the error surfaces.
func (c *Cache) Upsert(ctx context.Context, owner uuid.UUID, change domain.AppChange) (*domain.App, error) {
	if err := validate(&change); err != nil {
		return nil, err
	}

	app, err := c.remote.UpsertApp(ctx, owner, change)
	if err != nil {
		return nil, fmt.Errorf("upsert app %q: %w", change.PackageName, err)
	}

	c.dirty.Store(true)
	return app, nil
}

// Remove deletes an app by id. Removing an already-absent id is not an error.
func (c *Cache) Remove(ctx context.Context, appID uuid.UUID) error {
	if err := c.remote.DeleteApp(ctx, appID); err != nil {
		return fmt.Errorf("remove app %s: %w", appID, err)
	}
	c.dirty.Store(true)
	return nil
}

// AllowedApps returns the apps currently allowed under the active profile:
// category is allowed and the profile scope is nil or matches.
func (c *Cache) AllowedApps(profile *uuid.UUID) []domain.App {
	var out []domain.App
	for _, app := range *c.snapshot.Load() {
		if app.Category != domain.CategoryAllowed {
			continue
		}
		if app.ProfileID == nil || profile == nil || *app.ProfileID == *profile {
			out = append(out, app)
		}
	}
	return out
}

// RestrictedApps returns all restricted apps regardless of profile, since
// they require the intention gate unconditionally.
func (c *Cache) RestrictedApps() []domain.App {
	var out []domain.App
	for _, app := range *c.snapshot.Load() {
		if app.Category == domain.CategoryRestricted {
			out = append(out, app)
		}
	}
	return out
}

// validate checks a change and normalizes the daily limit, which is only
// meaningful for restricted apps.
func validate(change *domain.AppChange) error {
	if change.Name == "" {
		return fmt.Errorf("%w: app name is required", domain.ErrValidation)
	}
	if change.PackageName == "" {
		return fmt.Errorf("%w: package name is required", domain.ErrValidation)
	}
	if !change.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, change.Category)
	}
	if change.DailyLimitMinutes != nil && *change.DailyLimitMinutes <= 0 {
		return fmt.Errorf("%w: daily limit must be positive", domain.ErrValidation)
	}
	if change.Category != domain.CategoryRestricted {
		change.DailyLimitMinutes = nil
	}
	return nil
}
