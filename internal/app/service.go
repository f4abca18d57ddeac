// Package app is the application layer, the only place that references
// multiple core components. It owns the signed-in owner state, the single
// active focus timer, open usage handles, and the background streak rollup.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/Ufhano/Minimalist-App/internal/catalog"
	"github.com/Ufhano/Minimalist-App/internal/domain"
	"github.com/Ufhano/Minimalist-App/internal/focus"
	"github.com/Ufhano/Minimalist-App/internal/recorder"
	"github.com/Ufhano/Minimalist-App/internal/settings"
	"github.com/Ufhano/Minimalist-App/internal/stats"
)

const (
	rollupInterval = time.Hour
	rollupTimeout  = 30 * time.Second

	// Stale-snapshot reconciles triggered by reads are throttled so a
	// burst of catalog reads cannot hammer the remote store.
	reconcileMinInterval = 30 * time.Second
)

// Service orchestrates all use cases.
type Service struct {
	catalog  *catalog.Cache
	recorder *recorder.Recorder
	stats    *stats.Service
	settings *settings.Store
	remote   domain.RemoteStore
	events   domain.EventPublisher
	clock    clockwork.Clock

	mu          sync.Mutex
	owner       *uuid.UUID
	profile     *uuid.UUID
	timer       *focus.Timer
	timerCancel context.CancelFunc
	handles     map[uuid.UUID]*recorder.Handle

	reconcileLimiter *rate.Limiter
	rollupStopCh     chan struct{}
	stopOnce         sync.Once
	wg               sync.WaitGroup
}

func NewService(cat *catalog.Cache, rec *recorder.Recorder, st *stats.Service, set *settings.Store, remote domain.RemoteStore, events domain.EventPublisher, clock clockwork.Clock) *Service {
	s := &Service{
		catalog:          cat,
		recorder:         rec,
		stats:            st,
		settings:         set,
		remote:           remote,
		events:           events,
		clock:            clock,
		handles:          make(map[uuid.UUID]*recorder.Handle),
		reconcileLimiter: rate.NewLimiter(rate.Every(reconcileMinInterval), 1),
		rollupStopCh:     make(chan struct{}),
	}

	s.startRollupTimer()
	return s
}

// --- Owner ---

// Owner returns the signed-in owner, or nil when anonymous.
func (s *Service) Owner() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// SetOwner signs an owner in and triggers an initial catalog refresh. The
// refresh is best-effort: a failed sync still signs the owner in, with the
// persisted snapshot serving reads until the remote store comes back.
func (s *Service) SetOwner(ctx context.Context, owner uuid.UUID, profile *uuid.UUID) {
	s.mu.Lock()
	s.owner = &owner
	s.profile = profile
	s.mu.Unlock()

	if _, err := s.catalog.Refresh(ctx, owner, profile); err != nil {
		slog.Warn("Initial catalog refresh after sign-in failed", "owner", owner.String(), "error", err)
	}
}

// ClearOwner signs the owner out. Already-open usage handles stay valid;
// their remote writes were bound at open time.
func (s *Service) ClearOwner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = nil
	s.profile = nil
}

func (s *Service) ownerAndProfile() (*uuid.UUID, *uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner, s.profile
}

// --- App catalog ---

// Apps returns the current catalog snapshot together with its staleness.
// A stale snapshot kicks off a throttled background reconcile; the read
// itself never waits on the network.
func (s *Service) Apps() ([]domain.App, bool) {
	owner, profile := s.ownerAndProfile()
	stale := s.catalog.Stale()

	if stale && owner != nil && s.reconcileLimiter.Allow() {
		o := *owner
		s.wg.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), rollupTimeout)
			defer cancel()
			if _, err := s.catalog.Refresh(ctx, o, profile); err != nil {
				slog.Debug("Background catalog reconcile failed", "owner", o.String(), "error", err)
			}
		})
	}

	return s.catalog.Snapshot(), stale
}

// RefreshApps forces a catalog refresh. On sync failure the stale snapshot
// comes back together with the error so callers can render it as such.
func (s *Service) RefreshApps(ctx context.Context) ([]domain.App, error) {
	owner, profile := s.ownerAndProfile()
	if owner == nil {
		return s.catalog.Snapshot(), nil
	}
	return s.catalog.Refresh(ctx, *owner, profile)
}

// UpsertApp adds or updates an app in the owner's catalog.
func (s *Service) UpsertApp(ctx context.Context, change domain.AppChange) (*domain.App, error) {
	owner, _ := s.ownerAndProfile()
	if owner == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return s.catalog.Upsert(ctx, *owner, change)
}

// RemoveApp deletes an app from the catalog by id.
func (s *Service) RemoveApp(ctx context.Context, appID uuid.UUID) error {
	owner, _ := s.ownerAndProfile()
	if owner == nil {
		return domain.ErrNotAuthenticated
	}
	return s.catalog.Remove(ctx, appID)
}

// AllowedApps returns the apps launchable under the active profile.
func (s *Service) AllowedApps() []domain.App {
	_, profile := s.ownerAndProfile()
	return s.catalog.AllowedApps(profile)
}

// RestrictedApps returns the apps behind the intention gate.
func (s *Service) RestrictedApps() []domain.App {
	return s.catalog.RestrictedApps()
}

// --- Usage sessions ---

// OpenApp starts a usage log for an app-open event and tracks the handle
// for a later close. Never fails; anonymous opens stay local.
func (s *Service) OpenApp(ctx context.Context, app recorder.Descriptor, intention string) *recorder.Handle {
	owner, _ := s.ownerAndProfile()
	h := s.recorder.Open(ctx, owner, app, intention)

	s.mu.Lock()
	s.handles[h.ID] = h
	s.mu.Unlock()
	return h
}

// CloseUsage closes an open usage handle with the user's reflection.
func (s *Service) CloseUsage(handleID uuid.UUID, reflection string) error {
	s.mu.Lock()
	h, ok := s.handles[handleID]
	if ok {
		delete(s.handles, handleID)
	}
	s.mu.Unlock()

	if !ok {
		return domain.ErrLogNotFound
	}
	s.recorder.Close(h, reflection)
	return nil
}

// ListUsage returns the owner's usage logs for a time window, newest first.
func (s *Service) ListUsage(ctx context.Context, from, to time.Time) ([]domain.UsageLog, error) {
	owner, _ := s.ownerAndProfile()
	if owner == nil {
		return []domain.UsageLog{}, nil
	}
	return s.remote.ListUsageLogs(ctx, *owner, from, to)
}

// --- Focus sessions ---

// StartFocus starts a focus session of the given type. Only one session can
// run at a time; starting over a live one returns ErrSessionRunning.
func (s *Service) StartFocus(ctx context.Context, sessionType domain.SessionType) (*focus.Timer, error) {
	s.mu.Lock()
	if s.timer != nil && !s.timer.State().Terminal() {
		s.mu.Unlock()
		return nil, domain.ErrSessionRunning
	}
	if s.timerCancel != nil {
		s.timerCancel()
	}
	owner := s.owner
	timer := focus.NewTimer(sessionType, s.remote, s.clock, s.events)
	s.timer = timer
	runCtx, cancel := context.WithCancel(context.Background())
	s.timerCancel = cancel
	s.mu.Unlock()

	if err := timer.Start(ctx, owner); err != nil {
		cancel()
		return nil, err
	}

	s.wg.Go(func() {
		defer cancel()
		timer.Run(runCtx)
	})
	return timer, nil
}

// Focus returns the live timer, or ErrNoActiveSession when none is running
// or the last one already finished.
func (s *Service) Focus() (*focus.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil || s.timer.State().Terminal() {
		return nil, domain.ErrNoActiveSession
	}
	return s.timer, nil
}

// PauseFocus pauses the live focus session.
func (s *Service) PauseFocus() error {
	timer, err := s.Focus()
	if err != nil {
		return err
	}
	timer.Pause()
	return nil
}

// ResumeFocus resumes a paused focus session.
func (s *Service) ResumeFocus() error {
	timer, err := s.Focus()
	if err != nil {
		return err
	}
	timer.Resume()
	return nil
}

// CancelFocus cancels the live focus session.
func (s *Service) CancelFocus() error {
	timer, err := s.Focus()
	if err != nil {
		return err
	}
	timer.Cancel()
	return nil
}

// --- Settings ---

// Settings returns the persisted user settings, defaults included.
func (s *Service) Settings(ctx context.Context) settings.Settings {
	return s.settings.Load(ctx)
}

// SaveSettings validates and persists the settings record.
func (s *Service) SaveSettings(ctx context.Context, record settings.Settings) error {
	return s.settings.Save(ctx, record)
}

// --- Aggregation ---

// Summary returns the habit feedback view for the signed-in owner, or the
// zero-filled anonymous view.
func (s *Service) Summary(ctx context.Context) (*stats.Summary, error) {
	owner, _ := s.ownerAndProfile()
	return s.stats.Summary(ctx, owner)
}

// RollupToday derives and persists today's streak row.
func (s *Service) RollupToday(ctx context.Context) (*domain.Streak, error) {
	owner, _ := s.ownerAndProfile()
	if owner == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return s.stats.RollupDay(ctx, *owner, s.clock.Now())
}

func (s *Service) startRollupTimer() {
	ticker := s.clock.NewTicker(rollupInterval)
	go func() {
		for {
			select {
			case <-ticker.Chan():
				s.rollup()
			case <-s.rollupStopCh:
				ticker.Stop()
				return
			}
		}
	}()
	slog.Info("Streak rollup timer started", "interval", rollupInterval.String())
}

func (s *Service) rollup() {
	owner, _ := s.ownerAndProfile()
	if owner == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), rollupTimeout)
	defer cancel()
	if _, err := s.stats.RollupDay(ctx, *owner, s.clock.Now()); err != nil {
		slog.Error("Scheduled streak rollup failed", "owner", owner.String(), "error", err)
	}
}

// Stop stops the rollup timer, cancels the live timer loop, and waits for
// in-flight background work to finish.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.rollupStopCh)
	})

	s.mu.Lock()
	cancel := s.timerCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	s.wg.Wait()
	s.recorder.Wait()
}
