// Package remote decorates a domain.RemoteStore with a circuit breaker so
// that a dead network fails fast instead of stalling every caller. When the
// circuit is open all operations return domain.ErrRemoteUnavailable
// immediately and callers degrade to cached or local behaviour.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Ufhano/Minimalist-App/internal/domain"
	"github.com/Ufhano/Minimalist-App/internal/metrics"
)

// Breaker wraps a RemoteStore with circuit breaker protection.
// Settings:
// - WithFailureRateThreshold: 60% failure rate, min 5 requests, 10s rolling window
// - WithDelay: 30s before transitioning from open to half-open
// - WithSuccessThreshold: 1 successful request in half-open to close
type Breaker struct {
	next  domain.RemoteStore
	cb    circuitbreaker.CircuitBreaker[any]
	clock clockwork.Clock
}

var _ domain.RemoteStore = (*Breaker)(nil)

func NewBreaker(next domain.RemoteStore, clock clockwork.Clock) *Breaker {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "remote_store",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues("remote_store", e.NewState.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues("remote_store").Set(stateToFloat(e.NewState))
		}).
		Build()

	return &Breaker{next: next, cb: cb, clock: clock}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

// State returns the current breaker state (for testing/monitoring).
func (b *Breaker) State() circuitbreaker.State {
	return b.cb.State()
}

// businessError reports whether err is a domain outcome rather than a
// transport failure. Business errors must not trip the breaker.
func businessError(err error) bool {
	return errors.Is(err, domain.ErrAppNotFound) ||
		errors.Is(err, domain.ErrLogNotFound) ||
		errors.Is(err, domain.ErrLogClosed) ||
		errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrSessionFinished)
}

func do[T any](b *Breaker, op string, fn func() (T, error)) (T, error) {
	var zero T

	if !b.cb.TryAcquirePermit() {
		metrics.RemoteOpsTotal.WithLabelValues(op, "rejected").Inc()
		return zero, fmt.Errorf("%s: circuit open: %w", op, domain.ErrRemoteUnavailable)
	}

	start := b.clock.Now()
	val, err := fn()
	metrics.RemoteOpDuration.WithLabelValues(op).Observe(b.clock.Since(start).Seconds())

	if err != nil && !businessError(err) {
		b.cb.RecordError(err)
		metrics.RemoteOpsTotal.WithLabelValues(op, "error").Inc()
		return zero, fmt.Errorf("%s: %w: %w", op, domain.ErrRemoteUnavailable, err)
	}

	b.cb.RecordSuccess()
	if err != nil {
		metrics.RemoteOpsTotal.WithLabelValues(op, "business_error").Inc()
		return zero, err
	}
	metrics.RemoteOpsTotal.WithLabelValues(op, "ok").Inc()
	return val, nil
}

func doVoid(b *Breaker, op string, fn func() error) error {
	_, err := do(b, op, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

func (b *Breaker) ListApps(ctx context.Context, owner uuid.UUID, profile *uuid.UUID) ([]domain.App, error) {
	return do(b, "list_apps", func() ([]domain.App, error) {
		return b.next.ListApps(ctx, owner, profile)
	})
}

func (b *Breaker) UpsertApp(ctx context.Context, owner uuid.UUID, change domain.AppChange) (*domain.App, error) {
	return do(b, "upsert_app", func() (*domain.App, error) {
		return b.next.UpsertApp(ctx, owner, change)
	})
}

func (b *Breaker) DeleteApp(ctx context.Context, appID uuid.UUID) error {
	return doVoid(b, "delete_app", func() error {
		return b.next.DeleteApp(ctx, appID)
	})
}

func (b *Breaker) InsertUsageLog(ctx context.Context, owner uuid.UUID, entry domain.UsageEntry) (uuid.UUID, error) {
	return do(b, "insert_usage_log", func() (uuid.UUID, error) {
		return b.next.InsertUsageLog(ctx, owner, entry)
	})
}

func (b *Breaker) CloseUsageLog(ctx context.Context, logID uuid.UUID, closedAt time.Time, durationSeconds int, reflection string) error {
	return doVoid(b, "close_usage_log", func() error {
		return b.next.CloseUsageLog(ctx, logID, closedAt, durationSeconds, reflection)
	})
}

func (b *Breaker) ListUsageLogs(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]domain.UsageLog, error) {
	return do(b, "list_usage_logs", func() ([]domain.UsageLog, error) {
		return b.next.ListUsageLogs(ctx, owner, from, to)
	})
}

func (b *Breaker) InsertFocusSession(ctx context.Context, owner uuid.UUID, startedAt time.Time, sessionType domain.SessionType) (uuid.UUID, error) {
	return do(b, "insert_focus_session", func() (uuid.UUID, error) {
		return b.next.InsertFocusSession(ctx, owner, startedAt, sessionType)
	})
}

func (b *Breaker) EndFocusSession(ctx context.Context, sessionID uuid.UUID, endedAt time.Time, durationMinutes int) error {
	return doVoid(b, "end_focus_session", func() error {
		return b.next.EndFocusSession(ctx, sessionID, endedAt, durationMinutes)
	})
}

func (b *Breaker) ListStreaks(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]domain.Streak, error) {
	return do(b, "list_streaks", func() ([]domain.Streak, error) {
		return b.next.ListStreaks(ctx, owner, from, to)
	})
}

func (b *Breaker) UpsertStreak(ctx context.Context, owner uuid.UUID, date time.Time, totalMinutes int, goalMet bool) (*domain.Streak, error) {
	return do(b, "upsert_streak", func() (*domain.Streak, error) {
		return b.next.UpsertStreak(ctx, owner, date, totalMinutes, goalMet)
	})
}
