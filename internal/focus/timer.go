// Package focus implements the focus session countdown state machine:
// IDLE -> RUNNING <-> PAUSED -> COMPLETED, with RUNNING|PAUSED -> CANCELLED.
//
// Remaining time is recomputed from the wall clock on every tick rather
// than counted in discrete steps, so a tick source that suspends while the
// app is backgrounded reconciles correctly on resume.
package focus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Ufhano/Minimalist-App/internal/domain"
	"github.com/Ufhano/Minimalist-App/internal/metrics"
)

const persistTimeout = 10 * time.Second

// State is the timer's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Timer drives one focus session. A persistence failure never blocks or
// reverses a state transition: the session is user-complete regardless of
// storage outcome.
type Timer struct {
	remote domain.RemoteStore
	clock  clockwork.Clock
	events domain.EventPublisher

	mu          sync.Mutex
	state       State
	sessionType domain.SessionType
	total       time.Duration
	owner       *uuid.UUID
	sessionID   *uuid.UUID
	startedAt   time.Time
	runStarted  time.Time     // start of the current running stretch
	elapsed     time.Duration // accumulated running time, frozen while paused

	wg sync.WaitGroup
}

// NewTimer creates an idle timer for the given session type. The total
// duration comes from the fixed session catalog.
func NewTimer(sessionType domain.SessionType, remote domain.RemoteStore, clock clockwork.Clock, events domain.EventPublisher) *Timer {
	return &Timer{
		remote:      remote,
		clock:       clock,
		events:      events,
		state:       StateIdle,
		sessionType: sessionType,
		total:       sessionType.Spec().Duration,
	}
}

// Type returns the session type the timer was configured with.
func (t *Timer) Type() domain.SessionType { return t.sessionType }

// State returns the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SessionID returns the persisted session id, or nil for a local session.
func (t *Timer) SessionID() *uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// Remaining returns the time left, clamped at zero.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked(t.clock.Now())
}

func (t *Timer) remainingLocked(now time.Time) time.Duration {
	elapsed := t.elapsed
	if t.state == StateRunning {
		elapsed += now.Sub(t.runStarted)
	}
	remaining := t.total - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Start transitions IDLE -> RUNNING. With a signed-in owner the session is
// inserted remotely; an insert failure downgrades to a local-only session
// and never blocks the start.
func (t *Timer) Start(ctx context.Context, owner *uuid.UUID) error {
	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return domain.ErrSessionRunning
	}
	now := t.clock.Now().UTC()
	t.state = StateRunning
	t.owner = owner
	t.startedAt = now
	t.runStarted = now
	t.mu.Unlock()

	metrics.FocusSessionsStartedTotal.WithLabelValues(string(t.sessionType)).Inc()

	if owner != nil {
		sessionID, err := t.remote.InsertFocusSession(ctx, *owner, now, t.sessionType)
		if err != nil {
			slog.Warn("Focus session insert failed, running locally only",
				"session_type", t.sessionType, "error", err)
		} else {
			t.mu.Lock()
			t.sessionID = &sessionID
			t.mu.Unlock()
		}
	}

	return nil
}

// Tick advances the countdown. It only has effect while RUNNING: remaining
// time is recomputed from the wall clock, a tick event is emitted, and when
// the countdown reaches zero the timer completes exactly once.
func (t *Timer) Tick() {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return
	}

	remaining := t.remainingLocked(t.clock.Now())
	if remaining > 0 {
		t.mu.Unlock()
		if t.events != nil {
			t.events.Publish(domain.Event{
				Type: domain.EventFocusTick,
				Payload: map[string]any{
					"session_type":      t.sessionType,
					"remaining_seconds": int(remaining / time.Second),
				},
			})
		}
		return
	}

	// Countdown hit zero: RUNNING -> COMPLETED.
	t.state = StateCompleted
	sessionID := t.sessionID
	t.mu.Unlock()

	t.complete(sessionID)
}

// complete emits the completion signal and persists the session end. The
// persisted duration is the full configured duration, regardless of pauses.
func (t *Timer) complete(sessionID *uuid.UUID) {
	durationMinutes := int(t.total / time.Minute)
	metrics.FocusSessionsCompletedTotal.WithLabelValues(string(t.sessionType)).Inc()

	if t.events != nil {
		t.events.Publish(domain.Event{
			Type: domain.EventFocusCompleted,
			Payload: map[string]any{
				"session_type":     t.sessionType,
				"duration_minutes": durationMinutes,
			},
		})
	}

	if sessionID == nil {
		return
	}

	endedAt := t.clock.Now().UTC()
	t.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := t.remote.EndFocusSession(ctx, *sessionID, endedAt, durationMinutes); err != nil {
			slog.Error("Focus session end write failed; session is complete regardless",
				"session_id", sessionID.String(), "error", err)
		}
	})
}

// Pause transitions RUNNING -> PAUSED, freezing the remaining time.
// No-op in any other state.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return
	}
	t.elapsed += t.clock.Now().Sub(t.runStarted)
	t.state = StatePaused
}

// Resume transitions PAUSED -> RUNNING. No-op in any other state.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePaused {
		return
	}
	t.runStarted = t.clock.Now()
	t.state = StateRunning
}

// Cancel transitions RUNNING|PAUSED -> CANCELLED. The persisted session, if
// any, keeps a null ended_at so aggregation never counts it.
func (t *Timer) Cancel() {
	t.mu.Lock()
	if t.state != StateRunning && t.state != StatePaused {
		t.mu.Unlock()
		return
	}
	t.state = StateCancelled
	t.mu.Unlock()

	metrics.FocusSessionsCancelledTotal.WithLabelValues(string(t.sessionType)).Inc()
	if t.events != nil {
		t.events.Publish(domain.Event{
			Type:    domain.EventFocusCancelled,
			Payload: map[string]any{"session_type": t.sessionType},
		})
	}
}

// Run drives the timer from a one-second tick source until the session
// reaches a terminal state or ctx is cancelled.
func (t *Timer) Run(ctx context.Context) {
	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			t.Tick()
			if t.State().Terminal() {
				return
			}
		}
	}
}

// Wait blocks until the in-flight persistence write, if any, has finished.
func (t *Timer) Wait() {
	t.wg.Wait()
}
