// Package recorder implements the usage session recorder: the open/close
// lifecycle of one app-opening event, capturing the user's intention at
// open and reflection at close.
//
// Availability of the app the user wants to reach outranks durability of
// the log: every remote failure here is logged and swallowed, never
// surfaced, and the close write is fire-and-forget.
package recorder

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

const closeWriteTimeout = 10 * time.Second

// Descriptor identifies the app being opened. AppID may be nil for apps not
// in the catalog; name and package are snapshotted onto the log so reads
// never require a join that can dangle.
type Descriptor struct {
	AppID       *uuid.UUID
	Name        string
	PackageName string
}

// Handle tracks one logical app-open event through NONE -> OPEN -> CLOSED.
// A closed handle is terminal; a new app open always creates a new handle.
type Handle struct {
	mu sync.Mutex

	ID       uuid.UUID
	OpenedAt time.Time
	App      Descriptor

	logID  *uuid.UUID // remote usage log id; nil means local-only
	closed bool
}

// LogID returns the remote usage log id, or nil for a local-only handle.
func (h *Handle) LogID() *uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.logID
}

// Closed reports whether the handle has been closed.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Recorder opens and closes usage logs against the remote store when an
// owner is signed in, and degrades to local-only no-op handles otherwise.
type Recorder struct {
	remote domain.RemoteStore
	clock  clockwork.Clock
	events domain.EventPublisher
	wg     sync.WaitGroup
}

func New(remote domain.RemoteStore, clock clockwork.Clock, events domain.EventPublisher) *Recorder {
	return &Recorder{remote: remote, clock: clock, events: events}
}

// Open starts a usage log for one app-open event. With a signed-in owner
// the log is inserted remotely; anonymous opens return a purely local
// handle whose close is a no-op. Open never fails: a remote insert error
// downgrades the handle to local-only so the user still reaches the app.
func (r *Recorder) Open(ctx context.Context, owner *uuid.UUID, app Descriptor, intention string) *Handle {
	h := &Handle{
		ID:       uuid.New(),
		OpenedAt: r.clock.Now().UTC(),
		App:      app,
	}

	if owner == nil {
		metrics.UsageLogsOpenedTotal.WithLabelValues("local").Inc()
	} else {
		logID, err := r.remote.InsertUsageLog(ctx, *owner, domain.UsageEntry{
			AppID:       app.AppID,
			AppName:     app.Name,
			PackageName: app.PackageName,
			OpenedAt:    h.OpenedAt,
			Intention:   intention,
		})
		if err != nil {
			slog.Warn("Usage log insert failed, tracking locally only",
				"package_name", app.PackageName, "error", err)
			metrics.UsageLogsOpenedTotal.WithLabelValues("local").Inc()
			metrics.UsageWritesDroppedTotal.Inc()
		} else {
			h.logID = &logID
			metrics.UsageLogsOpenedTotal.WithLabelValues("persisted").Inc()
		}
	}

	if r.events != nil {
		r.events.Publish(domain.Event{
			Type: domain.EventUsageOpened,
			Payload: map[string]any{
				"handle_id":    h.ID,
				"app_name":     app.Name,
				"package_name": app.PackageName,
			},
		})
	}

	return h
}

// Close transitions the handle to CLOSED, computing the duration from the
// recorder's clock. The transition is local and synchronous; the remote
// write is fire-and-forget and its failure is logged, never surfaced.
// Closing an already-closed handle is a no-op.
func (r *Recorder) Close(h *Handle, reflection string) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	closedAt := r.clock.Now().UTC()
	durationSeconds := int(closedAt.Sub(h.OpenedAt) / time.Second)
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	logID := h.logID
	h.mu.Unlock()

	metrics.UsageLogsClosedTotal.Inc()
	if r.events != nil {
		r.events.Publish(domain.Event{
			Type: domain.EventUsageClosed,
			Payload: map[string]any{
				"handle_id":        h.ID,
				"duration_seconds": durationSeconds,
			},
		})
	}

	if logID == nil {
		return
	}

	r.wg.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeWriteTimeout)
		defer cancel()
		if err := r.remote.CloseUsageLog(ctx, *logID, closedAt, durationSeconds, reflection); err != nil {
			slog.Error("Usage log close write failed",
				"log_id", logID.String(), "error", err)
			metrics.UsageWritesDroppedTotal.Inc()
		}
	})
}

// Wait blocks until all in-flight close writes have finished. Used on
// shutdown and in tests.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
