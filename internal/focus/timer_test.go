package focus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

type mockFocusRemote struct {
	domain.RemoteStore

	mu        sync.Mutex
	insertErr error
	sessionID uuid.UUID

	inserts      int
	ends         int
	endedMinutes int
}

func (m *mockFocusRemote) InsertFocusSession(_ context.Context, _ uuid.UUID, _ time.Time, _ domain.SessionType) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return uuid.Nil, m.insertErr
	}
	m.inserts++
	return m.sessionID, nil
}

func (m *mockFocusRemote) EndFocusSession(_ context.Context, _ uuid.UUID, _ time.Time, durationMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ends++
	m.endedMinutes = durationMinutes
	return nil
}

func (m *mockFocusRemote) endCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ends
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *capturingPublisher) Publish(event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturingPublisher) byType(eventType domain.EventType) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func TestTimer_StartIsExclusive(t *testing.T) {
	timer := NewTimer(domain.SessionPomodoro, &mockFocusRemote{sessionID: uuid.New()}, clockwork.NewFakeClock(), nil)
	owner := uuid.New()

	require.NoError(t, timer.Start(context.Background(), &owner))
	err := timer.Start(context.Background(), &owner)

	assert.ErrorIs(t, err, domain.ErrSessionRunning)
}

func TestTimer_CountsDownAndCompletesOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	remote := &mockFocusRemote{sessionID: uuid.New()}
	pub := &capturingPublisher{}
	timer := NewTimer(domain.SessionPomodoro, remote, clock, pub)
	owner := uuid.New()

	require.NoError(t, timer.Start(context.Background(), &owner))
	assert.Equal(t, StateRunning, timer.State())
	assert.Equal(t, 25*time.Minute, timer.Remaining())

	clock.Advance(10 * time.Minute)
	timer.Tick()
	assert.Equal(t, 15*time.Minute, timer.Remaining())
	assert.Len(t, pub.byType(domain.EventFocusTick), 1)

	clock.Advance(15 * time.Minute)
	timer.Tick()
	timer.Tick() // second tick in terminal state is a no-op

	assert.Equal(t, StateCompleted, timer.State())
	assert.Equal(t, time.Duration(0), timer.Remaining())
	assert.Len(t, pub.byType(domain.EventFocusCompleted), 1)

	timer.Wait()
	assert.Equal(t, 1, remote.endCount())
	assert.Equal(t, 25, remote.endedMinutes)
}

func TestTimer_PauseFreezesRemaining(t *testing.T) {
	clock := clockwork.NewFakeClock()
	remote := &mockFocusRemote{sessionID: uuid.New()}
	timer := NewTimer(domain.SessionDeep, remote, clock, nil)
	owner := uuid.New()

	require.NoError(t, timer.Start(context.Background(), &owner))

	clock.Advance(30 * time.Minute)
	timer.Pause()
	assert.Equal(t, StatePaused, timer.State())

	// Wall clock keeps moving while paused; remaining must not.
	clock.Advance(4 * time.Hour)
	timer.Tick()
	assert.Equal(t, 60*time.Minute, timer.Remaining())
	assert.Equal(t, StatePaused, timer.State())

	timer.Resume()
	clock.Advance(60 * time.Minute)
	timer.Tick()

	assert.Equal(t, StateCompleted, timer.State())
	timer.Wait()
	assert.Equal(t, 90, remote.endedMinutes, "persisted duration is the full configured length")
}

func TestTimer_SuspensionReconcilesOnSingleTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	remote := &mockFocusRemote{sessionID: uuid.New()}
	timer := NewTimer(domain.SessionPomodoro, remote, clock, nil)
	owner := uuid.New()

	require.NoError(t, timer.Start(context.Background(), &owner))

	// Tick source suspended for two hours; one tick after resume must
	// complete the session instead of counting discrete periods.
	clock.Advance(2 * time.Hour)
	timer.Tick()

	assert.Equal(t, StateCompleted, timer.State())
	timer.Wait()
	assert.Equal(t, 1, remote.endCount())
}

func TestTimer_CancelNeverWritesEnd(t *testing.T) {
	clock := clockwork.NewFakeClock()
	remote := &mockFocusRemote{sessionID: uuid.New()}
	pub := &capturingPublisher{}
	timer := NewTimer(domain.SessionCustom, remote, clock, pub)
	owner := uuid.New()

	require.NoError(t, timer.Start(context.Background(), &owner))
	clock.Advance(5 * time.Minute)

	timer.Cancel()
	timer.Cancel() // repeated cancel is a no-op

	assert.Equal(t, StateCancelled, timer.State())
	assert.Len(t, pub.byType(domain.EventFocusCancelled), 1)
	timer.Wait()
	assert.Equal(t, 0, remote.endCount(), "a cancelled session keeps a null ended_at")
}

func TestTimer_PauseResumeWrongStateNoOps(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := NewTimer(domain.SessionPomodoro, &mockFocusRemote{sessionID: uuid.New()}, clock, nil)

	timer.Pause()
	assert.Equal(t, StateIdle, timer.State())
	timer.Resume()
	assert.Equal(t, StateIdle, timer.State())
	timer.Cancel()
	assert.Equal(t, StateIdle, timer.State())
}

func TestTimer_AnonymousSessionStaysLocal(t *testing.T) {
	clock := clockwork.NewFakeClock()
	remote := &mockFocusRemote{sessionID: uuid.New()}
	timer := NewTimer(domain.SessionPomodoro, remote, clock, nil)

	require.NoError(t, timer.Start(context.Background(), nil))
	assert.Nil(t, timer.SessionID())

	clock.Advance(25 * time.Minute)
	timer.Tick()

	assert.Equal(t, StateCompleted, timer.State())
	timer.Wait()
	assert.Equal(t, 0, remote.inserts)
	assert.Equal(t, 0, remote.endCount())
}

func TestTimer_InsertFailureDowngradesToLocal(t *testing.T) {
	clock := clockwork.NewFakeClock()
	remote := &mockFocusRemote{insertErr: errors.New("connection refused")}
	timer := NewTimer(domain.SessionPomodoro, remote, clock, nil)
	owner := uuid.New()

	require.NoError(t, timer.Start(context.Background(), &owner), "a remote failure must not block the start")
	assert.Nil(t, timer.SessionID())
	assert.Equal(t, StateRunning, timer.State())
}

func TestTimer_RunDrivesTicksToCompletion(t *testing.T) {
	clock := clockwork.NewFakeClock()
	remote := &mockFocusRemote{sessionID: uuid.New()}
	timer := NewTimer(domain.SessionPomodoro, remote, clock, nil)
	owner := uuid.New()

	require.NoError(t, timer.Start(context.Background(), &owner))

	done := make(chan struct{})
	go func() {
		timer.Run(context.Background())
		close(done)
	}()

	// Let Run set up its ticker before advancing.
	clock.BlockUntil(1)
	clock.Advance(25 * time.Minute)
	clock.Advance(time.Second)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after completion")
	}
	assert.Equal(t, StateCompleted, timer.State())
}
