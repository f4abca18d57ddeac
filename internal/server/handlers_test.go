package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ufhano/Minimalist-App/internal/app"
	"github.com/Ufhano/Minimalist-App/internal/catalog"
	"github.com/Ufhano/Minimalist-App/internal/config"
	"github.com/Ufhano/Minimalist-App/internal/domain"
	"github.com/Ufhano/Minimalist-App/internal/events"
	"github.com/Ufhano/Minimalist-App/internal/recorder"
	"github.com/Ufhano/Minimalist-App/internal/settings"
	"github.com/Ufhano/Minimalist-App/internal/stats"
	"github.com/Ufhano/Minimalist-App/internal/websocket"
)

type stubRemote struct {
	mu   sync.Mutex
	apps []domain.App
	logs []domain.UsageLog
}

func (m *stubRemote) ListApps(_ context.Context, _ uuid.UUID, _ *uuid.UUID) ([]domain.App, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apps, nil
}

func (m *stubRemote) UpsertApp(_ context.Context, owner uuid.UUID, change domain.AppChange) (*domain.App, error) {
	return &domain.App{ID: uuid.New(), Owner: owner, Name: change.Name, PackageName: change.PackageName, Category: change.Category, DailyLimitMinutes: change.DailyLimitMinutes}, nil
}

func (m *stubRemote) DeleteApp(_ context.Context, _ uuid.UUID) error { return nil }

func (m *stubRemote) InsertUsageLog(_ context.Context, _ uuid.UUID, _ domain.UsageEntry) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *stubRemote) CloseUsageLog(_ context.Context, _ uuid.UUID, _ time.Time, _ int, _ string) error {
	return nil
}

func (m *stubRemote) ListUsageLogs(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]domain.UsageLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logs, nil
}

func (m *stubRemote) InsertFocusSession(_ context.Context, _ uuid.UUID, _ time.Time, _ domain.SessionType) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (m *stubRemote) EndFocusSession(_ context.Context, _ uuid.UUID, _ time.Time, _ int) error {
	return nil
}

func (m *stubRemote) ListStreaks(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]domain.Streak, error) {
	return nil, nil
}

func (m *stubRemote) UpsertStreak(_ context.Context, owner uuid.UUID, date time.Time, totalMinutes int, goalMet bool) (*domain.Streak, error) {
	return &domain.Streak{ID: uuid.New(), Owner: owner, Date: date, TotalScreenTimeMinutes: totalMinutes, GoalMet: goalMet}, nil
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type okPinger struct{}

func (okPinger) Ping(_ context.Context) error { return nil }

func newTestServer(t *testing.T, remote *stubRemote) *Server {
	t.Helper()
	clock := clockwork.NewFakeClock()
	bus := events.NewBus()
	local := &memoryCache{data: make(map[string][]byte)}

	appSvc := app.NewService(
		catalog.New(remote, local, bus),
		recorder.New(remote, clock, bus),
		stats.NewService(remote, clock, settings.DefaultDailyGoalMinutes),
		settings.NewStore(local, bus),
		remote,
		bus,
		clock,
	)
	hub := websocket.NewHub(bus.Subscribe)

	cfg := &config.Config{AppEnv: "test", Port: "0", DailyGoalMinutes: settings.DefaultDailyGoalMinutes}
	srv := NewServer(cfg, appSvc, hub, okPinger{}, okPinger{})

	t.Cleanup(func() {
		appSvc.Stop()
		hub.Stop()
		bus.Close()
	})
	return srv
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func signIn(t *testing.T, srv *Server) uuid.UUID {
	t.Helper()
	owner := uuid.New()
	rec := doRequest(srv, http.MethodPost, "/api/owner", `{"owner_id":"`+owner.String()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	return owner
}

func TestHandleLiveness(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodGet, "/health/live", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleReadiness(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodGet, "/health/ready", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleSetOwner_InvalidID(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodPost, "/api/owner", `{"owner_id":"not-a-uuid"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListApps(t *testing.T) {
	remote := &stubRemote{apps: []domain.App{
		{ID: uuid.New(), Name: "Mail", PackageName: "com.example.mail", Category: domain.CategoryAllowed},
	}}
	srv := newTestServer(t, remote)
	signIn(t, srv)

	rec := doRequest(srv, http.MethodGet, "/api/apps", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Apps  []appResponse `json:"apps"`
		Stale bool          `json:"stale"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Apps, 1)
	assert.False(t, resp.Stale)
}

func TestHandleUpsertApp(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})
	signIn(t, srv)

	rec := doRequest(srv, http.MethodPost, "/api/apps",
		`{"name":"Videos","package_name":"com.example.videos","category":"restricted","daily_limit_minutes":30}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp appResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "restricted", resp.Category)
	require.NotNil(t, resp.DailyLimitMinutes)
	assert.Equal(t, 30, *resp.DailyLimitMinutes)
}

func TestHandleUpsertApp_Anonymous(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodPost, "/api/apps",
		`{"name":"Videos","package_name":"com.example.videos","category":"allowed"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleUpsertApp_BadCategory(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})
	signIn(t, srv)

	rec := doRequest(srv, http.MethodPost, "/api/apps",
		`{"name":"Videos","package_name":"com.example.videos","category":"sometimes"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRemoveApp_InvalidID(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})
	signIn(t, srv)

	rec := doRequest(srv, http.MethodDelete, "/api/apps/garbage", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsageLifecycle(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})
	signIn(t, srv)

	rec := doRequest(srv, http.MethodPost, "/api/usage",
		`{"app_name":"Messages","package_name":"com.example.messages","intention":"reply to mom"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var opened struct {
		HandleID  uuid.UUID `json:"handle_id"`
		Persisted bool      `json:"persisted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))
	assert.True(t, opened.Persisted)

	rec = doRequest(srv, http.MethodPost, "/api/usage/"+opened.HandleID.String()+"/close", `{"reflection":"done"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/usage/"+opened.HandleID.String()+"/close", `{"reflection":"again"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "a handle closes only once")
}

func TestHandleOpenUsage_RequiresPackageName(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodPost, "/api/usage", `{"app_name":"Messages","intention":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFocusLifecycle(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodGet, "/api/focus", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/focus", `{"type":"pomodoro"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"running"`)
	assert.Contains(t, rec.Body.String(), `"remaining_seconds":1500`)

	rec = doRequest(srv, http.MethodPost, "/api/focus", `{"type":"deep"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "only one focus session runs at a time")

	rec = doRequest(srv, http.MethodPost, "/api/focus/pause", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/focus", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"paused"`)

	rec = doRequest(srv, http.MethodPost, "/api/focus/resume", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/api/focus/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/focus", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStartFocus_UnknownType(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodPost, "/api/focus", `{"type":"nap"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSummary_Anonymous(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodGet, "/api/stats/summary", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var summary stats.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Len(t, summary.WeeklySeries, 7)
	assert.Equal(t, 0, summary.TodayMinutes)
}

func TestHandleRollup_Anonymous(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodPost, "/api/stats/rollup", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"theme":"light"`)

	rec = doRequest(srv, http.MethodPut, "/api/settings",
		`{"theme":"dark","daily_goal_minutes":90,"dnd_start":"22:00","dnd_end":"07:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"theme":"dark"`)
	assert.Contains(t, rec.Body.String(), `"daily_goal_minutes":90`)
}

func TestSettings_RejectsBadTheme(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodPut, "/api/settings",
		`{"theme":"sepia","daily_goal_minutes":90,"dnd_start":"22:00","dnd_end":"07:00"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListUsage_BadTimestamp(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodGet, "/api/usage?from=yesterday", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(t, &stubRemote{})

	rec := doRequest(srv, http.MethodGet, "/version", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
}
