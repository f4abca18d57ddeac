package settings

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
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

type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *capturingPublisher) Publish(event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func TestLoad_DefaultsOnFirstLaunch(t *testing.T) {
	store := NewStore(newMemoryCache(), nil)

	settings := store.Load(context.Background())

	assert.Equal(t, ThemeLight, settings.Theme)
	assert.Equal(t, DefaultDailyGoalMinutes, settings.DailyGoalMinutes)
	assert.Equal(t, "22:00", settings.DndStart)
	assert.Equal(t, "07:00", settings.DndEnd)
	assert.False(t, settings.OnboardingComplete)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	pub := &capturingPublisher{}
	store := NewStore(newMemoryCache(), pub)

	saved := Settings{
		Theme:              ThemeDark,
		MotivationAnchor:   "more time with the kids",
		OnboardingComplete: true,
		DndEnabled:         true,
		DndStart:           "21:30",
		DndEnd:             "06:45",
		DailyGoalMinutes:   90,
	}
	require.NoError(t, store.Save(context.Background(), saved))

	loaded := store.Load(context.Background())
	assert.Equal(t, saved, loaded)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.EventSettingsSaved, pub.events[0].Type)
}

func TestLoad_MigratesRetiredGrayscaleTheme(t *testing.T) {
	cache := newMemoryCache()
	raw := []byte(`{"theme":"grayscale","daily_goal_minutes":60,"dnd_start":"22:00","dnd_end":"07:00"}`)
	require.NoError(t, cache.Set(context.Background(), cacheKey, raw))
	store := NewStore(cache, nil)

	settings := store.Load(context.Background())

	assert.Equal(t, ThemeLight, settings.Theme)
	assert.Equal(t, 60, settings.DailyGoalMinutes)
}

func TestLoad_CorruptRecordFallsBackToDefaults(t *testing.T) {
	cache := newMemoryCache()
	require.NoError(t, cache.Set(context.Background(), cacheKey, []byte("{oops")))
	store := NewStore(cache, nil)

	settings := store.Load(context.Background())

	assert.Equal(t, Defaults(), settings)
}

func TestSave_Validation(t *testing.T) {
	store := NewStore(newMemoryCache(), nil)

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"unknown theme", func(s *Settings) { s.Theme = "sepia" }},
		{"retired theme rejected on save", func(s *Settings) { s.Theme = themeGrayscale }},
		{"zero goal", func(s *Settings) { s.DailyGoalMinutes = 0 }},
		{"bad dnd start", func(s *Settings) { s.DndStart = "25:00" }},
		{"bad dnd end", func(s *Settings) { s.DndEnd = "7pm" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := Defaults()
			tt.mutate(&settings)
			err := store.Save(context.Background(), settings)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
