// Package settings persists user preferences in the local cache as one
// serialized record. There is no ambient global: components receive the
// values they need at construction, and mutations go through an explicit
// Save.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

const cacheKey = "user_settings"

// DefaultDailyGoalMinutes is the screen-time budget applied before the user
// picks their own.
const DefaultDailyGoalMinutes = 120

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	// themeGrayscale is a retired value still present in old persisted
	// records; Load migrates it to light.
	themeGrayscale Theme = "grayscale"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Settings is the full preference record.
type Settings struct {
	Theme                  Theme  `json:"theme"`
	MotivationAnchor       string `json:"motivation_anchor"`
	OnboardingComplete     bool   `json:"onboarding_complete"`
	HideNotificationBadges bool   `json:"hide_notification_badges"`
	DndEnabled             bool   `json:"dnd_enabled"`
	DndStart               string `json:"dnd_start"`
	DndEnd                 string `json:"dnd_end"`
	DailyGoalMinutes       int    `json:"daily_goal_minutes"`
}

// Defaults returns the settings applied on first launch.
func Defaults() Settings {
	return Settings{
		Theme:            ThemeLight,
		DndStart:         "22:00",
		DndEnd:           "07:00",
		DailyGoalMinutes: DefaultDailyGoalMinutes,
	}
}

// Validate checks a settings record before it is saved.
func (s Settings) Validate() error {
	if !s.Theme.Valid() {
		return fmt.Errorf("%w: unknown theme %q", domain.ErrValidation, s.Theme)
	}
	if s.DailyGoalMinutes <= 0 {
		return fmt.Errorf("%w: daily goal must be positive", domain.ErrValidation)
	}
	if !clockPattern.MatchString(s.DndStart) {
		return fmt.Errorf("%w: dnd start must be HH:MM", domain.ErrValidation)
	}
	if !clockPattern.MatchString(s.DndEnd) {
		return fmt.Errorf("%w: dnd end must be HH:MM", domain.ErrValidation)
	}
	return nil
}

// Store loads and saves the settings record.
type Store struct {
	local  domain.LocalCache
	events domain.EventPublisher
}

func NewStore(local domain.LocalCache, events domain.EventPublisher) *Store {
	return &Store{local: local, events: events}
}

// Load returns the persisted settings, falling back to defaults when no
// record exists or the record cannot be decoded. Legacy values are migrated
// in place: the retired grayscale theme becomes light, and a missing daily
// goal takes the default.
func (s *Store) Load(ctx context.Context) Settings {
	data, err := s.local.Get(ctx, cacheKey)
	if err != nil {
		if err != domain.ErrCacheMiss {
			slog.Warn("Failed to load settings, using defaults", "error", err)
		}
		return Defaults()
	}

	settings := Defaults()
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Warn("Discarding corrupt settings record", "error", err)
		return Defaults()
	}

	if settings.Theme == themeGrayscale || !settings.Theme.Valid() {
		settings.Theme = ThemeLight
	}
	if settings.DailyGoalMinutes <= 0 {
		settings.DailyGoalMinutes = DefaultDailyGoalMinutes
	}
	return settings
}

// Save validates and persists the record, then announces the change.
func (s *Store) Save(ctx context.Context, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.local.Set(ctx, cacheKey, data); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}

	if s.events != nil {
		s.events.Publish(domain.Event{
			Type:    domain.EventSettingsSaved,
			Payload: map[string]any{"theme": settings.Theme, "daily_goal_minutes": settings.DailyGoalMinutes},
		})
	}
	return nil
}
