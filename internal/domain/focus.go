package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionType selects a focus session preset.
type SessionType string

const (
	SessionPomodoro SessionType = "pomodoro"
	SessionDeep     SessionType = "deep"
	SessionCustom   SessionType = "custom"
)

// SessionSpec is one entry of the fixed focus session catalog.
type SessionSpec struct {
	Label    string
	Duration time.Duration
}

// SessionCatalog maps each session type to its configured duration.
var SessionCatalog = map[SessionType]SessionSpec{
	SessionPomodoro: {Label: "Pomodoro", Duration: 25 * time.Minute},
	SessionDeep:     {Label: "Deep Work", Duration: 90 * time.Minute},
	SessionCustom:   {Label: "Custom", Duration: 30 * time.Minute},
}

// Spec returns the catalog entry for t, falling back to pomodoro for
// unknown types, mirroring the behaviour of the launcher UI.
func (t SessionType) Spec() SessionSpec {
	if spec, ok := SessionCatalog[t]; ok {
		return spec
	}
	return SessionCatalog[SessionPomodoro]
}

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	_, ok := SessionCatalog[t]
	return ok
}

// FocusSession is a persisted timed work block. EndedAt and DurationMinutes
// are set together, at most once; a cancelled session is never ended.
type FocusSession struct {
	ID              uuid.UUID
	Owner           uuid.UUID
	Type            SessionType
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationMinutes *int
}
