package domain

import (
	"time"

	"github.com/google/uuid"
)

// UsageLog records one intent-to-open-an-app event. AppID is a weak
// reference: the app may be deleted later, so the log keeps a denormalized
// name/package snapshot captured at creation. ClosedAt, DurationSeconds and
// Reflection stay nil until the log is closed and are set together, once.
type UsageLog struct {
	ID              uuid.UUID
	Owner           uuid.UUID
	AppID           *uuid.UUID
	AppName         string
	PackageName     string
	OpenedAt        time.Time
	ClosedAt        *time.Time
	Intention       string
	Reflection      *string
	DurationSeconds *int
}

// Closed reports whether the log has been closed.
func (l UsageLog) Closed() bool { return l.ClosedAt != nil }

// UsageEntry bundles the fields captured when an app is opened.
type UsageEntry struct {
	AppID       *uuid.UUID
	AppName     string
	PackageName string
	OpenedAt    time.Time
	Intention   string
}
