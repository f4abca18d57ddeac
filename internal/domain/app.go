package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a monitored application.
type Category string

const (
	CategoryAllowed    Category = "allowed"
	CategoryRestricted Category = "restricted"
	CategoryBlocked    Category = "blocked"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAllowed, CategoryRestricted, CategoryBlocked:
		return true
	}
	return false
}

// App is a monitored application owned by a user. (Owner, PackageName) is
// unique; ProfileID nil means the app is visible under every profile.
type App struct {
	ID                uuid.UUID
	Owner             uuid.UUID
	Name              string
	PackageName       string
	Category          Category
	DailyLimitMinutes *int
	ProfileID         *uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AppChange bundles the caller-settable fields of an app for upsert.
// A re-add of an existing package name updates category/limit in place.
type AppChange struct {
	Name              string
	PackageName       string
	Category          Category
	DailyLimitMinutes *int
	ProfileID         *uuid.UUID
}

// VisibleTo reports whether the app surfaces under the given active profile.
// Restricted apps always surface since they require the intention gate.
func (a App) VisibleTo(profile *uuid.UUID) bool {
	if a.Category == CategoryRestricted {
		return true
	}
	if a.ProfileID == nil || profile == nil {
		return true
	}
	return *a.ProfileID == *profile
}
