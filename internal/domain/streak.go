package domain

import (
	"time"

	"github.com/google/uuid"
)

// Streak is the derived per-day usage row, unique on (Owner, Date).
// Date is a UTC calendar day at midnight.
type Streak struct {
	ID                     uuid.UUID
	Owner                  uuid.UUID
	Date                   time.Time
	TotalScreenTimeMinutes int
	GoalMet                bool
}
