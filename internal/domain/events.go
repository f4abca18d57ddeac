package domain

import "time"

// EventType identifies a state-change event emitted by the core.
type EventType string

const (
	EventCatalogUpdated EventType = "catalog_updated"
	EventUsageOpened    EventType = "usage_opened"
	EventUsageClosed    EventType = "usage_closed"
	EventFocusTick      EventType = "focus_tick"
	EventFocusCompleted EventType = "focus_completed"
	EventFocusCancelled EventType = "focus_cancelled"
	EventSettingsSaved  EventType = "settings_saved"
)

// Event is a plain state-change notification, independent of any rendering
// framework. Payload is event-specific and must be JSON-serializable.
type Event struct {
	Type    EventType `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

// EventPublisher delivers events to registered observers. Publishing must
// never block the caller.
type EventPublisher interface {
	Publish(event Event)
}
