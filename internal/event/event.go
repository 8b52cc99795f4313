// Package event is an in-process publish/subscribe bus for meeting lifecycle
// notifications. Publishers depend only on the Publish method, so the tracker
// never knows who listens.
package event

import "time"

// Event is implemented by everything published on the bus.
type Event interface {
	// EventType identifies the event as "category.action", e.g. "meeting.started".
	EventType() string
	Timestamp() time.Time
}

// Base carries the common Event fields. Embed it in concrete event types.
type Base struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// NewBase returns a Base stamped with at. Callers pass their clock's time
// so events stay deterministic under a fake clock.
func NewBase(eventType string, at time.Time) Base {
	return Base{Type: eventType, At: at}
}

func (b Base) EventType() string    { return b.Type }
func (b Base) Timestamp() time.Time { return b.At }
