package meeting

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/event"
)

// DiscoveryStrategy decides whether a meeting is in progress.
//
// previous and previousRuleID describe the meeting currently tracked as
// ongoing (nil and uuid.Nil when there is none). Implementations return
// previous unchanged when the same rule still matches, a new meeting when a
// different match is found, or nil and uuid.Nil when nothing matches.
type DiscoveryStrategy interface {
	RecognizeMeeting(ctx context.Context, previous *StartedMeeting, previousRuleID uuid.UUID) (*StartedMeeting, uuid.UUID, error)
}

// Repository persists ended meetings. List returns the most recently
// ended first.
type Repository interface {
	Save(ctx context.Context, m *EndedMeeting) error
	List(ctx context.Context, opts ListOptions) ([]EndedMeeting, error)
}

// EventPublisher delivers lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, e event.Event) error
}
