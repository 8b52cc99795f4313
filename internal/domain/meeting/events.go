package meeting

import (
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/event"
)

// Lifecycle event types.
const (
	EventStarted                  = "meeting.started"
	EventEndConfirmationRequested = "meeting.end_confirmation_requested"
	EventEnded                    = "meeting.ended"
	EventCheckPostponed           = "meeting.check_postponed"
)

// StartedEvent is published when a meeting becomes the ongoing meeting.
type StartedEvent struct {
	event.Base
	Meeting StartedMeeting `json:"meeting"`
	RuleID  uuid.UUID      `json:"rule_id"`
}

// EndConfirmationRequestedEvent is published when an ongoing meeting stops
// being detected.
type EndConfirmationRequestedEvent struct {
	event.Base
	Pending PendingEndMeeting `json:"pending"`
}

// EndedEvent is published after an ended meeting has been persisted.
type EndedEvent struct {
	event.Base
	Meeting EndedMeeting `json:"meeting"`
	Reason  EndReason    `json:"reason"`
}

// CheckPostponedEvent is published when the user defers the end check.
type CheckPostponedEvent struct {
	event.Base
	Postponement Postponement `json:"postponement"`
}

func newStartedEvent(at time.Time, m StartedMeeting, ruleID uuid.UUID) StartedEvent {
	return StartedEvent{Base: event.NewBase(EventStarted, at), Meeting: m, RuleID: ruleID}
}

func newEndConfirmationRequestedEvent(at time.Time, p PendingEndMeeting) EndConfirmationRequestedEvent {
	return EndConfirmationRequestedEvent{Base: event.NewBase(EventEndConfirmationRequested, at), Pending: p}
}

func newEndedEvent(at time.Time, m EndedMeeting, reason EndReason) EndedEvent {
	return EndedEvent{Base: event.NewBase(EventEnded, at), Meeting: m, Reason: reason}
}

func newCheckPostponedEvent(at time.Time, p Postponement) CheckPostponedEvent {
	return CheckPostponedEvent{Base: event.NewBase(EventCheckPostponed, at), Postponement: p}
}
