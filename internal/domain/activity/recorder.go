package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/event"
)

// Subscriber is the part of the event bus the recorder needs.
type Subscriber interface {
	SubscribeAll(handler event.Handler) uint64
}

// Recorder writes an activity entry for every meeting lifecycle event.
type Recorder struct {
	service *Service
}

// NewRecorder creates a recorder that logs through service.
func NewRecorder(service *Service) *Recorder {
	return &Recorder{service: service}
}

// Attach subscribes the recorder to every event on bus.
func (r *Recorder) Attach(bus Subscriber) uint64 {
	return bus.SubscribeAll(r.Handle)
}

// Handle records e. Events that are not meeting lifecycle events are
// ignored. Failures are logged; they never reach the publisher.
func (r *Recorder) Handle(ctx context.Context, e event.Event) {
	entry, ok := EntryFor(e)
	if !ok {
		return
	}
	if err := r.service.LogActivity(ctx, entry); err != nil {
		r.service.logger.Error("recording activity", "event", e.EventType(), "error", err)
	}
}

// EntryFor converts a meeting lifecycle event into an activity entry.
func EntryFor(e event.Event) (*ActivityEntry, bool) {
	var (
		meetingID string
		typ       ActivityType
		summary   string
	)
	switch ev := e.(type) {
	case meeting.StartedEvent:
		meetingID = ev.Meeting.GUID.String()
		typ = TypeMeetingStarted
		summary = fmt.Sprintf("Meeting started: %s", ev.Meeting.Title)
	case meeting.EndConfirmationRequestedEvent:
		meetingID = ev.Pending.Meeting.GUID.String()
		typ = TypeMeetingEndRequested
		summary = fmt.Sprintf("Meeting no longer detected: %s", ev.Pending.Meeting.Title)
	case meeting.EndedEvent:
		meetingID = ev.Meeting.GUID.String()
		typ = TypeMeetingEnded
		summary = fmt.Sprintf("Meeting ended (%s): %s", ev.Reason, ev.Meeting.Description())
	case meeting.CheckPostponedEvent:
		meetingID = ev.Postponement.MeetingGUID.String()
		typ = TypeMeetingCheckPostponed
		summary = fmt.Sprintf("End check postponed until %s", ev.Postponement.PostponedUntil.Format("15:04"))
	default:
		return nil, false
	}

	details, err := json.Marshal(e)
	if err != nil {
		details = nil
	}
	return &ActivityEntry{
		MeetingID:    &meetingID,
		ActivityType: typ,
		Summary:      summary,
		Details:      string(details),
		CreatedAt:    e.Timestamp(),
	}, true
}
