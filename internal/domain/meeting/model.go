package meeting

import (
	"time"

	"github.com/google/uuid"
)

// StartedMeeting is a detected, in-progress meeting. It is never mutated
// after creation; continuity keeps the same value across polls.
type StartedMeeting struct {
	GUID      uuid.UUID `json:"guid"`
	StartDate time.Time `json:"start_date"`
	Title     string    `json:"title"`
}

// PendingEndMeeting is a meeting that stopped being detected and is waiting
// for confirmation or the grace period to elapse.
type PendingEndMeeting struct {
	Meeting    StartedMeeting `json:"meeting"`
	DetectedAt time.Time      `json:"detected_at"`
	// RuleID is the rule that last matched the meeting, restored when a
	// postponement returns the meeting to ongoing.
	RuleID uuid.UUID `json:"rule_id"`
}

// EndedMeeting is a finished meeting ready to be logged.
type EndedMeeting struct {
	GUID              uuid.UUID `json:"guid"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Title             string    `json:"title"`
	CustomDescription string    `json:"custom_description,omitempty"`
}

// Description returns the user's description when given, else the title.
func (m EndedMeeting) Description() string {
	if m.CustomDescription != "" {
		return m.CustomDescription
	}
	return m.Title
}

// Duration is the time between start and end.
func (m EndedMeeting) Duration() time.Duration {
	return m.EndDate.Sub(m.StartDate)
}

func newEndedMeeting(m StartedMeeting, end time.Time, description string) EndedMeeting {
	return EndedMeeting{
		GUID:              m.GUID,
		StartDate:         m.StartDate,
		EndDate:           end,
		Title:             m.Title,
		CustomDescription: description,
	}
}

// Postponement suspends detection for a meeting until PostponedUntil.
type Postponement struct {
	MeetingGUID    uuid.UUID `json:"meeting_guid"`
	PostponedUntil time.Time `json:"postponed_until"`
}

// EndReason records which transition ended a meeting.
type EndReason string

const (
	EndReasonAutoConfirmed EndReason = "auto_confirmed"
	EndReasonConfirmed     EndReason = "confirmed"
	EndReasonManual        EndReason = "manual"
	EndReasonReplaced      EndReason = "replaced"
)

// ListOptions filters ended meetings. Zero values mean no bound.
type ListOptions struct {
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}
