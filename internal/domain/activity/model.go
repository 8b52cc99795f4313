package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeMeetingStarted        ActivityType = "meeting_started"
	TypeMeetingEndRequested   ActivityType = "meeting_end_requested"
	TypeMeetingEnded          ActivityType = "meeting_ended"
	TypeMeetingCheckPostponed ActivityType = "meeting_check_postponed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	MeetingID    *string      `json:"meeting_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
