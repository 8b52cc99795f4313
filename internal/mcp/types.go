package mcp

import (
	"time"

	"github.com/rpggio/worklog/internal/domain/activity"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/domain/rule"
)

type ConfirmMeetingEndParams struct {
	GUID        string `json:"guid"`
	Description string `json:"description,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
}

type EndMeetingManuallyParams struct {
	GUID        string `json:"guid"`
	Description string `json:"description,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
}

type PostponeCheckParams struct {
	GUID  string `json:"guid"`
	Until string `json:"until"`
}

type ListEndedMeetingsParams struct {
	Since  string `json:"since,omitempty"`
	Until  string `json:"until,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type CreateRuleParams struct {
	Name               string                  `json:"name"`
	Priority           int                     `json:"priority,omitempty"`
	Criteria           rule.Criteria           `json:"criteria"`
	ProcessNamePattern *rule.PatternDefinition `json:"process_name_pattern,omitempty"`
	WindowTitlePattern *rule.PatternDefinition `json:"window_title_pattern,omitempty"`
}

type DeleteRuleParams struct {
	ID string `json:"id"`
}

type GetRecentActivityParams struct {
	MeetingID string `json:"meeting_id,omitempty"`
	Type      string `json:"type,omitempty"`
	Since     string `json:"since,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// MeetingStateResponse is the tracked meeting slot as seen by a client.
type MeetingStateResponse struct {
	Status       string                     `json:"status"`
	Ongoing      *meeting.StartedMeeting    `json:"ongoing,omitempty"`
	PendingEnd   *meeting.PendingEndMeeting `json:"pending_end,omitempty"`
	Postponement *meeting.Postponement      `json:"postponement,omitempty"`
	MatchedRule  string                     `json:"matched_rule_id,omitempty"`
}

const (
	statusIdle       = "idle"
	statusOngoing    = "ongoing"
	statusPendingEnd = "pending_end"
)

type EndedMeetingResponse struct {
	GUID            string    `json:"guid"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	DurationSeconds int64     `json:"duration_seconds"`
}

type RuleResponse struct {
	ID                 string                  `json:"id"`
	Name               string                  `json:"name"`
	Priority           int                     `json:"priority"`
	Criteria           rule.Criteria           `json:"criteria"`
	ProcessNamePattern *rule.PatternDefinition `json:"process_name_pattern,omitempty"`
	WindowTitlePattern *rule.PatternDefinition `json:"window_title_pattern,omitempty"`
	MatchCount         int                     `json:"match_count"`
	LastMatchedAt      *time.Time              `json:"last_matched_at,omitempty"`
}

type ActivityEntryResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	MeetingID string                `json:"meeting_id,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}

type DeleteRuleResponse struct {
	Deleted bool `json:"deleted"`
}

func newStateResponse(s meeting.State) MeetingStateResponse {
	resp := MeetingStateResponse{
		Status:       statusIdle,
		Ongoing:      s.Ongoing,
		PendingEnd:   s.PendingEnd,
		Postponement: s.Postponement,
	}
	switch {
	case s.Ongoing != nil:
		resp.Status = statusOngoing
		resp.MatchedRule = s.MatchedRuleID.String()
	case s.PendingEnd != nil:
		resp.Status = statusPendingEnd
	}
	return resp
}

func newEndedMeetingResponse(m meeting.EndedMeeting) EndedMeetingResponse {
	return EndedMeetingResponse{
		GUID:            m.GUID.String(),
		Title:           m.Title,
		Description:     m.Description(),
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		DurationSeconds: int64(m.Duration().Seconds()),
	}
}

func newRuleResponse(r rule.Rule) RuleResponse {
	return RuleResponse{
		ID:                 r.ID.String(),
		Name:               r.Name,
		Priority:           r.Priority,
		Criteria:           r.Criteria,
		ProcessNamePattern: r.ProcessNamePattern,
		WindowTitlePattern: r.WindowTitlePattern,
		MatchCount:         r.MatchCount,
		LastMatchedAt:      r.LastMatchedAt,
	}
}
