package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/domain/activity"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/domain/rule"
)

// TrackerService defines meeting lifecycle operations needed by MCP.
type TrackerService interface {
	RecognizeActivity(ctx context.Context) error
	State() meeting.State
	ConfirmMeetingEnd(ctx context.Context, guid uuid.UUID, description string, customEndTime *time.Time) (*meeting.EndedMeeting, error)
	EndMeetingManually(ctx context.Context, guid uuid.UUID, description string, customEndTime *time.Time) (*meeting.EndedMeeting, error)
	PostponeCheck(ctx context.Context, guid uuid.UUID, until time.Time) (*meeting.Postponement, error)
	GetEndedMeetings(ctx context.Context, opts meeting.ListOptions) ([]meeting.EndedMeeting, error)
}

// RuleService defines rule operations needed by MCP.
type RuleService interface {
	Create(ctx context.Context, req rule.CreateRequest) (*rule.Rule, error)
	List(ctx context.Context) ([]rule.Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler dispatches MCP tool calls.
type Handler struct {
	tracker  TrackerService
	rules    RuleService
	activity ActivityService
}

// NewHandler creates a new MCP handler.
func NewHandler(tracker TrackerService, rules RuleService, activitySvc ActivityService) *Handler {
	return &Handler{
		tracker:  tracker,
		rules:    rules,
		activity: activitySvc,
	}
}

// Handle dispatches a tool call to the domain services.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "get_meeting_state":
		return newStateResponse(h.tracker.State()), nil
	case "recognize_activity":
		if err := h.tracker.RecognizeActivity(ctx); err != nil {
			return nil, mapError(err)
		}
		return newStateResponse(h.tracker.State()), nil
	case "confirm_meeting_end":
		var req ConfirmMeetingEndParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		guid, endTime, err := parseEndArgs(req.GUID, req.EndTime)
		if err != nil {
			return nil, err
		}
		ended, err := h.tracker.ConfirmMeetingEnd(ctx, guid, req.Description, endTime)
		if err != nil {
			return nil, mapError(err)
		}
		return newEndedMeetingResponse(*ended), nil
	case "end_meeting_manually":
		var req EndMeetingManuallyParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		guid, endTime, err := parseEndArgs(req.GUID, req.EndTime)
		if err != nil {
			return nil, err
		}
		ended, err := h.tracker.EndMeetingManually(ctx, guid, req.Description, endTime)
		if err != nil {
			return nil, mapError(err)
		}
		return newEndedMeetingResponse(*ended), nil
	case "postpone_check":
		var req PostponeCheckParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		guid, err := parseGUID("guid", req.GUID)
		if err != nil {
			return nil, err
		}
		until, err := parseTime("until", req.Until)
		if err != nil {
			return nil, err
		}
		if until == nil {
			return nil, invalidArgument("until", "is required")
		}
		p, err := h.tracker.PostponeCheck(ctx, guid, *until)
		if err != nil {
			return nil, mapError(err)
		}
		return p, nil
	case "list_ended_meetings":
		var req ListEndedMeetingsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		since, err := parseTime("since", req.Since)
		if err != nil {
			return nil, err
		}
		until, err := parseTime("until", req.Until)
		if err != nil {
			return nil, err
		}
		meetings, err := h.tracker.GetEndedMeetings(ctx, meeting.ListOptions{
			Since:  since,
			Until:  until,
			Limit:  req.Limit,
			Offset: req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]EndedMeetingResponse, 0, len(meetings))
		for _, m := range meetings {
			resp = append(resp, newEndedMeetingResponse(m))
		}
		return resp, nil
	case "list_rules":
		rules, err := h.rules.List(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]RuleResponse, 0, len(rules))
		for _, r := range rules {
			resp = append(resp, newRuleResponse(r))
		}
		return resp, nil
	case "create_rule":
		var req CreateRuleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		created, err := h.rules.Create(ctx, rule.CreateRequest{
			Name:               req.Name,
			Priority:           req.Priority,
			Criteria:           req.Criteria,
			ProcessNamePattern: req.ProcessNamePattern,
			WindowTitlePattern: req.WindowTitlePattern,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return newRuleResponse(*created), nil
	case "delete_rule":
		var req DeleteRuleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id, err := parseGUID("id", req.ID)
		if err != nil {
			return nil, err
		}
		if err := h.rules.Delete(ctx, id); err != nil {
			return nil, mapError(err)
		}
		return DeleteRuleResponse{Deleted: true}, nil
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		since, err := parseTime("since", req.Since)
		if err != nil {
			return nil, err
		}
		opts := activity.ListActivityOptions{Since: since, Limit: req.Limit}
		if req.MeetingID != "" {
			opts.MeetingID = &req.MeetingID
		}
		if req.Type != "" {
			t := activity.ActivityType(req.Type)
			opts.ActivityType = &t
		}
		entries, err := h.activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				Timestamp: entry.CreatedAt,
				Type:      entry.ActivityType,
				MeetingID: stringValue(entry.MeetingID),
				Summary:   entry.Summary,
				Details:   entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("decoding arguments: %v", err)}
	}
	return nil
}

func parseEndArgs(rawGUID, rawEnd string) (uuid.UUID, *time.Time, error) {
	guid, err := parseGUID("guid", rawGUID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	end, err := parseTime("end_time", rawEnd)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return guid, end, nil
}

func parseGUID(field, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, invalidArgument(field, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidArgument(field, "must be a UUID")
	}
	return id, nil
}

// parseTime accepts RFC 3339 timestamps. An empty string yields nil.
func parseTime(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, invalidArgument(field, "must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func stringValue(val *string) string {
	if val == nil {
		return ""
	}
	return *val
}
