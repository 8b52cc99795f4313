package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/domain/rule"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// with no domain meaning.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var validation *meeting.ValidationError
	switch {
	case errors.As(err, &validation):
		return &APIError{
			Code:         "INVALID_INPUT",
			Message:      validation.Error(),
			Details:      map[string]string{"field": validation.Field},
			RecoveryHint: "Correct the named field and retry",
		}
	case errors.Is(err, meeting.ErrMeetingNotFound):
		return &APIError{Code: "MEETING_NOT_FOUND", Message: "meeting not found", RecoveryHint: "Call get_meeting_state for the current guid"}
	case errors.Is(err, meeting.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check argument values"}
	case errors.Is(err, rule.ErrRuleNotFound):
		return &APIError{Code: "RULE_NOT_FOUND", Message: "rule not found", RecoveryHint: "Call list_rules for valid ids"}
	case errors.Is(err, rule.ErrInvalidRule):
		return &APIError{Code: "INVALID_RULE", Message: err.Error(), RecoveryHint: "Check criteria, patterns and match modes"}
	default:
		return nil
	}
}

func invalidArgument(field, message string) *APIError {
	return &APIError{
		Code:         "INVALID_INPUT",
		Message:      field + ": " + message,
		Details:      map[string]string{"field": field},
		RecoveryHint: "Correct the named field and retry",
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
