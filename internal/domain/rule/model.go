package rule

import (
	"time"

	"github.com/google/uuid"
)

// MatchMode selects how a pattern is compared against a candidate string.
type MatchMode string

const (
	MatchExact      MatchMode = "exact"
	MatchContains   MatchMode = "contains"
	MatchStartsWith MatchMode = "starts_with"
	MatchRegex      MatchMode = "regex"
	// MatchWildcard is shell-style globbing, e.g. "zoom*".
	MatchWildcard MatchMode = "wildcard"
)

// Criteria selects which process attributes a rule must match.
type Criteria string

const (
	CriteriaProcessNameOnly Criteria = "process_name_only"
	CriteriaWindowTitleOnly Criteria = "window_title_only"
	CriteriaBoth            Criteria = "both"
)

// PatternDefinition is a single string pattern owned by a rule.
type PatternDefinition struct {
	Value         string    `json:"value" yaml:"value"`
	MatchMode     MatchMode `json:"match_mode" yaml:"match_mode"`
	CaseSensitive bool      `json:"case_sensitive" yaml:"case_sensitive"`
}

// Rule recognizes a meeting application by process name and/or window title.
// Lower Priority values are evaluated first.
type Rule struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	Priority           int                `json:"priority"`
	Criteria           Criteria           `json:"criteria"`
	ProcessNamePattern *PatternDefinition `json:"process_name_pattern,omitempty"`
	WindowTitlePattern *PatternDefinition `json:"window_title_pattern,omitempty"`
	MatchCount         int                `json:"match_count"`
	LastMatchedAt      *time.Time         `json:"last_matched_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// MeetingMatch is the result of a successful rule evaluation.
type MeetingMatch struct {
	MatchedRuleID uuid.UUID `json:"matched_rule_id"`
	ProcessName   string    `json:"process_name"`
	WindowTitle   string    `json:"window_title"`
	MatchedAt     time.Time `json:"matched_at"`
}
