package discovery

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/clock"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/rpggio/worklog/internal/process"
)

// heuristicNamespace seeds the deterministic ids of the built-in signatures
// so continuity survives restarts.
var heuristicNamespace = uuid.MustParse("6f1c9a4e-2b7d-4c55-9e0a-8d3f2a61b7c4")

func signature(name string, priority int, criteria rule.Criteria, proc, title *rule.PatternDefinition) rule.Rule {
	return rule.Rule{
		ID:                 uuid.NewSHA1(heuristicNamespace, []byte(name)),
		Name:               name,
		Priority:           priority,
		Criteria:           criteria,
		ProcessNamePattern: proc,
		WindowTitlePattern: title,
	}
}

// Signatures are the window-title heuristics for common conferencing apps.
var Signatures = []rule.Rule{
	signature("Microsoft Teams", 10, rule.CriteriaBoth,
		&rule.PatternDefinition{Value: "teams", MatchMode: rule.MatchContains},
		&rule.PatternDefinition{Value: `^(?!.*\b(Chat|Calendar|Activity)\b).*\|.*Microsoft Teams`, MatchMode: rule.MatchRegex}),
	signature("Zoom", 20, rule.CriteriaWindowTitleOnly, nil,
		&rule.PatternDefinition{Value: "Zoom Meeting*", MatchMode: rule.MatchWildcard}),
	signature("Webex", 30, rule.CriteriaWindowTitleOnly, nil,
		&rule.PatternDefinition{Value: `(Webex|Cisco Webex) Meeting`, MatchMode: rule.MatchRegex}),
	signature("Google Meet", 40, rule.CriteriaWindowTitleOnly, nil,
		&rule.PatternDefinition{Value: "Meet - ", MatchMode: rule.MatchStartsWith}),
	signature("Slack huddle", 50, rule.CriteriaBoth,
		&rule.PatternDefinition{Value: "slack", MatchMode: rule.MatchContains},
		&rule.PatternDefinition{Value: "huddle", MatchMode: rule.MatchContains}),
}

// HeuristicStrategy recognizes meetings from built-in window-title
// signatures. It needs no stored rules.
type HeuristicStrategy struct {
	processes process.Source
	clock     clock.Clock
	logger    *slog.Logger
}

// NewHeuristicStrategy creates a heuristic strategy.
func NewHeuristicStrategy(processes process.Source, clk clock.Clock, logger *slog.Logger) *HeuristicStrategy {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HeuristicStrategy{processes: processes, clock: clk, logger: logger}
}

// RecognizeMeeting implements meeting.DiscoveryStrategy.
func (s *HeuristicStrategy) RecognizeMeeting(ctx context.Context, previous *meeting.StartedMeeting, previousRuleID uuid.UUID) (*meeting.StartedMeeting, uuid.UUID, error) {
	snapshot, err := takeSnapshot(ctx, s.processes, s.logger)
	if err != nil {
		return nil, uuid.Nil, err
	}

	match := rule.EvaluateRules(Signatures, snapshot, previousRuleID, s.clock.Now())
	if match == nil {
		return nil, uuid.Nil, nil
	}
	if previous != nil && match.MatchedRuleID == previousRuleID {
		return previous, previousRuleID, nil
	}
	return &meeting.StartedMeeting{
		GUID:      uuid.New(),
		StartDate: match.MatchedAt,
		Title:     match.WindowTitle,
	}, match.MatchedRuleID, nil
}
