// Package discovery implements the strategies the meeting tracker uses to
// decide whether a meeting is in progress.
package discovery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/clock"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/rpggio/worklog/internal/process"
)

// RuleSource is the part of the rule repository the strategy needs.
type RuleSource interface {
	List(ctx context.Context) ([]rule.Rule, error)
	IncrementMatchCount(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RuleStrategy recognizes meetings by evaluating stored recognition rules
// against a process snapshot.
type RuleStrategy struct {
	processes process.Source
	rules     RuleSource
	clock     clock.Clock
	logger    *slog.Logger
}

// NewRuleStrategy creates a rule-based strategy.
func NewRuleStrategy(processes process.Source, rules RuleSource, clk clock.Clock, logger *slog.Logger) *RuleStrategy {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RuleStrategy{processes: processes, rules: rules, clock: clk, logger: logger}
}

// RecognizeMeeting implements meeting.DiscoveryStrategy.
func (s *RuleStrategy) RecognizeMeeting(ctx context.Context, previous *meeting.StartedMeeting, previousRuleID uuid.UUID) (*meeting.StartedMeeting, uuid.UUID, error) {
	match, err := s.Match(ctx, previousRuleID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if match == nil {
		return nil, uuid.Nil, nil
	}

	if previous != nil && match.MatchedRuleID == previousRuleID {
		return previous, previousRuleID, nil
	}

	if err := s.rules.IncrementMatchCount(ctx, match.MatchedRuleID, match.MatchedAt); err != nil {
		s.logger.Warn("updating rule match count", "rule", match.MatchedRuleID, "error", err)
	}
	return &meeting.StartedMeeting{
		GUID:      uuid.New(),
		StartDate: match.MatchedAt,
		Title:     match.WindowTitle,
	}, match.MatchedRuleID, nil
}

// Match evaluates the rules against a fresh process snapshot without
// touching any tracker state or counters.
func (s *RuleStrategy) Match(ctx context.Context, previousRuleID uuid.UUID) (*rule.MeetingMatch, error) {
	snapshot, err := takeSnapshot(ctx, s.processes, s.logger)
	if err != nil {
		return nil, err
	}

	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	return rule.EvaluateRules(rules, snapshot, previousRuleID, s.clock.Now()), nil
}

// takeSnapshot degrades a failed enumeration to an empty snapshot, unless
// the poll itself was canceled: an empty snapshot would end the meeting.
func takeSnapshot(ctx context.Context, source process.Source, logger *slog.Logger) ([]process.Snapshot, error) {
	snapshot, err := source.GetProcesses(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		logger.Warn("process snapshot failed, treating as empty", "error", err)
		return nil, nil
	}
	return snapshot, nil
}
