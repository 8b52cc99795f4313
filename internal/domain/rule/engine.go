package rule

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/process"
)

// EvaluateRules finds at most one rule/process pair that satisfies its
// criteria.
//
// The rule identified by previousRuleID is re-tested first so two rules that
// both match do not flip the result between polls. Otherwise rules are
// tried in ascending priority (input order breaks ties) and the first
// matching process wins. Inconsistent rules never match.
func EvaluateRules(rules []Rule, processes []process.Snapshot, previousRuleID uuid.UUID, at time.Time) *MeetingMatch {
	if previousRuleID != uuid.Nil {
		for i := range rules {
			if rules[i].ID != previousRuleID {
				continue
			}
			if m := matchRule(&rules[i], processes, at); m != nil {
				return m
			}
			break
		}
	}

	ordered := make([]*Rule, len(rules))
	for i := range rules {
		ordered[i] = &rules[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for _, r := range ordered {
		if m := matchRule(r, processes, at); m != nil {
			return m
		}
	}
	return nil
}

func matchRule(r *Rule, processes []process.Snapshot, at time.Time) *MeetingMatch {
	if !consistent(r) {
		return nil
	}
	for _, p := range processes {
		if !matchesProcess(r, p) {
			continue
		}
		return &MeetingMatch{
			MatchedRuleID: r.ID,
			ProcessName:   p.ProcessName,
			WindowTitle:   p.MainWindowTitle,
			MatchedAt:     at,
		}
	}
	return nil
}

func matchesProcess(r *Rule, p process.Snapshot) bool {
	switch r.Criteria {
	case CriteriaProcessNameOnly:
		return Matches(*r.ProcessNamePattern, p.ProcessName)
	case CriteriaWindowTitleOnly:
		return Matches(*r.WindowTitlePattern, p.MainWindowTitle)
	case CriteriaBoth:
		return Matches(*r.ProcessNamePattern, p.ProcessName) &&
			Matches(*r.WindowTitlePattern, p.MainWindowTitle)
	default:
		return false
	}
}

// consistent reports whether the patterns required by the rule's criteria
// are present.
func consistent(r *Rule) bool {
	switch r.Criteria {
	case CriteriaProcessNameOnly:
		return r.ProcessNamePattern != nil
	case CriteriaWindowTitleOnly:
		return r.WindowTitlePattern != nil
	case CriteriaBoth:
		return r.ProcessNamePattern != nil && r.WindowTitlePattern != nil
	default:
		return false
	}
}
