package rule_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/rpggio/worklog/internal/process"
	"github.com/stretchr/testify/require"
)

var evalTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func processRule(priority int, name string) rule.Rule {
	return rule.Rule{
		ID:                 uuid.New(),
		Name:               name,
		Priority:           priority,
		Criteria:           rule.CriteriaProcessNameOnly,
		ProcessNamePattern: &rule.PatternDefinition{Value: name, MatchMode: rule.MatchExact},
	}
}

func TestEvaluateRules_PriorityOrder(t *testing.T) {
	teams := processRule(10, "teams")
	zoom := processRule(1, "zoom")
	procs := []process.Snapshot{
		{ProcessName: "teams", MainWindowTitle: "Teams call"},
		{ProcessName: "zoom", MainWindowTitle: "Zoom Meeting"},
	}

	m := rule.EvaluateRules([]rule.Rule{teams, zoom}, procs, uuid.Nil, evalTime)
	require.NotNil(t, m)
	require.Equal(t, zoom.ID, m.MatchedRuleID)
	require.Equal(t, "zoom", m.ProcessName)
	require.Equal(t, "Zoom Meeting", m.WindowTitle)
	require.Equal(t, evalTime, m.MatchedAt)
}

func TestEvaluateRules_EqualPriorityKeepsInputOrder(t *testing.T) {
	a := processRule(5, "teams")
	b := processRule(5, "zoom")
	procs := []process.Snapshot{{ProcessName: "zoom"}, {ProcessName: "teams"}}

	m := rule.EvaluateRules([]rule.Rule{a, b}, procs, uuid.Nil, evalTime)
	require.NotNil(t, m)
	require.Equal(t, a.ID, m.MatchedRuleID)
}

func TestEvaluateRules_PreviousRuleWinsWhileItMatches(t *testing.T) {
	high := processRule(1, "zoom")
	low := processRule(9, "teams")
	procs := []process.Snapshot{{ProcessName: "zoom"}, {ProcessName: "teams"}}

	m := rule.EvaluateRules([]rule.Rule{high, low}, procs, low.ID, evalTime)
	require.NotNil(t, m)
	require.Equal(t, low.ID, m.MatchedRuleID)

	// Once the previous rule stops matching, priority applies again.
	m = rule.EvaluateRules([]rule.Rule{high, low}, procs[:1], low.ID, evalTime)
	require.NotNil(t, m)
	require.Equal(t, high.ID, m.MatchedRuleID)
}

func TestEvaluateRules_PreviousRuleRemoved(t *testing.T) {
	zoom := processRule(1, "zoom")
	m := rule.EvaluateRules([]rule.Rule{zoom}, []process.Snapshot{{ProcessName: "zoom"}}, uuid.New(), evalTime)
	require.NotNil(t, m)
	require.Equal(t, zoom.ID, m.MatchedRuleID)
}

func TestEvaluateRules_BothRequiresSameProcess(t *testing.T) {
	r := rule.Rule{
		ID:                 uuid.New(),
		Name:               "teams meeting",
		Criteria:           rule.CriteriaBoth,
		ProcessNamePattern: &rule.PatternDefinition{Value: "teams", MatchMode: rule.MatchContains},
		WindowTitlePattern: &rule.PatternDefinition{Value: "meeting", MatchMode: rule.MatchContains},
	}

	split := []process.Snapshot{
		{ProcessName: "teams", MainWindowTitle: "Chat"},
		{ProcessName: "firefox", MainWindowTitle: "Meeting notes"},
	}
	require.Nil(t, rule.EvaluateRules([]rule.Rule{r}, split, uuid.Nil, evalTime))

	together := append(split, process.Snapshot{ProcessName: "ms-teams", MainWindowTitle: "Meeting | Teams"})
	m := rule.EvaluateRules([]rule.Rule{r}, together, uuid.Nil, evalTime)
	require.NotNil(t, m)
	require.Equal(t, "ms-teams", m.ProcessName)
}

func TestEvaluateRules_WindowTitleOnly(t *testing.T) {
	r := rule.Rule{
		ID:                 uuid.New(),
		Name:               "meet",
		Criteria:           rule.CriteriaWindowTitleOnly,
		WindowTitlePattern: &rule.PatternDefinition{Value: "Meet - ", MatchMode: rule.MatchStartsWith},
	}
	m := rule.EvaluateRules([]rule.Rule{r}, []process.Snapshot{{ProcessName: "chrome", MainWindowTitle: "Meet - abc-defg-hij"}}, uuid.Nil, evalTime)
	require.NotNil(t, m)
	require.Equal(t, "Meet - abc-defg-hij", m.WindowTitle)
}

func TestEvaluateRules_InconsistentRulesNeverMatch(t *testing.T) {
	rules := []rule.Rule{
		{ID: uuid.New(), Criteria: rule.CriteriaBoth, ProcessNamePattern: &rule.PatternDefinition{Value: "zoom", MatchMode: rule.MatchExact}},
		{ID: uuid.New(), Criteria: rule.CriteriaWindowTitleOnly},
		{ID: uuid.New(), Criteria: "anything", ProcessNamePattern: &rule.PatternDefinition{Value: "zoom", MatchMode: rule.MatchExact}},
	}
	require.Nil(t, rule.EvaluateRules(rules, []process.Snapshot{{ProcessName: "zoom", MainWindowTitle: "zoom"}}, uuid.Nil, evalTime))
}

func TestEvaluateRules_NoRulesOrProcesses(t *testing.T) {
	require.Nil(t, rule.EvaluateRules(nil, []process.Snapshot{{ProcessName: "zoom"}}, uuid.Nil, evalTime))
	require.Nil(t, rule.EvaluateRules([]rule.Rule{processRule(1, "zoom")}, nil, uuid.Nil, evalTime))
}

func TestValidate(t *testing.T) {
	valid := processRule(1, "zoom")
	require.NoError(t, rule.Validate(&valid))

	missing := valid
	missing.Criteria = rule.CriteriaBoth
	require.ErrorIs(t, rule.Validate(&missing), rule.ErrInvalidRule)

	unnamed := valid
	unnamed.Name = ""
	require.ErrorIs(t, rule.Validate(&unnamed), rule.ErrInvalidRule)

	badRegex := valid
	badRegex.ProcessNamePattern = &rule.PatternDefinition{Value: "(", MatchMode: rule.MatchRegex}
	require.ErrorIs(t, rule.Validate(&badRegex), rule.ErrInvalidRule)

	require.ErrorIs(t, rule.Validate(nil), rule.ErrInvalidRule)
}
