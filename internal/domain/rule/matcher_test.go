package rule_test

import (
	"testing"

	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		pattern   rule.PatternDefinition
		candidate string
		want      bool
	}{
		{"exact folded", rule.PatternDefinition{Value: "Zoom", MatchMode: rule.MatchExact}, "zoom", true},
		{"exact case sensitive", rule.PatternDefinition{Value: "Zoom", MatchMode: rule.MatchExact, CaseSensitive: true}, "zoom", false},
		{"exact partial", rule.PatternDefinition{Value: "zoom", MatchMode: rule.MatchExact}, "zoom.us", false},
		{"contains", rule.PatternDefinition{Value: "meeting", MatchMode: rule.MatchContains}, "Zoom Meeting", true},
		{"contains miss", rule.PatternDefinition{Value: "webinar", MatchMode: rule.MatchContains}, "Zoom Meeting", false},
		{"starts with", rule.PatternDefinition{Value: "meet -", MatchMode: rule.MatchStartsWith}, "Meet - abc-defg-hij", true},
		{"starts with miss", rule.PatternDefinition{Value: "meet -", MatchMode: rule.MatchStartsWith}, "Google Meet - x", false},
		{"regex folded", rule.PatternDefinition{Value: `^Meeting with .+$`, MatchMode: rule.MatchRegex}, "meeting with Ada", true},
		{"regex case sensitive", rule.PatternDefinition{Value: `^Meeting`, MatchMode: rule.MatchRegex, CaseSensitive: true}, "meeting", false},
		{"regex lookahead", rule.PatternDefinition{Value: `Teams(?!.*Chat)`, MatchMode: rule.MatchRegex}, "Standup | Microsoft Teams", true},
		{"malformed regex", rule.PatternDefinition{Value: `(unclosed`, MatchMode: rule.MatchRegex}, "(unclosed", false},
		{"wildcard", rule.PatternDefinition{Value: "zoom*", MatchMode: rule.MatchWildcard}, "ZoomWebinar", true},
		{"wildcard case sensitive", rule.PatternDefinition{Value: "zoom*", MatchMode: rule.MatchWildcard, CaseSensitive: true}, "ZoomWebinar", false},
		{"malformed wildcard", rule.PatternDefinition{Value: "[zoom", MatchMode: rule.MatchWildcard}, "[zoom", false},
		{"unknown mode", rule.PatternDefinition{Value: "zoom", MatchMode: "fuzzy"}, "zoom", false},
		{"empty candidate", rule.PatternDefinition{Value: "zoom", MatchMode: rule.MatchContains}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rule.Matches(tt.pattern, tt.candidate))
		})
	}
}

func TestMatcher_CachesCompiledPatterns(t *testing.T) {
	m := rule.NewMatcher()
	p := rule.PatternDefinition{Value: `standup|retro`, MatchMode: rule.MatchRegex}
	require.True(t, m.Matches(p, "Sprint retro"))
	require.True(t, m.Matches(p, "Daily standup"))
	require.False(t, m.Matches(p, "Planning"))
}

func TestValidatePattern(t *testing.T) {
	require.NoError(t, rule.ValidatePattern(rule.PatternDefinition{Value: "zoom", MatchMode: rule.MatchExact}))
	require.NoError(t, rule.ValidatePattern(rule.PatternDefinition{Value: `\d+`, MatchMode: rule.MatchRegex}))

	for _, p := range []rule.PatternDefinition{
		{Value: "", MatchMode: rule.MatchExact},
		{Value: "  ", MatchMode: rule.MatchContains},
		{Value: "(", MatchMode: rule.MatchRegex},
		{Value: "[a", MatchMode: rule.MatchWildcard},
		{Value: "zoom", MatchMode: "fuzzy"},
	} {
		require.ErrorIs(t, rule.ValidatePattern(p), rule.ErrInvalidRule, "pattern %+v", p)
	}
}
