package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/worklog/internal/app"
	"github.com/rpggio/worklog/internal/clock"
	"github.com/rpggio/worklog/internal/config"
	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/rpggio/worklog/internal/process"
)

type staticSource struct {
	snapshot []process.Snapshot
}

func (s *staticSource) GetProcesses(context.Context) ([]process.Snapshot, error) {
	return s.snapshot, nil
}

var uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

type harness struct {
	t     *testing.T
	procs *staticSource
	open  Opener
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, procs: &staticSource{}}
	dbPath := filepath.Join(t.TempDir(), "worklog.db")
	clk := clock.Fake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	h.open = func(string) (*app.App, error) {
		cfg := config.Default()
		cfg.DB.Path = dbPath
		return app.New(cfg, nil, app.Options{Clock: clk, Processes: h.procs})
	}
	return h
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	deps := &Dependencies{Open: h.open}
	root := NewRootCmd(deps)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if deps.App != nil {
		_ = deps.App.Close()
	}
	return out.String(), err
}

func TestRulesLifecycle(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("rules", "list")
	require.NoError(t, err)
	require.Contains(t, out, "No recognition rules configured")

	out, err = h.run("rules", "add", "Zoom", "--process", "zoom", "--title", "Zoom Meeting*", "--title-mode", "wildcard", "--priority", "5")
	require.NoError(t, err)
	require.Contains(t, out, "Added rule Zoom")
	id := uuidPattern.FindString(out)
	require.NotEmpty(t, id)

	out, err = h.run("rules", "list")
	require.NoError(t, err)
	require.Contains(t, out, id)
	require.Contains(t, out, `wildcard "Zoom Meeting*"`)
	require.Contains(t, out, "both, 0 matches, never matched")

	_, err = h.run("rules", "remove", id)
	require.NoError(t, err)

	out, err = h.run("rules", "list")
	require.NoError(t, err)
	require.Contains(t, out, "No recognition rules configured")
}

func TestRulesAdd_Invalid(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("rules", "add", "Broken", "--title", "([", "--title-mode", "regex")
	require.ErrorIs(t, err, rule.ErrInvalidRule)

	_, err = h.run("rules", "remove", "not-a-uuid")
	require.ErrorContains(t, err, "invalid rule id")
}

func TestRulesImportAndDetect(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
rules:
  - name: Teams call
    priority: 1
    criteria: window_title_only
    window_title:
      value: "| Microsoft Teams"
      match_mode: contains
`), 0o644))

	out, err := h.run("rules", "import", file)
	require.NoError(t, err)
	require.Contains(t, out, "Imported 1 rules")

	h.procs.snapshot = []process.Snapshot{{ProcessName: "bash"}}
	out, err = h.run("detect")
	require.NoError(t, err)
	require.Contains(t, out, "No meeting detected among 1 processes")

	h.procs.snapshot = append(h.procs.snapshot, process.Snapshot{ProcessName: "teams", MainWindowTitle: "Standup | Microsoft Teams"})
	out, err = h.run("detect", "--verbose")
	require.NoError(t, err)
	require.Contains(t, out, "Meeting detected by Teams call")
	require.Contains(t, out, "Standup | Microsoft Teams")
	require.Contains(t, out, "bash")
}

func TestMeetingsAndActivity_Empty(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("meetings", "--since", "24h")
	require.NoError(t, err)
	require.Contains(t, out, "No meetings recorded")

	out, err = h.run("activity", "--type", "meeting_ended")
	require.NoError(t, err)
	require.Contains(t, out, "No activity recorded")

	_, err = h.run("meetings", "--since", "last tuesday")
	require.ErrorContains(t, err, "invalid --since")
}

func TestServe_UnknownTransport(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("serve", "--transport", "carrier-pigeon")
	require.ErrorContains(t, err, `unknown transport "carrier-pigeon"`)
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	got, err := parseSince("90m", now)
	require.NoError(t, err)
	require.Equal(t, now.Add(-90*time.Minute), got)

	got, err = parseSince("2026-03-01T08:00:00Z", now)
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)))

	got, err = parseSince("2026-03-01", now)
	require.NoError(t, err)
	require.Equal(t, 1, got.Day())

	_, err = parseSince("soon", now)
	require.Error(t, err)
}
