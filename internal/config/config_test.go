package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WORKLOG_CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 2*time.Minute, cfg.Tracker.GracePeriod)
	require.True(t, cfg.Tracker.CloseReplacedMeetings)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worklog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /tmp/meetings.db
tracker:
  poll_interval: 10s
  grace_period: 3m
  close_replaced_meetings: false
  strategy: heuristic
rules:
  seed_file: rules.yaml
`), 0o644))

	t.Setenv("WORKLOG_CONFIG_PATH", path)
	t.Setenv("WORKLOG_GRACE_PERIOD", "90s")
	t.Setenv("WORKLOG_TRANSPORT", "http")
	t.Setenv("WORKLOG_SERVER_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "/tmp/meetings.db", cfg.DB.Path)
	require.Equal(t, 10*time.Second, cfg.Tracker.PollInterval)
	require.Equal(t, 90*time.Second, cfg.Tracker.GracePeriod)
	require.False(t, cfg.Tracker.CloseReplacedMeetings)
	require.Equal(t, StrategyHeuristic, cfg.Tracker.Strategy)
	require.Equal(t, "rules.yaml", cfg.Rules.SeedFile)
	require.Equal(t, TransportHTTP, cfg.Transport.Mode)
	require.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_ExplicitPathWins(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "env.yaml")
	flagPath := filepath.Join(dir, "flag.yaml")
	require.NoError(t, os.WriteFile(envPath, []byte("db:\n  path: env.db\n"), 0o644))
	require.NoError(t, os.WriteFile(flagPath, []byte("db:\n  path: flag.db\n"), 0o644))
	t.Setenv("WORKLOG_CONFIG_PATH", envPath)

	cfg, err := Load(flagPath)
	require.NoError(t, err)
	require.Equal(t, "flag.db", cfg.DB.Path)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("WORKLOG_CONFIG_PATH", "")

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("WORKLOG_SERVER_PORT", "eighty")
		_, err := Load("")
		require.ErrorContains(t, err, "WORKLOG_SERVER_PORT")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("WORKLOG_POLL_INTERVAL", "soon")
		_, err := Load("")
		require.ErrorContains(t, err, "WORKLOG_POLL_INTERVAL")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorContains(t, err, "read config file")
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Tracker.GracePeriod = 0
	cfg.Tracker.Strategy = "magic"
	err := cfg.Validate()
	require.ErrorContains(t, err, "grace_period")
	require.ErrorContains(t, err, "strategy")

	cfg = Default()
	cfg.Transport.Mode = "carrier-pigeon"
	require.ErrorContains(t, cfg.Validate(), "transport.mode")
}
