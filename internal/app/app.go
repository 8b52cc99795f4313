// Package app wires storage, discovery and the meeting tracker from
// configuration.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/rpggio/worklog/internal/clock"
	"github.com/rpggio/worklog/internal/config"
	"github.com/rpggio/worklog/internal/domain/activity"
	"github.com/rpggio/worklog/internal/domain/discovery"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/rpggio/worklog/internal/event"
	"github.com/rpggio/worklog/internal/process"
	"github.com/rpggio/worklog/internal/sqlite"
)

type App struct {
	Config    config.Config
	Logger    *slog.Logger
	DB        *sqlite.DB
	Clock     clock.Clock
	Processes process.Source
	Bus       *event.Bus

	RuleRepo *sqlite.RuleRepository
	Rules    *rule.Service
	Activity *activity.Service
	Tracker  *meeting.Tracker
}

// Options overrides the collaborators New would otherwise build.
type Options struct {
	Clock     clock.Clock
	Processes process.Source
}

// New opens the database, runs migrations and builds the tracker.
func New(cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	processes := opts.Processes
	if processes == nil {
		processes = process.NewSystem(process.WmctrlTitles, logger)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	ruleRepo := sqlite.NewRuleRepository(db)
	meetingRepo := sqlite.NewMeetingRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	ruleSvc := rule.NewService(ruleRepo, clk, logger)
	activitySvc := activity.NewService(activityRepo, logger)

	bus := event.NewBus(logger)
	activity.NewRecorder(activitySvc).Attach(bus)
	bus.SubscribeAll(func(_ context.Context, e event.Event) {
		logger.Info("meeting event", "type", e.EventType(), "at", e.Timestamp())
	})

	var strategy meeting.DiscoveryStrategy
	switch cfg.Tracker.Strategy {
	case config.StrategyHeuristic:
		strategy = discovery.NewHeuristicStrategy(processes, clk, logger)
	default:
		strategy = discovery.NewRuleStrategy(processes, ruleRepo, clk, logger)
	}

	tracker := meeting.NewTracker(strategy, meetingRepo, bus, clk, meeting.Config{
		GracePeriod:           cfg.Tracker.GracePeriod,
		CloseReplacedMeetings: cfg.Tracker.CloseReplacedMeetings,
	}, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Clock:     clk,
		Processes: processes,
		Bus:       bus,
		RuleRepo:  ruleRepo,
		Rules:     ruleSvc,
		Activity:  activitySvc,
		Tracker:   tracker,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

// SeedRules imports the configured seed file when no rules exist yet. It
// returns the number of rules imported.
func (a *App) SeedRules(ctx context.Context) (int, error) {
	path := a.Config.Rules.SeedFile
	if path == "" {
		return 0, nil
	}
	existing, err := a.Rules.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	imported, err := a.Rules.Import(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(imported), nil
}

// Detection is the outcome of a one-shot evaluation.
type Detection struct {
	Match     *rule.MeetingMatch
	RuleName  string
	Processes []process.Snapshot
}

// Detect evaluates the active strategy's rules against a fresh process
// snapshot. It changes no tracker state or rule counters.
func (a *App) Detect(ctx context.Context) (*Detection, error) {
	snapshot, err := a.Processes.GetProcesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	rules := discovery.Signatures
	if a.Config.Tracker.Strategy != config.StrategyHeuristic {
		if rules, err = a.Rules.List(ctx); err != nil {
			return nil, err
		}
	}

	d := &Detection{Processes: snapshot}
	d.Match = rule.EvaluateRules(rules, snapshot, uuid.Nil, a.Clock.Now())
	if d.Match != nil {
		for _, r := range rules {
			if r.ID == d.Match.MatchedRuleID {
				d.RuleName = r.Name
				break
			}
		}
	}
	return d, nil
}
