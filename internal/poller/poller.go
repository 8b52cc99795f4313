// Package poller drives the meeting tracker on a fixed interval.
package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/rpggio/worklog/internal/clock"
)

// Recognizer runs one detection pass.
type Recognizer interface {
	RecognizeActivity(ctx context.Context) error
}

// Poller calls a Recognizer immediately and then once per interval until
// its context is canceled. A failed poll is logged and the next tick
// proceeds normally.
type Poller struct {
	recognizer Recognizer
	clock      clock.Clock
	interval   time.Duration
	logger     *slog.Logger
}

// New creates a poller.
func New(recognizer Recognizer, clk clock.Clock, interval time.Duration, logger *slog.Logger) *Poller {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{recognizer: recognizer, clock: clk, interval: interval, logger: logger}
}

// Run blocks until ctx is done and returns nil on cancellation.
func (p *Poller) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("polling for meetings", "interval", p.interval)
	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("polling stopped")
			return nil
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.recognizer.RecognizeActivity(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("meeting poll failed", "error", err)
	}
}
