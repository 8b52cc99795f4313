package activity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultListLimit caps GetRecentActivity when no limit is given.
const DefaultListLimit = 50

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil || entry.ActivityType == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// GetRecentActivity lists activity entries, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}
