package rule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/clock"
	"github.com/rpggio/worklog/internal/repository"
	"gopkg.in/yaml.v3"
)

// Service manages recognition rules.
type Service struct {
	repo   Repository
	clock  clock.Clock
	logger *slog.Logger
}

// NewService creates a new rule service. A nil clock means the real clock.
func NewService(repo Repository, clk clock.Clock, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, clock: clk, logger: logger}
}

// CreateRequest defines rule creation inputs.
type CreateRequest struct {
	Name               string             `yaml:"name"`
	Priority           int                `yaml:"priority"`
	Criteria           Criteria           `yaml:"criteria"`
	ProcessNamePattern *PatternDefinition `yaml:"process_name"`
	WindowTitlePattern *PatternDefinition `yaml:"window_title"`
}

func (req CreateRequest) toRule(now time.Time) *Rule {
	return &Rule{
		ID:                 uuid.New(),
		Name:               req.Name,
		Priority:           req.Priority,
		Criteria:           req.Criteria,
		ProcessNamePattern: req.ProcessNamePattern,
		WindowTitlePattern: req.WindowTitlePattern,
		CreatedAt:          now.UTC(),
	}
}

// Create validates and stores a new rule.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Rule, error) {
	r := req.toRule(s.clock.Now())
	if err := Validate(r); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}
	s.logger.Info("rule created", "id", r.ID, "name", r.Name, "priority", r.Priority)
	return r, nil
}

// Get fetches a rule by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Rule, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("getting rule: %w", err)
	}
	return r, nil
}

// List returns all rules in evaluation order.
func (s *Service) List(ctx context.Context) ([]Rule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	return rules, nil
}

// Delete removes a rule and drops its compiled patterns.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRuleNotFound
		}
		return fmt.Errorf("deleting rule: %w", err)
	}
	for _, p := range []*PatternDefinition{r.ProcessNamePattern, r.WindowTitlePattern} {
		if p != nil {
			defaultMatcher.Forget(*p)
		}
	}
	s.logger.Info("rule deleted", "id", id)
	return nil
}

// ImportFile is the YAML document accepted by Import.
type ImportFile struct {
	Rules []CreateRequest `yaml:"rules"`
}

// Import reads a YAML rule file and creates every rule in it. Nothing is
// stored unless every rule validates and every insert succeeds.
func (s *Service) Import(ctx context.Context, r io.Reader) ([]*Rule, error) {
	var file ImportFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: parsing rule file: %v", ErrInvalidRule, err)
	}

	now := s.clock.Now()
	rules := make([]*Rule, 0, len(file.Rules))
	for i, req := range file.Rules {
		rule := req.toRule(now)
		if err := Validate(rule); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, req.Name, err)
		}
		rules = append(rules, rule)
	}

	if err := s.repo.CreateAll(ctx, rules); err != nil {
		return nil, fmt.Errorf("importing rules: %w", err)
	}
	s.logger.Info("rules imported", "count", len(rules))
	return rules, nil
}
