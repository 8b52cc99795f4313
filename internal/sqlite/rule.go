package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/rpggio/worklog/internal/repository"
)

// RuleRepository implements rule.Repository for SQLite
type RuleRepository struct {
	db *DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = `
	id, name, priority, criteria,
	process_pattern, process_match_mode, process_case_sensitive,
	title_pattern, title_match_mode, title_case_sensitive,
	match_count, last_matched_at, created_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Create inserts a new rule
func (r *RuleRepository) Create(ctx context.Context, rl *rule.Rule) error {
	return insertRule(ctx, r.db, rl)
}

// CreateAll inserts rules in one transaction. Either every rule is stored or
// none is.
func (r *RuleRepository) CreateAll(ctx context.Context, rules []*rule.Rule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rl := range rules {
		if err := insertRule(ctx, tx, rl); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertRule(ctx context.Context, exec execer, rl *rule.Rule) error {
	procValue, procMode, procCase := patternColumns(rl.ProcessNamePattern)
	titleValue, titleMode, titleCase := patternColumns(rl.WindowTitlePattern)

	createdAt := rl.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO recognition_rules (` + ruleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := exec.ExecContext(ctx, query,
		rl.ID,
		rl.Name,
		rl.Priority,
		rl.Criteria,
		procValue, procMode, procCase,
		titleValue, titleMode, titleCase,
		rl.MatchCount,
		nullTime(rl.LastMatchedAt),
		createdAt.UTC(),
	)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	rl.CreatedAt = createdAt.UTC()
	return nil
}

// Get retrieves a rule by ID
func (r *RuleRepository) Get(ctx context.Context, id uuid.UUID) (*rule.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM recognition_rules WHERE id = ?`

	rl, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rl, nil
}

// List returns all rules by ascending priority, oldest first within a priority
func (r *RuleRepository) List(ctx context.Context) ([]rule.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM recognition_rules ORDER BY priority ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []rule.Rule
	for rows.Next() {
		rl, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows: %w", err)
	}

	return rules, nil
}

// Delete removes a rule
func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recognition_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return requireAffected(result)
}

// IncrementMatchCount bumps the rule's match counter and records when it matched
func (r *RuleRepository) IncrementMatchCount(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE recognition_rules
		SET match_count = match_count + 1, last_matched_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to increment match count: %w", err)
	}
	return requireAffected(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(row scanner) (*rule.Rule, error) {
	var (
		rl                    rule.Rule
		procValue, procMode   sql.NullString
		titleValue, titleMode sql.NullString
		procCase, titleCase   bool
		lastMatchedAt         sql.NullTime
	)
	err := row.Scan(
		&rl.ID,
		&rl.Name,
		&rl.Priority,
		&rl.Criteria,
		&procValue, &procMode, &procCase,
		&titleValue, &titleMode, &titleCase,
		&rl.MatchCount,
		&lastMatchedAt,
		&rl.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rl.ProcessNamePattern = patternFromColumns(procValue, procMode, procCase)
	rl.WindowTitlePattern = patternFromColumns(titleValue, titleMode, titleCase)
	if lastMatchedAt.Valid {
		t := lastMatchedAt.Time
		rl.LastMatchedAt = &t
	}
	return &rl, nil
}

func patternColumns(p *rule.PatternDefinition) (sql.NullString, sql.NullString, bool) {
	if p == nil {
		return sql.NullString{}, sql.NullString{}, false
	}
	return sql.NullString{String: p.Value, Valid: true},
		sql.NullString{String: string(p.MatchMode), Valid: true},
		p.CaseSensitive
}

func patternFromColumns(value, mode sql.NullString, caseSensitive bool) *rule.PatternDefinition {
	if !value.Valid {
		return nil
	}
	return &rule.PatternDefinition{
		Value:         value.String,
		MatchMode:     rule.MatchMode(mode.String),
		CaseSensitive: caseSensitive,
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
