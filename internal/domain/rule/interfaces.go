package rule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository provides persistence for recognition rules. List returns rules
// ordered by ascending priority, oldest first within a priority.
type Repository interface {
	Create(ctx context.Context, r *Rule) error
	// CreateAll stores every rule or none of them.
	CreateAll(ctx context.Context, rules []*Rule) error
	Get(ctx context.Context, id uuid.UUID) (*Rule, error)
	List(ctx context.Context) ([]Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementMatchCount(ctx context.Context, id uuid.UUID, at time.Time) error
}
