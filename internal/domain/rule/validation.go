package rule

import (
	"fmt"
	"strings"
)

// Validate checks that r is consistent and every pattern it carries could
// match something. Errors wrap ErrInvalidRule.
func Validate(r *Rule) error {
	if r == nil {
		return fmt.Errorf("%w: rule is required", ErrInvalidRule)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	}
	switch r.Criteria {
	case CriteriaProcessNameOnly, CriteriaWindowTitleOnly, CriteriaBoth:
	default:
		return fmt.Errorf("%w: unknown criteria %q", ErrInvalidRule, r.Criteria)
	}
	if !consistent(r) {
		return fmt.Errorf("%w: criteria %s is missing a required pattern", ErrInvalidRule, r.Criteria)
	}
	if r.ProcessNamePattern != nil {
		if err := ValidatePattern(*r.ProcessNamePattern); err != nil {
			return fmt.Errorf("process name pattern: %w", err)
		}
	}
	if r.WindowTitlePattern != nil {
		if err := ValidatePattern(*r.WindowTitlePattern); err != nil {
			return fmt.Errorf("window title pattern: %w", err)
		}
	}
	return nil
}
