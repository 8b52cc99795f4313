package rule

import "errors"

var (
	// ErrRuleNotFound indicates the rule doesn't exist.
	ErrRuleNotFound = errors.New("rule not found")
	// ErrInvalidRule indicates a rule or pattern failed validation.
	ErrInvalidRule = errors.New("invalid rule")
)
