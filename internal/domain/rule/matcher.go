package rule

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/gobwas/glob"
)

// regexTimeout bounds a single regex evaluation so a pathological
// configured pattern cannot stall a poll.
const regexTimeout = 100 * time.Millisecond

// maxCachedPatterns bounds the compiled-pattern cache. A full cache is
// dropped and refilled on demand.
const maxCachedPatterns = 256

type cacheKey struct {
	mode          MatchMode
	value         string
	caseSensitive bool
}

type compiled struct {
	regex *regexp2.Regexp
	glob  glob.Glob
	err   error
}

// Matcher evaluates patterns against candidate strings, caching compiled
// regular expressions and globs. Safe for concurrent use.
type Matcher struct {
	mu    sync.RWMutex
	cache map[cacheKey]compiled
}

// NewMatcher returns an empty Matcher.
func NewMatcher() *Matcher {
	return &Matcher{cache: make(map[cacheKey]compiled)}
}

var defaultMatcher = NewMatcher()

// Matches reports whether candidate satisfies pattern using a shared Matcher.
func Matches(pattern PatternDefinition, candidate string) bool {
	return defaultMatcher.Matches(pattern, candidate)
}

// ValidatePattern reports why pattern could never match, or nil.
func ValidatePattern(pattern PatternDefinition) error {
	return defaultMatcher.ValidatePattern(pattern)
}

// Matches reports whether candidate satisfies pattern. Malformed patterns
// and unknown modes never match.
func (m *Matcher) Matches(pattern PatternDefinition, candidate string) bool {
	switch pattern.MatchMode {
	case MatchExact, MatchContains, MatchStartsWith:
		value := pattern.Value
		if !pattern.CaseSensitive {
			value = strings.ToLower(value)
			candidate = strings.ToLower(candidate)
		}
		switch pattern.MatchMode {
		case MatchExact:
			return candidate == value
		case MatchContains:
			return strings.Contains(candidate, value)
		default:
			return strings.HasPrefix(candidate, value)
		}
	case MatchRegex:
		c := m.compile(pattern)
		if c.err != nil {
			return false
		}
		ok, err := c.regex.MatchString(candidate)
		return err == nil && ok
	case MatchWildcard:
		c := m.compile(pattern)
		if c.err != nil {
			return false
		}
		if !pattern.CaseSensitive {
			candidate = strings.ToLower(candidate)
		}
		return c.glob.Match(candidate)
	default:
		return false
	}
}

// ValidatePattern reports why pattern could never match, or nil.
func (m *Matcher) ValidatePattern(pattern PatternDefinition) error {
	if strings.TrimSpace(pattern.Value) == "" {
		return fmt.Errorf("%w: pattern value is required", ErrInvalidRule)
	}
	switch pattern.MatchMode {
	case MatchExact, MatchContains, MatchStartsWith:
		return nil
	case MatchRegex, MatchWildcard:
		if c := m.compile(pattern); c.err != nil {
			return fmt.Errorf("%w: %s pattern %q: %v", ErrInvalidRule, pattern.MatchMode, pattern.Value, c.err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown match mode %q", ErrInvalidRule, pattern.MatchMode)
	}
}

func (m *Matcher) compile(pattern PatternDefinition) compiled {
	key := cacheKey{mode: pattern.MatchMode, value: pattern.Value, caseSensitive: pattern.CaseSensitive}

	m.mu.RLock()
	c, ok := m.cache[key]
	m.mu.RUnlock()
	if ok {
		return c
	}

	switch pattern.MatchMode {
	case MatchRegex:
		opts := regexp2.None
		if !pattern.CaseSensitive {
			opts = regexp2.IgnoreCase
		}
		re, err := regexp2.Compile(pattern.Value, opts)
		if err == nil {
			re.MatchTimeout = regexTimeout
		}
		c = compiled{regex: re, err: err}
	case MatchWildcard:
		value := pattern.Value
		if !pattern.CaseSensitive {
			value = strings.ToLower(value)
		}
		g, err := glob.Compile(value)
		c = compiled{glob: g, err: err}
	default:
		c = compiled{err: fmt.Errorf("mode %q is not compiled", pattern.MatchMode)}
	}

	m.mu.Lock()
	if len(m.cache) >= maxCachedPatterns {
		m.cache = make(map[cacheKey]compiled)
	}
	m.cache[key] = c
	m.mu.Unlock()
	return c
}

// Forget drops the compiled form of pattern, if cached.
func (m *Matcher) Forget(pattern PatternDefinition) {
	key := cacheKey{mode: pattern.MatchMode, value: pattern.Value, caseSensitive: pattern.CaseSensitive}
	m.mu.Lock()
	delete(m.cache, key)
	m.mu.Unlock()
}
