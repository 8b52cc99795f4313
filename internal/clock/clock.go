// Package clock abstracts the time source used by the meeting tracker and
// the poller so lifecycle timing can be driven deterministically in tests.
package clock

import "time"

// Clock provides the current time and periodic ticks.
type Clock interface {
	Now() time.Time
	// NewTicker panics if d <= 0, like time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers ticks on C until Stop is called. C has capacity 1; ticks
// are dropped when the consumer falls behind.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop turns off the ticker. It does not close C.
func (t *Ticker) Stop() { t.stop() }
