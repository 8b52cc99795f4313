package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at initial. Time moves only through
// Advance or Set; tickers fire as the clock passes their deadlines.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.tickersChanged = sync.NewCond(&c.mu)
	return c
}

// FakeClock is a deterministic Clock for tests. Safe for concurrent use.
type FakeClock struct {
	mu             sync.Mutex
	current        time.Time
	tickers        []*fakeTicker
	tickersChanged *sync.Cond
}

type fakeTicker struct {
	deadline time.Time
	interval time.Duration
	channel  chan time.Time
	stopped  bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NewTicker registers a ticker that fires every d of fake time.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ft := &fakeTicker{
		deadline: c.current.Add(d),
		interval: d,
		channel:  make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, ft)
	c.tickersChanged.Broadcast()

	return &Ticker{
		C: ft.channel,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			ft.stopped = true
		},
	}
}

// Advance moves the clock forward by d, firing every ticker whose deadline
// falls within the new time. A ticker spanning several intervals fires once
// per interval; sends that would block are dropped.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	var fire []chan time.Time
	for _, ft := range c.tickers {
		for !ft.stopped && !ft.deadline.After(target) {
			fire = append(fire, ft.channel)
			ft.deadline = ft.deadline.Add(ft.interval)
		}
	}
	c.mu.Unlock()

	for _, ch := range fire {
		select {
		case ch <- target:
		default:
		}
	}
}

// Set jumps the clock to t without firing tickers. Used by tests that
// only care about Now.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// WaitForTickers blocks until at least n unstopped tickers are registered,
// closing the race between a goroutine creating its ticker and the test
// advancing the clock.
func (c *FakeClock) WaitForTickers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.activeLocked() < n {
		c.tickersChanged.Wait()
	}
}

func (c *FakeClock) activeLocked() int {
	count := 0
	for _, ft := range c.tickers {
		if !ft.stopped {
			count++
		}
	}
	return count
}
