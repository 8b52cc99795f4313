package meeting

import (
	"sync"

	"github.com/google/uuid"
)

// State is a consistent copy of the tracked meeting slot. At most one of
// Ongoing and PendingEnd is non-nil.
type State struct {
	Ongoing       *StartedMeeting
	MatchedRuleID uuid.UUID
	PendingEnd    *PendingEndMeeting
	Postponement  *Postponement
}

func (s State) clone() State {
	out := State{MatchedRuleID: s.MatchedRuleID}
	if s.Ongoing != nil {
		m := *s.Ongoing
		out.Ongoing = &m
	}
	if s.PendingEnd != nil {
		p := *s.PendingEnd
		out.PendingEnd = &p
	}
	if s.Postponement != nil {
		p := *s.Postponement
		out.Postponement = &p
	}
	return out
}

// StateCache holds the single in-flight meeting slot behind one lock.
// Every mutation bumps a generation counter so a caller that read the state
// before slow work can tell whether it is still current.
type StateCache struct {
	mu    sync.Mutex
	state State
	gen   uint64
}

// NewStateCache returns an empty cache.
func NewStateCache() *StateCache {
	return &StateCache{}
}

// Snapshot returns a copy of the state and its generation.
func (c *StateCache) Snapshot() (State, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone(), c.gen
}

// Update applies fn to the state atomically. The state is kept unchanged
// when fn returns an error.
func (c *StateCache) Update(fn func(s *State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	c.state = next
	c.gen++
	return nil
}

// UpdateIf applies fn only if the state is still at generation gen and
// reports whether it did.
func (c *StateCache) UpdateIf(gen uint64, fn func(s *State)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	next := c.state.clone()
	fn(&next)
	c.state = next
	c.gen++
	return true
}

// GetOngoingMeeting returns a copy of the ongoing meeting, or nil.
func (c *StateCache) GetOngoingMeeting() *StartedMeeting {
	s, _ := c.Snapshot()
	return s.Ongoing
}

// SetOngoingMeeting stores m as ongoing. A non-nil m clears any pending end.
func (c *StateCache) SetOngoingMeeting(m *StartedMeeting) {
	_ = c.Update(func(s *State) error {
		s.setOngoing(m)
		return nil
	})
}

// GetMatchedRuleID returns the rule that matched the ongoing meeting.
func (c *StateCache) GetMatchedRuleID() uuid.UUID {
	s, _ := c.Snapshot()
	return s.MatchedRuleID
}

// SetMatchedRuleID stores the rule that matched the ongoing meeting.
func (c *StateCache) SetMatchedRuleID(id uuid.UUID) {
	_ = c.Update(func(s *State) error {
		s.MatchedRuleID = id
		return nil
	})
}

// GetPendingEndMeeting returns a copy of the pending-end meeting, or nil.
func (c *StateCache) GetPendingEndMeeting() *PendingEndMeeting {
	s, _ := c.Snapshot()
	return s.PendingEnd
}

// SetPendingEndMeeting stores p. A non-nil p clears the ongoing meeting and
// matched rule id.
func (c *StateCache) SetPendingEndMeeting(p *PendingEndMeeting) {
	_ = c.Update(func(s *State) error {
		s.setPending(p)
		return nil
	})
}

// GetPostponement returns a copy of the active postponement, or nil.
func (c *StateCache) GetPostponement() *Postponement {
	s, _ := c.Snapshot()
	return s.Postponement
}

// SetPostponement stores p; nil clears it.
func (c *StateCache) SetPostponement(p *Postponement) {
	_ = c.Update(func(s *State) error {
		if p == nil {
			s.Postponement = nil
			return nil
		}
		cp := *p
		s.Postponement = &cp
		return nil
	})
}

// ClearMeetingState empties the slot, postponement included.
func (c *StateCache) ClearMeetingState() {
	_ = c.Update(func(s *State) error {
		s.clear()
		return nil
	})
}

func (s *State) setOngoing(m *StartedMeeting) {
	if m == nil {
		s.Ongoing = nil
		return
	}
	cp := *m
	s.Ongoing = &cp
	s.PendingEnd = nil
}

func (s *State) setPending(p *PendingEndMeeting) {
	if p == nil {
		s.PendingEnd = nil
		return
	}
	cp := *p
	s.PendingEnd = &cp
	s.Ongoing = nil
	s.MatchedRuleID = uuid.Nil
}

func (s *State) clear() {
	*s = State{}
}

// tracked returns the meeting held in either the ongoing or pending slot.
func (s *State) tracked() *StartedMeeting {
	if s.Ongoing != nil {
		return s.Ongoing
	}
	if s.PendingEnd != nil {
		return &s.PendingEnd.Meeting
	}
	return nil
}
