package meeting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/clock"
	"github.com/rpggio/worklog/internal/event"
)

const (
	// DefaultGracePeriod is how long a meeting may go undetected before it
	// is ended automatically.
	DefaultGracePeriod = 2 * time.Minute
	// MaxDescriptionLength is the longest description, in characters,
	// accepted when ending a meeting manually.
	MaxDescriptionLength = 500
	// MaxPostpone is the furthest ahead an end check can be postponed.
	MaxPostpone = 24 * time.Hour
)

// Config tunes the tracker.
type Config struct {
	GracePeriod time.Duration
	// CloseReplacedMeetings ends the ongoing meeting when a different
	// meeting replaces it. When false the replaced meeting is dropped.
	CloseReplacedMeetings bool
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{GracePeriod: DefaultGracePeriod, CloseReplacedMeetings: true}
}

// Tracker runs the meeting lifecycle: polls the discovery strategy,
// debounces the result into start, pending-end and end transitions, and
// applies user corrections.
type Tracker struct {
	strategy  DiscoveryStrategy
	meetings  Repository
	publisher EventPublisher
	clock     clock.Clock
	cfg       Config
	logger    *slog.Logger

	cache  *StateCache
	pollMu sync.Mutex
}

// NewTracker creates a tracker with an empty state. A non-positive grace
// period falls back to DefaultGracePeriod.
func NewTracker(strategy DiscoveryStrategy, meetings Repository, publisher EventPublisher, clk clock.Clock, cfg Config, logger *slog.Logger) *Tracker {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{
		strategy:  strategy,
		meetings:  meetings,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
		cache:     NewStateCache(),
	}
}

type endedOutcome struct {
	meeting EndedMeeting
	reason  EndReason
}

// outcome collects the side effects of one transition, applied after the
// cache lock is released.
type outcome struct {
	ended   []endedOutcome
	pending *PendingEndMeeting
	started *StartedMeeting
	resumed *StartedMeeting
	ruleID  uuid.UUID
}

// RecognizeActivity runs one poll. Polls are serialized; user actions are
// not blocked by a poll in flight, and a poll whose input state was changed
// by a user action is discarded.
func (t *Tracker) RecognizeActivity(ctx context.Context) error {
	t.pollMu.Lock()
	defer t.pollMu.Unlock()

	now := t.clock.Now()
	state, gen := t.cache.Snapshot()
	if p := state.Postponement; p != nil && now.Before(p.PostponedUntil) {
		t.logger.Debug("detection postponed", "meeting", p.MeetingGUID, "until", p.PostponedUntil)
		return nil
	}

	recognized, ruleID, err := t.strategy.RecognizeMeeting(ctx, state.Ongoing, state.MatchedRuleID)
	if err != nil {
		return fmt.Errorf("recognizing meeting: %w", err)
	}
	// A canceled poll says nothing about the meeting.
	if err := ctx.Err(); err != nil {
		return err
	}

	var out outcome
	applied := t.cache.UpdateIf(gen, func(s *State) {
		out = t.transition(s, recognized, ruleID, now)
	})
	if !applied {
		t.logger.Debug("meeting state changed during poll, discarding result")
		return nil
	}
	return t.apply(ctx, now, out)
}

func (t *Tracker) transition(s *State, recognized *StartedMeeting, ruleID uuid.UUID, now time.Time) outcome {
	var out outcome
	// Only an expired postponement can reach this point.
	s.Postponement = nil

	switch {
	case recognized != nil && s.PendingEnd != nil && ruleID == s.PendingEnd.RuleID:
		// Same rule again: the pending meeting continues unchanged.
		resumed := s.PendingEnd.Meeting
		s.setOngoing(&resumed)
		s.MatchedRuleID = ruleID
		out.resumed, out.ruleID = &resumed, ruleID

	case recognized != nil && s.PendingEnd != nil:
		if t.cfg.CloseReplacedMeetings {
			out.ended = append(out.ended, endedOutcome{
				meeting: newEndedMeeting(s.PendingEnd.Meeting, s.PendingEnd.DetectedAt, ""),
				reason:  EndReasonReplaced,
			})
		}
		s.setOngoing(recognized)
		s.MatchedRuleID = ruleID
		out.started, out.ruleID = recognized, ruleID

	case recognized != nil && s.Ongoing == nil:
		s.setOngoing(recognized)
		s.MatchedRuleID = ruleID
		out.started, out.ruleID = recognized, ruleID

	case recognized != nil && s.Ongoing.GUID == recognized.GUID:
		s.MatchedRuleID = ruleID

	case recognized != nil:
		if t.cfg.CloseReplacedMeetings {
			out.ended = append(out.ended, endedOutcome{
				meeting: newEndedMeeting(*s.Ongoing, now, ""),
				reason:  EndReasonReplaced,
			})
		}
		s.setOngoing(recognized)
		s.MatchedRuleID = ruleID
		out.started, out.ruleID = recognized, ruleID

	case s.Ongoing != nil:
		pending := &PendingEndMeeting{Meeting: *s.Ongoing, DetectedAt: now, RuleID: s.MatchedRuleID}
		s.setPending(pending)
		out.pending = pending

	case s.PendingEnd != nil:
		if now.Sub(s.PendingEnd.DetectedAt) < t.cfg.GracePeriod {
			return out
		}
		out.ended = append(out.ended, endedOutcome{
			meeting: newEndedMeeting(s.PendingEnd.Meeting, now, ""),
			reason:  EndReasonAutoConfirmed,
		})
		s.clear()
	}
	return out
}

func (t *Tracker) apply(ctx context.Context, now time.Time, out outcome) error {
	var errs []error
	for _, e := range out.ended {
		if err := t.finish(ctx, now, e.meeting, e.reason); err != nil {
			errs = append(errs, err)
		}
	}
	if out.pending != nil {
		t.logger.Info("meeting no longer detected, awaiting confirmation",
			"meeting", out.pending.Meeting.GUID, "title", out.pending.Meeting.Title)
		if err := t.publish(ctx, newEndConfirmationRequestedEvent(now, *out.pending)); err != nil {
			errs = append(errs, err)
		}
	}
	if out.resumed != nil {
		t.logger.Info("meeting detected again, end confirmation withdrawn",
			"meeting", out.resumed.GUID, "title", out.resumed.Title, "rule", out.ruleID)
	}
	if out.started != nil {
		t.logger.Info("meeting started",
			"meeting", out.started.GUID, "title", out.started.Title, "rule", out.ruleID)
		if err := t.publish(ctx, newStartedEvent(now, *out.started, out.ruleID)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// finish persists an ended meeting and publishes its event. The event is
// published even when persistence fails.
func (t *Tracker) finish(ctx context.Context, now time.Time, m EndedMeeting, reason EndReason) error {
	var errs []error
	if err := t.meetings.Save(ctx, &m); err != nil {
		t.logger.Error("saving ended meeting", "meeting", m.GUID, "error", err)
		errs = append(errs, fmt.Errorf("saving ended meeting: %w", err))
	}
	t.logger.Info("meeting ended",
		"meeting", m.GUID, "title", m.Title, "reason", reason, "duration", m.Duration())
	if err := t.publish(ctx, newEndedEvent(now, m, reason)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (t *Tracker) publish(ctx context.Context, e event.Event) error {
	if err := t.publisher.Publish(ctx, e); err != nil {
		t.logger.Error("publishing event", "event", e.EventType(), "error", err)
		return fmt.Errorf("publishing %s: %w", e.EventType(), err)
	}
	return nil
}

// ConfirmMeetingEnd ends the pending-end meeting identified by guid.
// customEndTime defaults to now and must lie within [start, now].
func (t *Tracker) ConfirmMeetingEnd(ctx context.Context, guid uuid.UUID, description string, customEndTime *time.Time) (*EndedMeeting, error) {
	now := t.clock.Now()
	var ended EndedMeeting
	err := t.cache.Update(func(s *State) error {
		if s.PendingEnd == nil || s.PendingEnd.Meeting.GUID != guid {
			return ErrMeetingNotFound
		}
		end, err := resolveEndTime(s.PendingEnd.Meeting.StartDate, customEndTime, now)
		if err != nil {
			return err
		}
		ended = newEndedMeeting(s.PendingEnd.Meeting, end, description)
		s.clear()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := t.finish(ctx, now, ended, EndReasonConfirmed); err != nil {
		return &ended, err
	}
	return &ended, nil
}

// EndMeetingManually ends the ongoing meeting identified by guid and clears
// any postponement.
func (t *Tracker) EndMeetingManually(ctx context.Context, guid uuid.UUID, description string, customEndTime *time.Time) (*EndedMeeting, error) {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, invalid("description", fmt.Sprintf("description cannot exceed %d characters", MaxDescriptionLength))
	}

	now := t.clock.Now()
	var ended EndedMeeting
	err := t.cache.Update(func(s *State) error {
		if s.Ongoing == nil || s.Ongoing.GUID != guid {
			return ErrMeetingNotFound
		}
		end, err := resolveEndTime(s.Ongoing.StartDate, customEndTime, now)
		if err != nil {
			return err
		}
		ended = newEndedMeeting(*s.Ongoing, end, description)
		s.clear()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := t.finish(ctx, now, ended, EndReasonManual); err != nil {
		return &ended, err
	}
	return &ended, nil
}

// PostponeCheck suspends detection for the tracked meeting until until,
// which must lie within (now, now+24h]. A pending-end meeting is restored
// to ongoing first.
func (t *Tracker) PostponeCheck(ctx context.Context, guid uuid.UUID, until time.Time) (*Postponement, error) {
	now := t.clock.Now()
	if !until.After(now) {
		return nil, invalid("postpone_until", "postpone time must be in the future")
	}
	if until.Sub(now) > MaxPostpone {
		return nil, invalid("postpone_until", "postpone time cannot exceed 24 hours")
	}

	postponement := Postponement{MeetingGUID: guid, PostponedUntil: until}
	err := t.cache.Update(func(s *State) error {
		tracked := s.tracked()
		if tracked == nil || tracked.GUID != guid {
			return invalid("meeting_id", "meeting id does not match the tracked meeting")
		}
		if p := s.PendingEnd; p != nil {
			s.setOngoing(&p.Meeting)
			s.MatchedRuleID = p.RuleID
		}
		s.Postponement = &postponement
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Info("meeting end check postponed", "meeting", guid, "until", until)
	if err := t.publish(ctx, newCheckPostponedEvent(now, postponement)); err != nil {
		return &postponement, err
	}
	return &postponement, nil
}

// GetOngoingMeeting returns the ongoing meeting, or nil.
func (t *Tracker) GetOngoingMeeting() *StartedMeeting {
	return t.cache.GetOngoingMeeting()
}

// GetPendingEndMeeting returns the meeting awaiting end confirmation, or nil.
func (t *Tracker) GetPendingEndMeeting() *PendingEndMeeting {
	return t.cache.GetPendingEndMeeting()
}

// GetPostponement returns the active postponement, or nil.
func (t *Tracker) GetPostponement() *Postponement {
	return t.cache.GetPostponement()
}

// State returns a consistent copy of the whole meeting slot.
func (t *Tracker) State() State {
	s, _ := t.cache.Snapshot()
	return s
}

// GetEndedMeetings lists persisted ended meetings.
func (t *Tracker) GetEndedMeetings(ctx context.Context, opts ListOptions) ([]EndedMeeting, error) {
	meetings, err := t.meetings.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing ended meetings: %w", err)
	}
	return meetings, nil
}

func resolveEndTime(start time.Time, custom *time.Time, now time.Time) (time.Time, error) {
	if custom == nil {
		return now, nil
	}
	end := *custom
	if end.Before(start) {
		return time.Time{}, invalid("end_time", "end time cannot be before meeting start time")
	}
	if end.After(now) {
		return time.Time{}, invalid("end_time", "end time cannot be in the future")
	}
	return end, nil
}
