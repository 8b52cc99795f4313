package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/domain/activity"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/rpggio/worklog/internal/event"
	"github.com/rpggio/worklog/internal/process"
	"github.com/stretchr/testify/mock"
)

// RuleRepository is a mock for rule.Repository.
type RuleRepository struct {
	mock.Mock
}

func (m *RuleRepository) Create(ctx context.Context, r *rule.Rule) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *RuleRepository) CreateAll(ctx context.Context, rules []*rule.Rule) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

func (m *RuleRepository) Get(ctx context.Context, id uuid.UUID) (*rule.Rule, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*rule.Rule); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RuleRepository) List(ctx context.Context) ([]rule.Rule, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]rule.Rule); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RuleRepository) IncrementMatchCount(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MeetingRepository is a mock for meeting.Repository.
type MeetingRepository struct {
	mock.Mock
}

func (m *MeetingRepository) Save(ctx context.Context, ended *meeting.EndedMeeting) error {
	args := m.Called(ctx, ended)
	return args.Error(0)
}

func (m *MeetingRepository) List(ctx context.Context, opts meeting.ListOptions) ([]meeting.EndedMeeting, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]meeting.EndedMeeting); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProcessSource is a mock for process.Source.
type ProcessSource struct {
	mock.Mock
}

func (m *ProcessSource) GetProcesses(ctx context.Context) ([]process.Snapshot, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]process.Snapshot); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// DiscoveryStrategy is a mock for meeting.DiscoveryStrategy.
type DiscoveryStrategy struct {
	mock.Mock
}

func (m *DiscoveryStrategy) RecognizeMeeting(ctx context.Context, previous *meeting.StartedMeeting, previousRuleID uuid.UUID) (*meeting.StartedMeeting, uuid.UUID, error) {
	args := m.Called(ctx, previous, previousRuleID)
	var id uuid.UUID
	if v, ok := args.Get(1).(uuid.UUID); ok {
		id = v
	}
	if started, ok := args.Get(0).(*meeting.StartedMeeting); ok {
		return started, id, args.Error(2)
	}
	return nil, id, args.Error(2)
}

// EventPublisher is a mock for meeting.EventPublisher.
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, e event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// Recognizer is a mock for poller.Recognizer.
type Recognizer struct {
	mock.Mock
}

func (m *Recognizer) RecognizeActivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
