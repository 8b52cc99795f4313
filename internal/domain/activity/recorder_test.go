package activity_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/domain/activity"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/event"
	"github.com/rpggio/worklog/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func TestEntryFor_EndedEvent(t *testing.T) {
	guid := uuid.New()
	ended := meeting.EndedEvent{
		Base: event.NewBase(meeting.EventEnded, at),
		Meeting: meeting.EndedMeeting{
			GUID:              guid,
			StartDate:         at.Add(-30 * time.Minute),
			EndDate:           at,
			Title:             "Daily Standup | Microsoft Teams",
			CustomDescription: "Standup",
		},
		Reason: meeting.EndReasonConfirmed,
	}

	entry, ok := activity.EntryFor(ended)
	require.True(t, ok)
	require.Equal(t, activity.TypeMeetingEnded, entry.ActivityType)
	require.Equal(t, guid.String(), *entry.MeetingID)
	require.Equal(t, "Meeting ended (confirmed): Standup", entry.Summary)
	require.Equal(t, at, entry.CreatedAt)

	var details map[string]any
	require.NoError(t, json.Unmarshal([]byte(entry.Details), &details))
	require.Equal(t, "confirmed", details["reason"])
}

func TestEntryFor_IgnoresUnknownEvents(t *testing.T) {
	_, ok := activity.EntryFor(event.NewBase("poller.tick", at))
	require.False(t, ok)
}

func TestRecorder_RecordsBusEvents(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	var logged []*activity.ActivityEntry
	repo.On("Log", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		logged = append(logged, args.Get(1).(*activity.ActivityEntry))
	}).Return(nil)

	bus := event.NewBus(nil)
	activity.NewRecorder(activity.NewService(repo, nil)).Attach(bus)

	started := meeting.StartedMeeting{GUID: uuid.New(), StartDate: at, Title: "Zoom Meeting"}
	require.NoError(t, bus.Publish(context.Background(), meeting.StartedEvent{
		Base:    event.NewBase(meeting.EventStarted, at),
		Meeting: started,
	}))
	require.NoError(t, bus.Publish(context.Background(), meeting.CheckPostponedEvent{
		Base:         event.NewBase(meeting.EventCheckPostponed, at),
		Postponement: meeting.Postponement{MeetingGUID: started.GUID, PostponedUntil: at.Add(time.Hour)},
	}))

	require.Len(t, logged, 2)
	require.Equal(t, activity.TypeMeetingStarted, logged[0].ActivityType)
	require.Equal(t, "Meeting started: Zoom Meeting", logged[0].Summary)
	require.Equal(t, activity.TypeMeetingCheckPostponed, logged[1].ActivityType)
	require.Equal(t, "End check postponed until 10:30", logged[1].Summary)
}

func TestRecorder_RepositoryFailureIsSwallowed(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	repo.On("Log", mock.Anything, mock.Anything).Return(errors.New("locked"))

	rec := activity.NewRecorder(activity.NewService(repo, nil))
	require.NotPanics(t, func() {
		rec.Handle(context.Background(), meeting.EndConfirmationRequestedEvent{
			Base: event.NewBase(meeting.EventEndConfirmationRequested, at),
		})
	})
	repo.AssertNumberOfCalls(t, "Log", 1)
}
