package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/repository"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func endedAt(title string, start, end time.Duration) *meeting.EndedMeeting {
	return &meeting.EndedMeeting{
		GUID:      uuid.New(),
		Title:     title,
		StartDate: day.Add(start),
		EndDate:   day.Add(end),
	}
}

func TestMeetingRepository_SaveGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()

	m := endedAt("Daily Standup | Microsoft Teams", 9*time.Hour, 9*time.Hour+15*time.Minute)
	m.CustomDescription = "Standup"
	require.NoError(t, repo.Save(ctx, m))

	got, err := repo.Get(ctx, m.GUID)
	require.NoError(t, err)
	require.Equal(t, m.GUID, got.GUID)
	require.Equal(t, m.Title, got.Title)
	require.Equal(t, "Standup", got.Description())
	require.True(t, m.StartDate.Equal(got.StartDate))
	require.True(t, m.EndDate.Equal(got.EndDate))
	require.Equal(t, 15*time.Minute, got.Duration())

	require.ErrorIs(t, repo.Save(ctx, m), repository.ErrConflict)

	_, err = repo.Get(ctx, uuid.New())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMeetingRepository_ListFilters(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMeetingRepository(db)
	ctx := context.Background()

	early := endedAt("early", 8*time.Hour, 9*time.Hour)
	mid := endedAt("mid", 10*time.Hour, 11*time.Hour)
	late := endedAt("late", 14*time.Hour, 15*time.Hour)
	for _, m := range []*meeting.EndedMeeting{mid, late, early} {
		require.NoError(t, repo.Save(ctx, m))
	}

	all, err := repo.List(ctx, meeting.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "late", all[0].Title)
	require.Equal(t, "early", all[2].Title)

	since := day.Add(10 * time.Hour)
	until := day.Add(12 * time.Hour)
	window, err := repo.List(ctx, meeting.ListOptions{Since: &since, Until: &until})
	require.NoError(t, err)
	require.Len(t, window, 1)
	require.Equal(t, "mid", window[0].Title)

	page, err := repo.List(ctx, meeting.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "mid", page[0].Title)

	skip, err := repo.List(ctx, meeting.ListOptions{Offset: 2})
	require.NoError(t, err)
	require.Len(t, skip, 1)
	require.Equal(t, "early", skip[0].Title)
}
