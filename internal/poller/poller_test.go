package poller_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/worklog/internal/clock"
	"github.com/rpggio/worklog/internal/poller"
	"github.com/rpggio/worklog/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPoller_PollsImmediatelyAndOnEachTick(t *testing.T) {
	clk := clock.Fake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	calls := make(chan struct{}, 10)
	rec := &mocks.Recognizer{}
	rec.On("RecognizeActivity", mock.Anything).Run(func(mock.Arguments) {
		calls <- struct{}{}
	}).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.New(rec, clk, 30*time.Second, nil).Run(ctx) }()

	waitCall(t, calls)
	clk.WaitForTickers(1)

	clk.Advance(30 * time.Second)
	waitCall(t, calls)
	clk.Advance(30 * time.Second)
	waitCall(t, calls)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	rec.AssertNumberOfCalls(t, "RecognizeActivity", 3)
}

func TestPoller_ContinuesAfterError(t *testing.T) {
	clk := clock.Fake(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	calls := make(chan struct{}, 10)
	rec := &mocks.Recognizer{}
	rec.On("RecognizeActivity", mock.Anything).Run(func(mock.Arguments) {
		calls <- struct{}{}
	}).Return(errors.New("rules unavailable"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = poller.New(rec, clk, time.Minute, nil).Run(ctx) }()

	waitCall(t, calls)
	clk.WaitForTickers(1)
	clk.Advance(time.Minute)
	waitCall(t, calls)
}

func TestPoller_RejectsNonPositiveInterval(t *testing.T) {
	err := poller.New(&mocks.Recognizer{}, clock.Fake(time.Now()), 0, nil).Run(context.Background())
	require.Error(t, err)
}

func waitCall(t *testing.T, calls <-chan struct{}) {
	t.Helper()
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("recognizer was not called")
	}
}
