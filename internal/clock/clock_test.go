package clock

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepReturnsAfterDuration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fc := clockwork.NewFakeClock()

	done := make(chan error, 1)
	go func() { done <- Sleep(ctx, fc, time.Minute) }()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(59 * time.Second)
	select {
	case err := <-done:
		t.Fatalf("Sleep returned early: %v", err)
	default:
	}

	fc.Advance(time.Second)
	require.NoError(t, <-done)
}

func TestSleepCancelledStopsTimer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fc := clockwork.NewFakeClock()

	done := make(chan error, 1)
	go func() { done <- Sleep(ctx, fc, time.Hour) }()

	wait, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, fc.BlockUntilContext(wait, 1))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	require.NoError(t, fc.BlockUntilContext(wait, 0), "timer should be stopped")
}

func TestCountdown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fc := clockwork.NewFakeClock()

	countdown := Countdown(fc, 25*time.Minute)
	done := make(chan error, 1)
	go func() { done <- countdown(ctx) }()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(25 * time.Minute)
	require.NoError(t, <-done)
}
