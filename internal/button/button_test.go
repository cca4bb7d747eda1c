package button

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/pomodoro/internal/gpio"
)

type fakeClock interface {
	clockwork.Clock
	Advance(time.Duration)
	BlockUntilContext(context.Context, int) error
}

// press drives one clean gesture on an idle-high line. The waiting goroutine
// must be about to sleep out the first debounce window; others is the number
// of unrelated timers pending on the clock.
func press(t *testing.T, ctx context.Context, fc fakeClock, line *gpio.FakeLine, others int) {
	t.Helper()
	require.NoError(t, fc.BlockUntilContext(ctx, others+1))
	fc.Advance(DebounceWindow)
	line.Set(false)
	require.NoError(t, fc.BlockUntilContext(ctx, others+1))
	fc.Advance(DebounceWindow)
	line.Set(true)
}

func assertPending(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		t.Fatalf("returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestWaitForPressCleanGesture(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fc := clockwork.NewFakeClock()
	line := gpio.NewFakeLine(true)
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	done := make(chan error, 1)
	go func() { done <- WaitForPress(ctx, line, fc, log) }()

	press(t, ctx, fc, line, 0)
	require.NoError(t, <-done)

	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"waiting for high", "waiting for low", "waiting for high again"}, msgs)
}

func TestWaitForPressWaitsOutBothWindows(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fc := clockwork.NewFakeClock()
	line := gpio.NewFakeLine(true)
	log, _ := test.NewNullLogger()

	done := make(chan error, 1)
	go func() { done <- WaitForPress(ctx, line, fc, log) }()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	line.Set(false)
	line.Set(true)
	assertPending(t, done)

	fc.Advance(DebounceWindow - time.Millisecond)
	assertPending(t, done)
	fc.Advance(time.Millisecond)

	line.Set(false)
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	// Released inside the second window: not reported until the window ends.
	line.Set(true)
	assertPending(t, done)

	fc.Advance(DebounceWindow)
	require.NoError(t, <-done)
}

func TestWaitForPressReportsOncePerBouncyActuation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fc := clockwork.NewFakeClock()
	line := gpio.NewFakeLine(true)
	log, _ := test.NewNullLogger()

	presses := make(chan struct{}, 10)
	go func() {
		for WaitForPress(ctx, line, fc, log) == nil {
			presses <- struct{}{}
		}
	}()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(DebounceWindow)

	// Contact closes with bounces.
	line.Set(false)
	line.Set(true)
	line.Set(false)
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	line.Set(true)
	line.Set(false)
	fc.Advance(DebounceWindow)

	// Contact opens with bounces.
	line.Set(true)
	line.Set(false)
	line.Set(true)

	select {
	case <-presses:
	case <-ctx.Done():
		t.Fatal("press not reported")
	}

	// The next gesture is waiting in its first window; let it expire with the
	// line settled high.
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(DebounceWindow)

	select {
	case <-presses:
		t.Fatal("bounces reported as a second press")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWaitForPressStuckLine(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fc := clockwork.NewFakeClock()
	line := gpio.NewFakeLine(false)
	log, _ := test.NewNullLogger()

	done := make(chan error, 1)
	go func() { done <- WaitForPress(ctx, line, fc, log) }()
	assertPending(t, done)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWaitForPressesRequiresExactlyN(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fc := clockwork.NewFakeClock()
	line := gpio.NewFakeLine(true)
	log, _ := test.NewNullLogger()

	done := make(chan error, 1)
	go func() { done <- WaitForPresses(ctx, line, fc, 3, log) }()

	press(t, ctx, fc, line, 0)
	assertPending(t, done)
	press(t, ctx, fc, line, 0)
	assertPending(t, done)
	press(t, ctx, fc, line, 0)
	require.NoError(t, <-done)
}

func TestWaitForPressesZero(t *testing.T) {
	log, _ := test.NewNullLogger()
	line := gpio.NewFakeLine(false)
	err := WaitForPresses(context.Background(), line, clockwork.NewFakeClock(), 0, log)
	assert.NoError(t, err)
}
