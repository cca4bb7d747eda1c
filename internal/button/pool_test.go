package button

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/pomodoro/internal/gpio"
	"github.com/sweeney/pomodoro/internal/notify"
)

// brokenLine fails every wait.
type brokenLine struct{ *gpio.FakeLine }

func (brokenLine) WaitForHigh(context.Context) error { return errors.New("line fault") }

func newTestPool(ctx context.Context, fc clockwork.Clock, size int, onSignal func(string)) *Pool {
	log, _ := test.NewNullLogger()
	return NewPool(ctx, PoolConfig{
		Size:     size,
		Presses:  3,
		Clock:    fc,
		Logger:   log,
		OnSignal: onSignal,
	})
}

func TestPoolSpawnBeyondSize(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := newTestPool(ctx, clockwork.NewFakeClock(), 2, nil)

	require.NoError(t, p.Spawn("sw1", gpio.NewFakeLine(false), notify.New()))
	require.NoError(t, p.Spawn("sw2", gpio.NewFakeLine(false), notify.New()))

	err := p.Spawn("sw3", gpio.NewFakeLine(false), notify.New())
	assert.ErrorIs(t, err, ErrPoolExhausted)

	cancel()
	assert.NoError(t, p.Wait())
}

func TestPoolWorkerSignalsAfterThreePresses(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runCtx, stop := context.WithCancel(ctx)

	fc := clockwork.NewFakeClock()
	var (
		mu       sync.Mutex
		signaled []string
	)
	p := newTestPool(runCtx, fc, 2, func(name string) {
		mu.Lock()
		signaled = append(signaled, name)
		mu.Unlock()
	})

	line := gpio.NewFakeLine(true)
	sig := notify.New()
	require.NoError(t, p.Spawn("sw1", line, sig))

	press(t, ctx, fc, line, 0)
	press(t, ctx, fc, line, 0)
	assert.False(t, sig.Signaled(), "two presses must not signal")

	press(t, ctx, fc, line, 0)
	require.NoError(t, sig.Wait(ctx))

	// The worker keeps counting after signalling.
	press(t, ctx, fc, line, 0)
	press(t, ctx, fc, line, 0)
	press(t, ctx, fc, line, 0)
	require.NoError(t, sig.Wait(ctx))

	stop()
	require.NoError(t, p.Wait())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"sw1", "sw1"}, signaled)
}

func TestPoolResetDiscardsPartialCount(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	runCtx, stop := context.WithCancel(ctx)

	fc := clockwork.NewFakeClock()
	p := newTestPool(runCtx, fc, 1, nil)
	line := gpio.NewFakeLine(true)
	sig := notify.New()
	require.NoError(t, p.Spawn("sw1", line, sig))

	press(t, ctx, fc, line, 0)
	press(t, ctx, fc, line, 0)
	// Worker is debouncing the start of its next gesture.
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	sig.Reset()

	press(t, ctx, fc, line, 0)
	press(t, ctx, fc, line, 0)
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	assert.False(t, sig.Signaled(), "presses before Reset must not count")

	press(t, ctx, fc, line, 0)
	require.NoError(t, sig.Wait(ctx))

	stop()
	require.NoError(t, p.Wait())
}

func TestPoolWorkerErrorStopsPool(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p := newTestPool(ctx, clockwork.NewFakeClock(), 2, nil)
	require.NoError(t, p.Spawn("healthy", gpio.NewFakeLine(false), notify.New()))
	require.NoError(t, p.Spawn("broken", brokenLine{gpio.NewFakeLine(true)}, notify.New()))

	err := p.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "button broken")
	assert.Contains(t, err.Error(), "line fault")
}
