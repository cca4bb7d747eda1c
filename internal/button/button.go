// Package button turns a bouncing input line into clean press gestures and
// counts them.
package button

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/pomodoro/internal/clock"
	"github.com/sweeney/pomodoro/internal/gpio"
)

// DebounceWindow is the quiet period after each observed transition before the
// next one is trusted.
const DebounceWindow = 100 * time.Millisecond

// WaitForPress blocks until one complete press gesture has been observed on line:
// high, debounce window, low, debounce window, high again.
//
// The waits are strictly sequential; bounces inside a window are never seen.
// If the line is stuck, WaitForPress only returns when ctx is done.
func WaitForPress(ctx context.Context, line gpio.Line, c clockwork.Clock, log logrus.FieldLogger) error {
	log.Debug("waiting for high")
	if err := line.WaitForHigh(ctx); err != nil {
		return err
	}
	if err := clock.Sleep(ctx, c, DebounceWindow); err != nil {
		return err
	}

	log.Debug("waiting for low")
	if err := line.WaitForLow(ctx); err != nil {
		return err
	}
	if err := clock.Sleep(ctx, c, DebounceWindow); err != nil {
		return err
	}

	log.Debug("waiting for high again")
	return line.WaitForHigh(ctx)
}

// WaitForPresses blocks until n press gestures have completed on line.
// Progress is not observable; n <= 0 returns immediately.
func WaitForPresses(ctx context.Context, line gpio.Line, c clockwork.Clock, n int, log logrus.FieldLogger) error {
	return countPresses(ctx, line, c, n, nil, log)
}

// countPresses waits for n gestures like WaitForPresses. When generation is
// not nil and its value changes, the gestures completed before the change are
// discarded and the count starts again from the press that observed it.
func countPresses(ctx context.Context, line gpio.Line, c clockwork.Clock, n int, generation func() uint64, log logrus.FieldLogger) error {
	var gen uint64
	if generation != nil {
		gen = generation()
	}
	for count := 0; count < n; count++ {
		if err := WaitForPress(ctx, line, c, log); err != nil {
			return err
		}
		if generation == nil {
			continue
		}
		if g := generation(); g != gen {
			if count > 0 {
				log.WithField("discarded", count).Debug("press count reset")
			}
			gen, count = g, 0
		}
	}
	return nil
}
