// Package clock holds cancellable waits on an injectable clock.
package clock

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Sleep waits for d on c, or until ctx is done. The underlying timer is
// stopped on cancellation so nothing is left pending on c.
func Sleep(ctx context.Context, c clockwork.Clock, d time.Duration) error {
	t := c.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Countdown returns a function that sleeps for d, suitable for racing.
func Countdown(c clockwork.Clock, d time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		return Sleep(ctx, c, d)
	}
}
