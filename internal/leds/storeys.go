// Package leds renders animations on the storey LEDs.
package leds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sweeney/pomodoro/internal/clock"
	"github.com/sweeney/pomodoro/internal/gpio"
)

// Storeys is a column of LEDs, bottom to top.
type Storeys struct {
	leds  []gpio.Output
	clock clockwork.Clock
}

// NewStoreys creates Storeys over leds.
func NewStoreys(leds []gpio.Output, c clockwork.Clock) *Storeys {
	return &Storeys{leds: leds, clock: c}
}

// Len returns the number of storeys.
func (s *Storeys) Len() int {
	return len(s.leds)
}

// Cycle fills the storeys from the bottom, one per step, then clears them.
// It completes after Len() steps. On cancellation all storeys are switched off.
func (s *Storeys) Cycle(ctx context.Context, step time.Duration) error {
	for i, led := range s.leds {
		if err := led.On(); err != nil {
			return fmt.Errorf("storey %d on: %w", i, err)
		}
		if err := clock.Sleep(ctx, s.clock, step); err != nil {
			return errors.Join(err, s.AllOff())
		}
	}
	return s.AllOff()
}

// Blink flashes all storeys on for half a step and off for half a step until
// ctx is done. It never completes on its own.
func (s *Storeys) Blink(ctx context.Context, step time.Duration) error {
	half := step / 2
	for {
		if err := s.all(true); err != nil {
			return err
		}
		if err := clock.Sleep(ctx, s.clock, half); err != nil {
			return errors.Join(err, s.AllOff())
		}
		if err := s.AllOff(); err != nil {
			return err
		}
		if err := clock.Sleep(ctx, s.clock, step-half); err != nil {
			return err
		}
	}
}

// AllOff switches every storey off.
func (s *Storeys) AllOff() error {
	return s.all(false)
}

func (s *Storeys) all(on bool) error {
	var errs []error
	for i, led := range s.leds {
		write := led.Off
		if on {
			write = led.On
		}
		if err := write(); err != nil {
			errs = append(errs, fmt.Errorf("storey %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
