//go:build linux

package gpio

import (
	"context"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// CdevLine is a button input on the Linux GPIO character device. Level changes
// are delivered by kernel edge events rather than polling.
type CdevLine struct {
	line  *gpiocdev.Line
	watch *levelWatch
}

// NewCdevLine requests offset on chip as an input with pull-up and edge
// detection on both edges. With activeLow the logical level is inverted by the
// kernel, so a grounded line reads high.
func NewCdevLine(chip string, offset int, activeLow bool) (*CdevLine, error) {
	l := &CdevLine{watch: newLevelWatch(false)}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(l.handleEvent),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request input line %d: %w", offset, err)
	}

	v, err := line.Value()
	if err != nil {
		line.Close()
		return nil, fmt.Errorf("read input line %d: %w", offset, err)
	}
	l.line = line
	l.watch.set(v == 1)

	return l, nil
}

func (l *CdevLine) handleEvent(evt gpiocdev.LineEvent) {
	switch evt.Type {
	case gpiocdev.LineEventRisingEdge:
		l.watch.set(true)
	case gpiocdev.LineEventFallingEdge:
		l.watch.set(false)
	}
}

// WaitForHigh blocks until the line is high.
func (l *CdevLine) WaitForHigh(ctx context.Context) error {
	return l.watch.waitFor(ctx, true)
}

// WaitForLow blocks until the line is low.
func (l *CdevLine) WaitForLow(ctx context.Context) error {
	return l.watch.waitFor(ctx, false)
}

// Level returns the last observed logical level.
func (l *CdevLine) Level() bool {
	return l.watch.get()
}

// Close releases the line.
func (l *CdevLine) Close() error {
	if err := l.line.Close(); err != nil {
		return fmt.Errorf("close input line: %w", err)
	}
	return nil
}

// CdevOutput drives an LED on the Linux GPIO character device.
type CdevOutput struct {
	line *gpiocdev.Line
}

// NewCdevOutput requests offset on chip as an output, initially off.
func NewCdevOutput(chip string, offset int, activeLow bool) (*CdevOutput, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request output line %d: %w", offset, err)
	}
	return &CdevOutput{line: line}, nil
}

// On switches the LED on.
func (o *CdevOutput) On() error {
	if err := o.line.SetValue(1); err != nil {
		return fmt.Errorf("set output line: %w", err)
	}
	return nil
}

// Off switches the LED off.
func (o *CdevOutput) Off() error {
	if err := o.line.SetValue(0); err != nil {
		return fmt.Errorf("clear output line: %w", err)
	}
	return nil
}

// Close releases the line.
// Reconfigures it to input with pull-down (matching Pi boot defaults) before
// closing so the LED is not left driven after exit.
func (o *CdevOutput) Close() error {
	var errs []error

	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure output line: %w", err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output line: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
