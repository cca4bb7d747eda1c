// Package gpio provides button input lines and LED outputs with hardware abstraction.
// The cdev implementation uses the Linux GPIO character device, the periph
// implementation uses periph.io, and the fake implementation allows testing
// without hardware.
package gpio

import "context"

// Line is a digital input that can be waited on.
type Line interface {
	// WaitForHigh blocks until the line is logically high. It returns
	// immediately if the line is already high, or if a transition to high was
	// observed after the call began.
	WaitForHigh(ctx context.Context) error

	// WaitForLow is the counterpart of WaitForHigh.
	WaitForLow(ctx context.Context) error

	// Level returns the last observed logical level (true = high).
	Level() bool

	// Close releases GPIO resources.
	Close() error
}

// Output is a digital output driving an LED.
type Output interface {
	On() error
	Off() error

	// Close releases GPIO resources.
	Close() error
}

// Default line offsets on gpiochip0 (BCM numbering).
const (
	DefaultChip          = "gpiochip0"
	DefaultButtonLine    = 17
	DefaultIndicatorLine = 21
)

// DefaultStoreyLines are the LEDs of the storey display, bottom to top.
var DefaultStoreyLines = []int{5, 6, 13, 19, 26}
