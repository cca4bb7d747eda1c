//go:build !linux

package gpio

import (
	"context"
	"errors"
)

var errNotSupported = errors.New("gpio: character device not supported on this platform (requires Linux)")

// CdevLine is not available on non-Linux platforms.
type CdevLine struct{}

// NewCdevLine returns an error on non-Linux platforms.
func NewCdevLine(chip string, offset int, activeLow bool) (*CdevLine, error) {
	return nil, errNotSupported
}

// WaitForHigh is not implemented on non-Linux platforms.
func (l *CdevLine) WaitForHigh(ctx context.Context) error { return errNotSupported }

// WaitForLow is not implemented on non-Linux platforms.
func (l *CdevLine) WaitForLow(ctx context.Context) error { return errNotSupported }

// Level is not implemented on non-Linux platforms.
func (l *CdevLine) Level() bool { return false }

// Close is not implemented on non-Linux platforms.
func (l *CdevLine) Close() error { return nil }

// CdevOutput is not available on non-Linux platforms.
type CdevOutput struct{}

// NewCdevOutput returns an error on non-Linux platforms.
func NewCdevOutput(chip string, offset int, activeLow bool) (*CdevOutput, error) {
	return nil, errNotSupported
}

// On is not implemented on non-Linux platforms.
func (o *CdevOutput) On() error { return errNotSupported }

// Off is not implemented on non-Linux platforms.
func (o *CdevOutput) Off() error { return errNotSupported }

// Close is not implemented on non-Linux platforms.
func (o *CdevOutput) Close() error { return nil }
