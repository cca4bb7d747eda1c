// Package notify provides a one-shot notification slot shared between a
// producer and a consumer goroutine.
package notify

import (
	"context"
	"sync/atomic"
)

// Signal holds at most one pending notification. Signalling an already
// signalled slot is a no-op, so a burst of signals is observed as one.
//
// Signal, Reset and Wait are single operations on a one-element buffered
// channel and are atomic with respect to each other. Reset also advances a
// generation counter so producers can drop any partial progress they were
// accumulating towards the next notification.
type Signal struct {
	slot chan struct{}
	gen  atomic.Uint64
}

// New creates an empty Signal. Hand the same pointer to the producer and the
// consumer.
func New() *Signal {
	return &Signal{slot: make(chan struct{}, 1)}
}

// Signal marks the slot signalled and wakes one waiter if present.
func (s *Signal) Signal() {
	select {
	case s.slot <- struct{}{}:
	default:
	}
}

// Reset clears any pending notification and starts a new generation.
func (s *Signal) Reset() {
	select {
	case <-s.slot:
	default:
	}
	s.gen.Add(1)
}

// Generation returns the number of Resets so far.
func (s *Signal) Generation() uint64 {
	return s.gen.Load()
}

// Wait blocks until the slot is signalled, then consumes the notification.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.slot:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Signaled reports whether a notification is pending without consuming it.
func (s *Signal) Signaled() bool {
	return len(s.slot) == 1
}
