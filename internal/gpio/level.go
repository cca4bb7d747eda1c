package gpio

import (
	"context"
	"sync"
)

// levelWatch tracks the last observed level of an input and wakes waiters on
// every transition. Safe for concurrent use.
type levelWatch struct {
	mu      sync.Mutex
	level   bool
	changed chan struct{}
	// transitions[0] counts transitions to low, transitions[1] to high.
	transitions [2]uint64
}

func newLevelWatch(level bool) *levelWatch {
	return &levelWatch{
		level:   level,
		changed: make(chan struct{}),
	}
}

func (w *levelWatch) set(level bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.level == level {
		return
	}
	w.level = level
	w.transitions[index(level)]++
	close(w.changed)
	w.changed = make(chan struct{})
}

func (w *levelWatch) get() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

// waitFor returns once the level equals want, or once a transition to want
// has happened since the call began (so a short pulse is never lost).
func (w *levelWatch) waitFor(ctx context.Context, want bool) error {
	w.mu.Lock()
	start := w.transitions[index(want)]
	for w.level != want && w.transitions[index(want)] == start {
		ch := w.changed
		w.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}

		w.mu.Lock()
	}
	w.mu.Unlock()
	return nil
}

func index(level bool) int {
	if level {
		return 1
	}
	return 0
}
