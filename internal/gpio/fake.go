package gpio

import (
	"context"
	"sync"
)

// FakeLine is a test double for an input line. The test drives the level with Set.
type FakeLine struct {
	watch *levelWatch

	mu     sync.Mutex
	closed bool
}

// NewFakeLine creates a FakeLine at the given initial level.
func NewFakeLine(level bool) *FakeLine {
	return &FakeLine{watch: newLevelWatch(level)}
}

// Set changes the line level, waking any waiters.
func (f *FakeLine) Set(level bool) {
	f.watch.set(level)
}

// WaitForHigh blocks until the line is high.
func (f *FakeLine) WaitForHigh(ctx context.Context) error {
	return f.watch.waitFor(ctx, true)
}

// WaitForLow blocks until the line is low.
func (f *FakeLine) WaitForLow(ctx context.Context) error {
	return f.watch.waitFor(ctx, false)
}

// Level returns the current level.
func (f *FakeLine) Level() bool {
	return f.watch.get()
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeLine) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FakeOutput records every state written to it.
type FakeOutput struct {
	mu      sync.Mutex
	on      bool
	history []bool
	closed  bool

	// WriteError, if set, is returned by On and Off.
	WriteError error
}

// NewFakeOutput creates a FakeOutput that starts off.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// On switches the output on.
func (f *FakeOutput) On() error {
	return f.write(true)
}

// Off switches the output off.
func (f *FakeOutput) Off() error {
	return f.write(false)
}

func (f *FakeOutput) write(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.WriteError != nil {
		return f.WriteError
	}
	f.on = on
	f.history = append(f.history, on)
	return nil
}

// IsOn reports the last written state.
func (f *FakeOutput) IsOn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// History returns a copy of all written states, oldest first.
func (f *FakeOutput) History() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.history...)
}

// Close marks the output as closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (f *FakeOutput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
