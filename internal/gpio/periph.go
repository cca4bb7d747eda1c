package gpio

import (
	"context"
	"fmt"
	"sync"
	"time"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// edgeWaitTimeout bounds each WaitForEdge call so Close is noticed promptly.
const edgeWaitTimeout = 250 * time.Millisecond

// PinName returns the periph registry name for a BCM line number.
func PinName(line int) string {
	return fmt.Sprintf("GPIO%d", line)
}

func periphPin(name string) (pgpio.PinIO, error) {
	// host.Init can safely be called multiple times.
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("periph: unknown pin %q", name)
	}
	return p, nil
}

// PeriphLine is a button input driven by periph.io edge detection.
// Inversion for activeLow is done in software.
type PeriphLine struct {
	pin       pgpio.PinIO
	activeLow bool
	watch     *levelWatch

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewPeriphLine configures the named pin as a pulled-up input with edge
// detection on both edges and starts watching it.
func NewPeriphLine(name string, activeLow bool) (*PeriphLine, error) {
	p, err := periphPin(name)
	if err != nil {
		return nil, err
	}
	if err := p.In(pgpio.PullUp, pgpio.BothEdges); err != nil {
		return nil, fmt.Errorf("configure input %s: %w", name, err)
	}

	l := &PeriphLine{
		pin:       p,
		activeLow: activeLow,
		done:      make(chan struct{}),
	}
	l.watch = newLevelWatch(l.read())

	l.wg.Add(1)
	go l.watchEdges()
	return l, nil
}

func (l *PeriphLine) read() bool {
	return (l.pin.Read() == pgpio.High) != l.activeLow
}

func (l *PeriphLine) watchEdges() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		default:
		}
		if l.pin.WaitForEdge(edgeWaitTimeout) {
			l.watch.set(l.read())
		}
	}
}

// WaitForHigh blocks until the line is high.
func (l *PeriphLine) WaitForHigh(ctx context.Context) error {
	return l.watch.waitFor(ctx, true)
}

// WaitForLow blocks until the line is low.
func (l *PeriphLine) WaitForLow(ctx context.Context) error {
	return l.watch.waitFor(ctx, false)
}

// Level returns the last observed logical level.
func (l *PeriphLine) Level() bool {
	return l.watch.get()
}

// Close stops the edge watcher and halts the pin.
func (l *PeriphLine) Close() error {
	l.once.Do(func() { close(l.done) })
	l.wg.Wait()
	if err := l.pin.Halt(); err != nil {
		return fmt.Errorf("halt input %s: %w", l.pin.Name(), err)
	}
	return nil
}

// PeriphOutput drives an LED through periph.io.
type PeriphOutput struct {
	pin       pgpio.PinIO
	activeLow bool
}

// NewPeriphOutput configures the named pin as an output, initially off.
func NewPeriphOutput(name string, activeLow bool) (*PeriphOutput, error) {
	p, err := periphPin(name)
	if err != nil {
		return nil, err
	}
	o := &PeriphOutput{pin: p, activeLow: activeLow}
	if err := o.Off(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *PeriphOutput) write(on bool) error {
	level := pgpio.Level(on != o.activeLow)
	if err := o.pin.Out(level); err != nil {
		return fmt.Errorf("write output %s: %w", o.pin.Name(), err)
	}
	return nil
}

// On switches the LED on.
func (o *PeriphOutput) On() error { return o.write(true) }

// Off switches the LED off.
func (o *PeriphOutput) Off() error { return o.write(false) }

// Close switches the LED off and halts the pin.
func (o *PeriphOutput) Close() error {
	if err := o.Off(); err != nil {
		return err
	}
	if err := o.pin.Halt(); err != nil {
		return fmt.Errorf("halt output %s: %w", o.pin.Name(), err)
	}
	return nil
}
