package button

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/pomodoro/internal/gpio"
	"github.com/sweeney/pomodoro/internal/notify"
)

// ErrPoolExhausted is returned by Spawn when every worker slot is taken.
var ErrPoolExhausted = errors.New("button worker pool exhausted")

// PoolConfig configures a Pool.
type PoolConfig struct {
	// Size is the maximum number of button workers.
	Size int
	// Presses is the number of gestures that make up one signal.
	Presses int
	Clock   clockwork.Clock
	Logger  logrus.FieldLogger
	// OnSignal, if set, is called by a worker each time it signals.
	OnSignal func(name string)
}

// Pool runs one worker per physical button. Each worker waits for Presses
// gestures on its line and then signals its notification slot, forever.
// Resetting the slot also zeroes the worker's partial count.
type Pool struct {
	cfg   PoolConfig
	ctx   context.Context
	group *errgroup.Group
}

// NewPool creates a pool whose workers stop when ctx is done.
func NewPool(ctx context.Context, cfg PoolConfig) *Pool {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Size)
	return &Pool{cfg: cfg, ctx: gctx, group: group}
}

// Spawn starts a worker for line that signals sig. It fails with
// ErrPoolExhausted when the pool is full.
func (p *Pool) Spawn(name string, line gpio.Line, sig *notify.Signal) error {
	log := p.cfg.Logger.WithField("button", name)
	if !p.group.TryGo(func() error { return p.work(name, line, sig, log) }) {
		return fmt.Errorf("spawn %s: %w", name, ErrPoolExhausted)
	}
	log.WithField("presses", p.cfg.Presses).Debug("button worker started")
	return nil
}

func (p *Pool) work(name string, line gpio.Line, sig *notify.Signal, log logrus.FieldLogger) error {
	for {
		if err := countPresses(p.ctx, line, p.cfg.Clock, p.cfg.Presses, sig.Generation, log); err != nil {
			if p.ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("button %s: %w", name, err)
		}
		log.Info("button signalled")
		sig.Signal()
		if p.cfg.OnSignal != nil {
			p.cfg.OnSignal(name)
		}
	}
}

// Wait blocks until every worker has stopped and returns the first error.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
