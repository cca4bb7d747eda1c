// Package pomodoro runs the work/break cycle: wait for the start gesture, race
// the storey animation against the work countdown, then race the blink against
// the break countdown.
package pomodoro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/pomodoro/internal/clock"
	"github.com/sweeney/pomodoro/internal/gpio"
	"github.com/sweeney/pomodoro/internal/logic"
	"github.com/sweeney/pomodoro/internal/notify"
	"github.com/sweeney/pomodoro/internal/race"
	"github.com/sweeney/pomodoro/internal/status"
)

const (
	// Step is the animation step duration.
	Step = time.Second
	// WorkDuration is the length of the work countdown.
	WorkDuration = 25 * time.Minute
	// BreakDuration is the length of the break countdown.
	BreakDuration = 5 * time.Minute
	// PressesToStart is how many clean presses make up the start gesture.
	PressesToStart = 3
)

const (
	promptMessage = "Pomodoro Timer: Press the button three times to start a 25 minute timer."
	workDoneMsg   = "Pomodoro timer finished! Taking a short 5 minute break."
	cycleDoneMsg  = "Pomodoro cycle finished."
)

// Animation renders the phase animations. Cycle completes on its own; Blink
// runs until its context is done.
type Animation interface {
	Cycle(ctx context.Context, step time.Duration) error
	Blink(ctx context.Context, step time.Duration) error
}

// Publisher receives phase events.
type Publisher interface {
	Publish(event logic.Event) error
}

// Options configures an Orchestrator.
type Options struct {
	// Clock drives the countdowns. Defaults to the real clock.
	Clock clockwork.Clock
	// Start is signalled by the button workers once the start gesture is seen.
	Start     *notify.Signal
	Animation Animation
	Indicator gpio.Output
	// Publisher and Tracker are optional event sinks.
	Publisher Publisher
	Tracker   *status.Tracker
	Logger    logrus.FieldLogger

	// SkipStartGate begins the work phase without waiting for Start.
	SkipStartGate bool
	// Repeat returns to the start gate after each cycle instead of returning.
	Repeat bool
}

// Orchestrator drives one or more pomodoro cycles.
type Orchestrator struct {
	opts    Options
	log     logrus.FieldLogger
	machine *logic.Machine
	// deadline of the running countdown, for status.
	deadline time.Time
}

// New validates opts and creates an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Start == nil && !opts.SkipStartGate {
		return nil, errors.New("pomodoro: start signal required")
	}
	if opts.Animation == nil {
		return nil, errors.New("pomodoro: animation required")
	}
	if opts.Indicator == nil {
		return nil, errors.New("pomodoro: indicator required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return &Orchestrator{
		opts:    opts,
		log:     opts.Logger.WithField("component", "pomodoro"),
		machine: logic.NewMachine(opts.Clock.Now()),
	}, nil
}

// Run executes a cycle, or cycles forever with Repeat. It returns nil once a
// single cycle has finished, or the error that stopped it. Cancellation
// returns ctx.Err().
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		if err := o.runCycle(ctx); err != nil {
			return err
		}
		if !o.opts.Repeat {
			return nil
		}
	}
}

func (o *Orchestrator) runCycle(ctx context.Context) error {
	// Presses made before the prompt do not count.
	if !o.opts.SkipStartGate {
		o.opts.Start.Reset()
	}
	o.log.Info(promptMessage)

	if !o.opts.SkipStartGate {
		if err := o.opts.Start.Wait(ctx); err != nil {
			return err
		}
	}

	o.deadline = o.opts.Clock.Now().Add(WorkDuration)
	if err := o.apply(logic.Input{Trigger: logic.TriggerStart, CycleID: uuid.NewString()}); err != nil {
		return err
	}
	if err := o.opts.Indicator.On(); err != nil {
		return fmt.Errorf("indicator on: %w", err)
	}

	winner, err := o.phase(ctx, "work", o.opts.Animation.Cycle, WorkDuration)
	if err != nil {
		return err
	}
	o.deadline = o.opts.Clock.Now().Add(BreakDuration)
	if err := o.apply(logic.Input{Trigger: logic.TriggerRaceDone, Winner: winner}); err != nil {
		return err
	}
	o.log.Info(workDoneMsg)

	winner, err = o.phase(ctx, "break", o.opts.Animation.Blink, BreakDuration)
	if err != nil {
		return err
	}
	o.deadline = time.Time{}
	if err := o.apply(logic.Input{Trigger: logic.TriggerRaceDone, Winner: winner}); err != nil {
		return err
	}

	if err := o.opts.Indicator.Off(); err != nil {
		return fmt.Errorf("indicator off: %w", err)
	}
	o.log.Info(cycleDoneMsg)
	return nil
}

// phase races animate against a countdown of d.
func (o *Orchestrator) phase(ctx context.Context, name string, animate func(context.Context, time.Duration) error, d time.Duration) (logic.Winner, error) {
	w, err := race.Select(ctx,
		func(ctx context.Context) error { return animate(ctx, Step) },
		clock.Countdown(o.opts.Clock, d),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%s phase: %w", name, err)
	}

	winner := logic.WinnerTimer
	if w == race.First {
		winner = logic.WinnerAnimation
	}
	o.log.WithFields(logrus.Fields{"phase": name, "winner": winner}).Debug("race resolved")
	return winner, nil
}

// apply feeds in to the state machine and fans the resulting events out.
func (o *Orchestrator) apply(in logic.Input) error {
	in.Time = o.opts.Clock.Now()
	events, err := o.machine.Process(in)
	if err != nil {
		return err
	}

	for _, e := range events {
		o.log.WithFields(logrus.Fields{
			"event":    e.Type,
			"phase":    e.Phase,
			"winner":   e.Winner,
			"cycle_id": e.CycleID,
		}).Debug("phase event")

		if o.opts.Publisher != nil {
			if err := o.opts.Publisher.Publish(e); err != nil {
				o.log.WithError(err).WithField("event", e.Type).Warn("publish failed")
			}
		}
	}

	if o.opts.Tracker != nil {
		o.opts.Tracker.Update(status.PhaseInfo{
			Phase:      o.machine.Phase(),
			Since:      o.machine.PhaseSince(),
			CycleID:    o.machine.CycleID(),
			Deadline:   o.deadline,
			LastWinner: in.Winner,
		}, o.machine.Counts())
	}
	return nil
}
