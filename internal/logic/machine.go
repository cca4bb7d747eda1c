package logic

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when an input does not apply to the current phase.
var ErrInvalidTransition = errors.New("invalid phase transition")

// Machine tracks the phase of one orchestrator and produces events on transitions.
// Not safe for concurrent use.
type Machine struct {
	phase      Phase
	phaseSince time.Time
	cycleID    string
	counts     EventCounts
}

// NewMachine creates a machine in PhaseAwaitStart.
func NewMachine(now time.Time) *Machine {
	return &Machine{
		phase:      PhaseAwaitStart,
		phaseSince: now,
	}
}

// Process applies in and returns the events it produced.
//
//	AWAIT_START --START--> WORK
//	DONE        --START--> WORK        (repeat)
//	WORK        --RACE_DONE--> BREAK
//	BREAK       --RACE_DONE--> DONE
//
// Both race winners lead to the same next phase; the winner is carried on the
// *_FINISHED event.
func (m *Machine) Process(in Input) ([]Event, error) {
	switch {
	case in.Trigger == TriggerStart && (m.phase == PhaseAwaitStart || m.phase == PhaseDone):
		m.cycleID = in.CycleID
		m.counts.CyclesStarted++
		m.enter(PhaseWork, in.Time)
		return []Event{m.event(EventWorkStarted, "", in.Time)}, nil

	case in.Trigger == TriggerRaceDone && m.phase == PhaseWork:
		if err := validWinner(in.Winner); err != nil {
			return nil, err
		}
		if in.Winner == WinnerTimer {
			m.counts.WorkByTimer++
		} else {
			m.counts.WorkByAnimation++
		}
		m.enter(PhaseBreak, in.Time)
		return []Event{
			m.event(EventWorkFinished, in.Winner, in.Time),
			m.event(EventBreakStarted, "", in.Time),
		}, nil

	case in.Trigger == TriggerRaceDone && m.phase == PhaseBreak:
		if err := validWinner(in.Winner); err != nil {
			return nil, err
		}
		if in.Winner == WinnerTimer {
			m.counts.BreakByTimer++
		} else {
			m.counts.BreakByAnimation++
		}
		m.counts.CyclesDone++
		m.enter(PhaseDone, in.Time)
		return []Event{
			m.event(EventBreakFinished, in.Winner, in.Time),
			m.event(EventCycleDone, "", in.Time),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s in phase %s", ErrInvalidTransition, in.Trigger, m.phase)
}

func (m *Machine) enter(p Phase, now time.Time) {
	m.phase = p
	m.phaseSince = now
}

func (m *Machine) event(t EventType, w Winner, now time.Time) Event {
	return Event{
		Timestamp: now,
		Type:      t,
		Phase:     m.phase,
		Winner:    w,
		CycleID:   m.cycleID,
	}
}

func validWinner(w Winner) error {
	if w != WinnerAnimation && w != WinnerTimer {
		return fmt.Errorf("%w: unknown race winner %q", ErrInvalidTransition, w)
	}
	return nil
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// PhaseSince returns when the current phase was entered.
func (m *Machine) PhaseSince() time.Time {
	return m.phaseSince
}

// CycleID returns the id of the current (or last) cycle.
func (m *Machine) CycleID() string {
	return m.cycleID
}

// Counts returns a copy of the outcome counters.
func (m *Machine) Counts() EventCounts {
	return m.counts
}
