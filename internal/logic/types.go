// Package logic contains the pure Pomodoro cycle state machine.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Phase is a stage of the Pomodoro cycle.
type Phase string

const (
	PhaseAwaitStart Phase = "AWAIT_START"
	PhaseWork       Phase = "WORK"
	PhaseBreak      Phase = "BREAK"
	PhaseDone       Phase = "DONE"
)

// Winner records which side of a phase race finished first.
type Winner string

const (
	WinnerAnimation Winner = "ANIMATION"
	WinnerTimer     Winner = "TIMER"
)

// EventType represents a phase transition event.
type EventType string

const (
	EventWorkStarted   EventType = "WORK_STARTED"
	EventWorkFinished  EventType = "WORK_FINISHED"
	EventBreakStarted  EventType = "BREAK_STARTED"
	EventBreakFinished EventType = "BREAK_FINISHED"
	EventCycleDone     EventType = "CYCLE_DONE"
)

// Event represents a phase transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Phase is the phase entered by this event.
	Phase Phase
	// Winner is set on *_FINISHED events.
	Winner  Winner
	CycleID string
}

// Trigger is what drives the machine forward.
type Trigger string

const (
	// TriggerStart begins a new cycle (start gesture seen, or gate skipped).
	TriggerStart Trigger = "START"
	// TriggerRaceDone ends the current phase race.
	TriggerRaceDone Trigger = "RACE_DONE"
)

// Input is a single step fed to the machine.
type Input struct {
	Trigger Trigger
	// Winner of the race, for TriggerRaceDone.
	Winner Winner
	// CycleID for TriggerStart.
	CycleID string
	Time    time.Time
}

// EventCounts tracks phase outcomes since startup.
type EventCounts struct {
	CyclesStarted    int
	CyclesDone       int
	WorkByTimer      int
	WorkByAnimation  int
	BreakByTimer     int
	BreakByAnimation int
}
