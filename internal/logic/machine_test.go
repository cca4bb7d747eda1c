package logic

import (
	"errors"
	"testing"
	"time"
)

func TestNewMachine(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMachine(now)
	if m == nil {
		t.Fatal("NewMachine returned nil")
	}
	if m.Phase() != PhaseAwaitStart {
		t.Errorf("expected phase AWAIT_START, got %s", m.Phase())
	}
	if !m.PhaseSince().Equal(now) {
		t.Errorf("expected phaseSince %v, got %v", now, m.PhaseSince())
	}
	if m.CycleID() != "" {
		t.Errorf("expected empty cycle id, got %q", m.CycleID())
	}
}

func TestStartEntersWork(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMachine(now)

	start := now.Add(3 * time.Second)
	events, err := m.Process(Input{Trigger: TriggerStart, CycleID: "c1", Time: start})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	e := events[0]
	if e.Type != EventWorkStarted {
		t.Errorf("expected WORK_STARTED, got %s", e.Type)
	}
	if e.Phase != PhaseWork {
		t.Errorf("expected phase WORK, got %s", e.Phase)
	}
	if e.CycleID != "c1" {
		t.Errorf("expected cycle id c1, got %q", e.CycleID)
	}
	if e.Winner != "" {
		t.Errorf("expected no winner, got %s", e.Winner)
	}
	if !e.Timestamp.Equal(start) {
		t.Errorf("unexpected timestamp: %v", e.Timestamp)
	}
	if m.Phase() != PhaseWork {
		t.Errorf("expected machine in WORK, got %s", m.Phase())
	}
	if !m.PhaseSince().Equal(start) {
		t.Errorf("expected phaseSince %v, got %v", start, m.PhaseSince())
	}
}

func TestFullCycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMachine(now)

	steps := []struct {
		in        Input
		wantTypes []EventType
		wantPhase Phase
	}{
		{Input{Trigger: TriggerStart, CycleID: "c1", Time: now}, []EventType{EventWorkStarted}, PhaseWork},
		{Input{Trigger: TriggerRaceDone, Winner: WinnerTimer, Time: now.Add(25 * time.Minute)}, []EventType{EventWorkFinished, EventBreakStarted}, PhaseBreak},
		{Input{Trigger: TriggerRaceDone, Winner: WinnerTimer, Time: now.Add(30 * time.Minute)}, []EventType{EventBreakFinished, EventCycleDone}, PhaseDone},
	}

	for i, step := range steps {
		events, err := m.Process(step.in)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if len(events) != len(step.wantTypes) {
			t.Fatalf("step %d: expected %d events, got %d", i, len(step.wantTypes), len(events))
		}
		for j, want := range step.wantTypes {
			if events[j].Type != want {
				t.Errorf("step %d event %d: expected %s, got %s", i, j, want, events[j].Type)
			}
			if events[j].CycleID != "c1" {
				t.Errorf("step %d event %d: expected cycle id c1, got %q", i, j, events[j].CycleID)
			}
		}
		if m.Phase() != step.wantPhase {
			t.Errorf("step %d: expected phase %s, got %s", i, step.wantPhase, m.Phase())
		}
	}

	counts := m.Counts()
	if counts.CyclesStarted != 1 || counts.CyclesDone != 1 {
		t.Errorf("expected 1 cycle started and done, got %+v", counts)
	}
	if counts.WorkByTimer != 1 || counts.BreakByTimer != 1 {
		t.Errorf("expected timer wins for both phases, got %+v", counts)
	}
}

func TestFinishedEventCarriesWinner(t *testing.T) {
	tests := []struct {
		winner      Winner
		wantWork    int
		wantAnimate int
	}{
		{WinnerTimer, 1, 0},
		{WinnerAnimation, 0, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.winner), func(t *testing.T) {
			m := NewMachine(time.Now())
			m.Process(Input{Trigger: TriggerStart, CycleID: "c", Time: time.Now()})

			events, err := m.Process(Input{Trigger: TriggerRaceDone, Winner: tt.winner, Time: time.Now()})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if events[0].Winner != tt.winner {
				t.Errorf("WORK_FINISHED winner: got %s, want %s", events[0].Winner, tt.winner)
			}
			if events[1].Winner != "" {
				t.Errorf("BREAK_STARTED should carry no winner, got %s", events[1].Winner)
			}
			if events[0].Phase != PhaseBreak {
				t.Errorf("WORK_FINISHED phase: got %s, want BREAK", events[0].Phase)
			}

			counts := m.Counts()
			if counts.WorkByTimer != tt.wantWork {
				t.Errorf("WorkByTimer: got %d, want %d", counts.WorkByTimer, tt.wantWork)
			}
			if counts.WorkByAnimation != tt.wantAnimate {
				t.Errorf("WorkByAnimation: got %d, want %d", counts.WorkByAnimation, tt.wantAnimate)
			}
		})
	}
}

func TestRestartFromDone(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMachine(now)
	m.Process(Input{Trigger: TriggerStart, CycleID: "c1", Time: now})
	m.Process(Input{Trigger: TriggerRaceDone, Winner: WinnerTimer, Time: now})
	m.Process(Input{Trigger: TriggerRaceDone, Winner: WinnerAnimation, Time: now})

	events, err := m.Process(Input{Trigger: TriggerStart, CycleID: "c2", Time: now.Add(time.Hour)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events[0].CycleID != "c2" {
		t.Errorf("expected new cycle id c2, got %q", events[0].CycleID)
	}
	if m.Counts().CyclesStarted != 2 {
		t.Errorf("expected 2 cycles started, got %d", m.Counts().CyclesStarted)
	}
	if m.Counts().BreakByAnimation != 1 {
		t.Errorf("expected BreakByAnimation=1, got %d", m.Counts().BreakByAnimation)
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []Input
		in    Input
	}{
		{"race done before start", nil, Input{Trigger: TriggerRaceDone, Winner: WinnerTimer}},
		{"start during work", []Input{{Trigger: TriggerStart}}, Input{Trigger: TriggerStart}},
		{"start during break", []Input{{Trigger: TriggerStart}, {Trigger: TriggerRaceDone, Winner: WinnerTimer}}, Input{Trigger: TriggerStart}},
		{"unknown winner", []Input{{Trigger: TriggerStart}}, Input{Trigger: TriggerRaceDone, Winner: "NOBODY"}},
		{"unknown trigger", nil, Input{Trigger: "POKE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(time.Now())
			for _, in := range tt.setup {
				if _, err := m.Process(in); err != nil {
					t.Fatalf("setup: unexpected error: %v", err)
				}
			}
			before := m.Phase()

			events, err := m.Process(tt.in)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
			if events != nil {
				t.Errorf("expected no events, got %v", events)
			}
			if m.Phase() != before {
				t.Errorf("phase changed on invalid input: %s -> %s", before, m.Phase())
			}
		})
	}
}
