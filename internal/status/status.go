// Package status provides a thread-safe status tracker for the pomodoro daemon.
// It is written by the orchestrator and button workers and read by the
// heartbeat loop.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/pomodoro/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Driver        string
	Buttons       int
	Storeys       int
	HeartbeatMs   int64
	Broker        string
	Repeat        bool
	SkipStartGate bool
}

// PhaseInfo describes the orchestrator's current phase.
type PhaseInfo struct {
	Phase   logic.Phase
	Since   time.Time
	CycleID string
	// Deadline is when the phase countdown ends; zero outside WORK and BREAK.
	Deadline time.Time
	// LastWinner is the winner of the most recent phase race.
	LastWinner logic.Winner
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	PhaseInfo
	Counts        logic.EventCounts
	Signals       map[string]int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Remaining returns the time left on the phase countdown, or zero.
func (s Snapshot) Remaining() time.Duration {
	if s.Deadline.IsZero() || s.Now.After(s.Deadline) {
		return 0
	}
	return s.Deadline.Sub(s.Now)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			PhaseInfo: PhaseInfo{Phase: logic.PhaseAwaitStart, Since: startTime},
			Signals:   make(map[string]int),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the phase and outcome counters. Called by the orchestrator on
// every transition.
func (t *Tracker) Update(info PhaseInfo, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.PhaseInfo = info
	t.snap.Counts = counts
	t.mu.Unlock()
}

// AddSignal counts one completed start gesture on the named button.
func (t *Tracker) AddSignal(button string) {
	t.mu.Lock()
	t.snap.Signals[button]++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Signals = make(map[string]int, len(t.snap.Signals))
	for k, v := range t.snap.Signals {
		s.Signals[k] = v
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
