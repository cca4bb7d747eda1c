package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string         `json:"event,omitempty"`
	Reason           string         `json:"reason,omitempty"`
	Phase            string         `json:"phase"`
	CycleID          string         `json:"cycle_id,omitempty"`
	PhaseSeconds     int64          `json:"phase_seconds"`
	RemainingSeconds int64          `json:"remaining_seconds"`
	LastWinner       string         `json:"last_winner,omitempty"`
	UptimeSeconds    int64          `json:"uptime_seconds"`
	StartTime        string         `json:"start_time"`
	Timestamp        string         `json:"timestamp"`
	MQTT             MQTTStatus     `json:"mqtt"`
	Counts           CountsJSON     `json:"event_counts"`
	Signals          map[string]int `json:"signals"`
	Config           ConfigJSON     `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of phase outcome counts.
type CountsJSON struct {
	CyclesStarted    int `json:"cycles_started"`
	CyclesDone       int `json:"cycles_done"`
	WorkByTimer      int `json:"work_by_timer"`
	WorkByAnimation  int `json:"work_by_animation"`
	BreakByTimer     int `json:"break_by_timer"`
	BreakByAnimation int `json:"break_by_animation"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Driver        string `json:"driver"`
	Buttons       int    `json:"buttons"`
	Storeys       int    `json:"storeys"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker,omitempty"`
	Repeat        bool   `json:"repeat"`
	SkipStartGate bool   `json:"skip_start_gate"`
}

func seconds(d time.Duration) int64 {
	return int64(d.Truncate(time.Second).Seconds())
}

func buildInner(snap Snapshot) StatusInner {
	phase := string(snap.Phase)
	if phase == "" {
		phase = "UNKNOWN"
	}

	return StatusInner{
		Phase:            phase,
		CycleID:          snap.CycleID,
		PhaseSeconds:     seconds(snap.Now.Sub(snap.Since)),
		RemainingSeconds: seconds(snap.Remaining()),
		LastWinner:       string(snap.LastWinner),
		UptimeSeconds:    seconds(snap.Uptime()),
		StartTime:        snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:        snap.Now.UTC().Format(time.RFC3339),
		MQTT:             MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			CyclesStarted:    snap.Counts.CyclesStarted,
			CyclesDone:       snap.Counts.CyclesDone,
			WorkByTimer:      snap.Counts.WorkByTimer,
			WorkByAnimation:  snap.Counts.WorkByAnimation,
			BreakByTimer:     snap.Counts.BreakByTimer,
			BreakByAnimation: snap.Counts.BreakByAnimation,
		},
		Signals: snap.Signals,
		Config: ConfigJSON{
			Driver:        snap.Config.Driver,
			Buttons:       snap.Config.Buttons,
			Storeys:       snap.Config.Storeys,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			Repeat:        snap.Config.Repeat,
			SkipStartGate: snap.Config.SkipStartGate,
		},
	}
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
