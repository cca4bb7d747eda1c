// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pomodoro/internal/logic"
)

// Topic is the MQTT topic for phase transition events.
const Topic = "pomodoro/timer/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "pomodoro/timer/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a phase event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // pre-formatted JSON; returned as-is by FormatSystemPayload
	Retained   bool
}

// Payload is the MQTT message body for a phase event.
type Payload struct {
	Timer TimerPayload `json:"timer"`
}

// TimerPayload contains the phase event details.
type TimerPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Phase     string `json:"phase"`
	Winner    string `json:"winner,omitempty"`
	CycleID   string `json:"cycle_id"`
}

// FormatPayload creates the JSON payload for a phase event.
func FormatPayload(event logic.Event) ([]byte, error) {
	return json.Marshal(Payload{
		Timer: TimerPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Phase:     string(event.Phase),
			Winner:    string(event.Winner),
			CycleID:   event.CycleID,
		},
	})
}

// SystemPayload is the MQTT message body for system events that don't carry
// a full status snapshot (LWT, RECONNECTED).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Event:  event.Event,
			Reason: event.Reason,
		},
	}
	if !event.Timestamp.IsZero() {
		payload.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}

// WillPayload is the retained last-will message the broker publishes if the
// daemon disappears without a clean SHUTDOWN.
func WillPayload() []byte {
	data, _ := FormatSystemPayload(SystemEvent{Event: "SHUTDOWN", Reason: "CONNECTION_LOST"})
	return data
}
