package logic

import "time"

// Heartbeat decides when a periodic heartbeat is due.
type Heartbeat struct {
	last time.Time
}

// NewHeartbeat starts the interval at startTime.
func NewHeartbeat(startTime time.Time) *Heartbeat {
	return &Heartbeat{last: startTime}
}

// Check reports whether interval has elapsed since the last heartbeat (or
// startup), and if so restarts the interval at now. An interval <= 0 disables
// heartbeats.
func (h *Heartbeat) Check(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	if now.Sub(h.last) < interval {
		return false
	}
	h.last = now
	return true
}
