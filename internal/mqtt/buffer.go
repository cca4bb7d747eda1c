package mqtt

// DefaultOutboxSize is how many messages are held while the broker is unreachable.
const DefaultOutboxSize = 64

// pendingMsg is a serialized message waiting for the connection to return.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a bounded FIFO of pending messages. When full, the oldest message
// is discarded. Callers synchronize access.
type outbox struct {
	msgs    []pendingMsg
	limit   int
	dropped int
}

func newOutbox(limit int) *outbox {
	if limit < 1 {
		limit = 1
	}
	return &outbox{msgs: make([]pendingMsg, 0, limit), limit: limit}
}

// add queues msg and reports whether an older message was discarded.
func (o *outbox) add(msg pendingMsg) bool {
	if len(o.msgs) < o.limit {
		o.msgs = append(o.msgs, msg)
		return false
	}
	copy(o.msgs, o.msgs[1:])
	o.msgs[len(o.msgs)-1] = msg
	o.dropped++
	return true
}

// take empties the outbox, returning the queued messages oldest first and the
// number discarded since the last take.
func (o *outbox) take() ([]pendingMsg, int) {
	if len(o.msgs) == 0 && o.dropped == 0 {
		return nil, 0
	}
	msgs := make([]pendingMsg, len(o.msgs))
	copy(msgs, o.msgs)
	dropped := o.dropped

	o.msgs = o.msgs[:0]
	o.dropped = 0
	return msgs, dropped
}

func (o *outbox) len() int {
	return len(o.msgs)
}
