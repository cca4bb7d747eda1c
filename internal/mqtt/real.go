package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/pomodoro/internal/logic"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are held in an outbox and replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	log    logrus.FieldLogger

	mu        sync.Mutex
	pending   *outbox
	connected bool
	everUp    bool
}

// NewRealPublisher creates a publisher for the given broker. The broker does
// not have to be reachable yet; paho keeps retrying in the background.
func NewRealPublisher(broker, clientID string, log logrus.FieldLogger) (*RealPublisher, error) {
	p := &RealPublisher{
		log:     log.WithField("broker", broker),
		pending: newOutbox(DefaultOutboxSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(WillPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		p.log.Warn("broker not reachable yet, buffering until connected")
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	p.connected = true
	reconnect := p.everUp
	p.everUp = true
	msgs, dropped := p.pending.take()
	p.mu.Unlock()

	p.log.Info("connected to broker")
	if dropped > 0 {
		p.log.WithField("dropped", dropped).Warn("outbox overflowed while disconnected")
	}

	for _, m := range msgs {
		if err := p.send(m); err != nil {
			p.log.WithError(err).WithField("topic", m.topic).Warn("replay failed")
		}
	}
	if len(msgs) > 0 {
		p.log.WithField("count", len(msgs)).Info("replayed buffered messages")
	}

	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err := p.send(pendingMsg{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
			p.log.WithError(err).Warn("publish RECONNECTED failed")
		}
	}
}

func (p *RealPublisher) onConnectionLost(c paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	buffered := p.pending.len()
	p.mu.Unlock()
	p.log.WithError(err).WithField("buffered", buffered).Warn("connection to broker lost")
}

func (p *RealPublisher) send(m pendingMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", m.topic, err)
	}
	return nil
}

func (p *RealPublisher) publish(m pendingMsg) error {
	p.mu.Lock()
	if !p.connected {
		if p.pending.add(m) {
			p.log.Debug("outbox full, dropped oldest message")
		}
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.send(m)
}

// Publish sends a phase event at QoS 0, not retained.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publish(pendingMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event at QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(pendingMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
