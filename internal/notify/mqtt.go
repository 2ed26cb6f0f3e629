package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultMQTTTopic is used when no topic is configured.
const DefaultMQTTTopic = "prayer-tracker/reminders"

// mqttMessage is the JSON payload published for each reminder.
type mqttMessage struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// MQTT publishes reminders to a broker topic, e.g. for a home display.
type MQTT struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
	now     func() time.Time
}

// NewMQTT connects to broker and returns a publisher for topic.
func NewMQTT(broker, clientID, topic string) (*MQTT, error) {
	if broker == "" {
		return nil, fmt.Errorf("mqtt broker URL is not configured")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		err := token.Error()
		if err == nil {
			err = fmt.Errorf("timed out")
		}
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, err)
	}

	return newMQTTWithClient(client, topic), nil
}

func newMQTTWithClient(client mqtt.Client, topic string) *MQTT {
	if topic == "" {
		topic = DefaultMQTTTopic
	}
	return &MQTT{client: client, topic: topic, timeout: 5 * time.Second, now: time.Now}
}

func (m *MQTT) Notify(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(mqttMessage{Title: title, Body: body, SentAt: m.now().UTC()})
	if err != nil {
		return fmt.Errorf("mqtt payload: %w", err)
	}

	token := m.client.Publish(m.topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.timeout):
		return fmt.Errorf("mqtt publish to %s timed out", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", m.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
