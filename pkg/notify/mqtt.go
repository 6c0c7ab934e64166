package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
)

// MQTTSink publishes results to an MQTT topic.
type MQTTSink struct {
	client MQTT.Client
	topic  string
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	Broker   string // host or host:port
	Topic    string
	ClientID string
	Username string
	Password string
}

// NewMQTT connects to the broker and returns the sink.
func NewMQTT(opts MQTTOptions) (*MQTTSink, error) {
	clientID := opts.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("wadb-agent-%d", time.Now().Unix())
	}

	mqttOpts := MQTT.NewClientOptions().
		AddBroker("tcp://" + opts.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true)
	if opts.Username != "" {
		mqttOpts.SetUsername(opts.Username)
		mqttOpts.SetPassword(opts.Password)
	}

	client := MQTT.NewClient(mqttOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connection failed: %w", token.Error())
	}

	return &MQTTSink{client: client, topic: opts.Topic}, nil
}

// Name implements Sink.
func (s *MQTTSink) Name() string { return "mqtt" }

// Deliver implements Sink.
func (s *MQTTSink) Deliver(_ context.Context, r Result) error {
	payload := struct {
		RunID     string `json:"runId"`
		Device    string `json:"device"`
		Network   string `json:"network"`
		Address   string `json:"address,omitempty"`
		Error     string `json:"error,omitempty"`
		Attempts  int    `json:"attempts"`
		Timestamp string `json:"timestamp"`
	}{
		RunID:     r.RunID,
		Device:    r.Device,
		Network:   r.Network,
		Attempts:  r.Attempts,
		Timestamp: r.FinishedAt.UTC().Format(time.RFC3339),
	}
	if r.Succeeded() {
		payload.Address = r.Address.String()
	} else {
		payload.Error = r.Error
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token := s.client.Publish(s.topic, 0, false, data)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish failed: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}
