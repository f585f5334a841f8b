package command

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mqttSink is the implementation of the MQTTSink interface.
type mqttSink struct {
	client   mqtt.Client
	topic    string
	qos      byte
	retained bool
	timeout  time.Duration
}

// MQTTSink publishes each drained batch as one binary MQTT message, so a remote consumer sees exactly the
// writes of one tick together.
type MQTTSink interface {
	Sink

	// Topic returns the topic batches are published to.
	//
	// Returns:
	//   - string: the topic
	Topic() string
}

var _ MQTTSink = &mqttSink{}

// NewMQTTSink creates a sink publishing to topic through an already configured client.
//
// Parameters:
//   - client: the MQTT client, connected before the first Apply
//   - topic: the topic to publish batches on
//   - options: functional options to configure the sink
//
// Returns:
//   - MQTTSink: the new sink
func NewMQTTSink(client mqtt.Client, topic string, options ...MQTTSinkBuilderOption) MQTTSink {
	s := &mqttSink{
		client:  client,
		topic:   topic,
		timeout: 5 * time.Second,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *mqttSink) Topic() string {
	return s.topic
}

func (s *mqttSink) Apply(cmds Batch) error {
	if len(cmds) == 0 {
		return nil
	}

	payload, err := cmds.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode %d commands: %w", len(cmds), err)
	}

	token := s.client.Publish(s.topic, s.qos, s.retained, payload)
	if s.timeout > 0 {
		if !token.WaitTimeout(s.timeout) {
			return fmt.Errorf("publish to %q timed out after %s", s.topic, s.timeout)
		}
	} else {
		token.Wait()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %q: %w", s.topic, err)
	}
	return nil
}

// MQTTOptions describes the broker connection used by ConnectMQTT.
type MQTTOptions struct {
	URL            string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
}

// ConnectMQTT creates a client for the given broker and waits for the connection.
//
// Parameters:
//   - opts: broker address, credentials and timeouts; zero durations fall back to defaults
//
// Returns:
//   - mqtt.Client: the connected client
//   - error: error if the connection fails or times out
func ConnectMQTT(opts MQTTOptions) (mqtt.Client, error) {
	keepAlive := opts.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	clientID := opts.ClientID
	if clientID == "" {
		clientID = "oxy-anim"
	}

	options := mqtt.NewClientOptions().
		AddBroker(opts.URL).
		SetClientID(clientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetKeepAlive(keepAlive).
		SetPingTimeout(5 * time.Second).
		SetConnectTimeout(connectTimeout)
	client := mqtt.NewClient(options)

	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to %s timed out after %s", opts.URL, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.URL, err)
	}
	return client, nil
}
