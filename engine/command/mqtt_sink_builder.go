package command

import "time"

// MQTTSinkBuilderOption is a functional option for configuring an MQTTSink during construction.
type MQTTSinkBuilderOption func(*mqttSink)

// WithQoS sets the MQTT quality of service level used for every publish.
//
// Parameters:
//   - qos: 0, 1 or 2; larger values are clamped to 2
//
// Returns:
//   - MQTTSinkBuilderOption: functional option to set the QoS
func WithQoS(qos byte) MQTTSinkBuilderOption {
	return func(s *mqttSink) {
		s.qos = min(qos, 2)
	}
}

// WithRetained marks published batches as retained so late subscribers receive the latest pose.
//
// Parameters:
//   - retained: whether the broker should retain the last batch
//
// Returns:
//   - MQTTSinkBuilderOption: functional option to set the retain flag
func WithRetained(retained bool) MQTTSinkBuilderOption {
	return func(s *mqttSink) {
		s.retained = retained
	}
}

// WithPublishTimeout bounds how long Apply waits for a publish to complete. Zero waits forever.
//
// Parameters:
//   - timeout: the publish timeout
//
// Returns:
//   - MQTTSinkBuilderOption: functional option to set the timeout
func WithPublishTimeout(timeout time.Duration) MQTTSinkBuilderOption {
	return func(s *mqttSink) {
		s.timeout = timeout
	}
}
