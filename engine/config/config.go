// Package config reads the YAML configuration of an animation host process: tick rate, default
// playback, the MQTT command sink and the resource pack location.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/command"
)

// Config is the root of the configuration file.
type Config struct {
	TickRate  float64        `yaml:"tickRate"`
	Profiling bool           `yaml:"profiling"`
	Playback  PlaybackConfig `yaml:"playback"`
	MQTT      MQTTConfig     `yaml:"mqtt"`
	Pack      PackConfig     `yaml:"pack"`
}

// PlaybackConfig holds the parameters groups are started with when the host does not pick its own.
type PlaybackConfig struct {
	Speed float32 `yaml:"speed"`
	// Loop is "positive", "negative" or "pingpong".
	Loop string `yaml:"loop"`
	// Repeats <= 0 loops forever.
	Repeats        int     `yaml:"repeats"`
	Easing         string  `yaml:"easing"`
	TicksPerSecond float32 `yaml:"ticksPerSecond"`
}

// MQTTConfig configures the MQTT command sink. An empty URL disables it.
type MQTTConfig struct {
	URL            string        `yaml:"url"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	ClientID       string        `yaml:"clientID"`
	Topic          string        `yaml:"topic"`
	QoS            byte          `yaml:"qos"`
	Retained       bool          `yaml:"retained"`
	PublishTimeout time.Duration `yaml:"publishTimeout"`
}

// PackConfig locates the baked curve resource pack.
type PackConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used for every field a file leaves out.
func Default() Config {
	return Config{
		TickRate: 60,
		Playback: PlaybackConfig{
			Speed:          1,
			Loop:           "positive",
			Easing:         "linear",
			TicksPerSecond: common.TicksPerSecond,
		},
		MQTT: MQTTConfig{
			ClientID:       "oxy-anim",
			Topic:          "oxy-anim/commands",
			PublishTimeout: 5 * time.Second,
		},
	}
}

// Load reads and validates the configuration file at path.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the configuration with defaults applied
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the configuration with defaults applied
//   - error: error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if !(c.TickRate > 0) {
		errs = append(errs, fmt.Errorf("tickRate must be positive, got %v", c.TickRate))
	}
	if _, err := c.Playback.Params(0, 1); err != nil {
		errs = append(errs, fmt.Errorf("playback: %w", err))
	}
	if c.MQTT.QoS > 2 {
		errs = append(errs, fmt.Errorf("mqtt: qos must be 0, 1 or 2, got %d", c.MQTT.QoS))
	}
	if c.MQTT.URL != "" && c.MQTT.Topic == "" {
		errs = append(errs, errors.New("mqtt: topic is required when url is set"))
	}
	return errors.Join(errs...)
}

// Params converts the playback defaults into parameters for the given window.
//
// Parameters:
//   - start: the first frame of the window
//   - end: the last frame of the window
//
// Returns:
//   - animation.PlaybackParams: the parameters
//   - error: error if the loop, easing or window is invalid
func (p PlaybackConfig) Params(start, end common.Tick) (animation.PlaybackParams, error) {
	loop, err := animation.ParseLoopMode(p.Loop, p.Repeats)
	if err != nil {
		return animation.PlaybackParams{}, err
	}
	easing, err := animation.ParseAmountCalc(p.Easing)
	if err != nil {
		return animation.PlaybackParams{}, err
	}

	params := animation.PlaybackParams{
		Speed:          p.Speed,
		Loop:           loop,
		WindowStart:    start,
		WindowEnd:      end,
		TicksPerSecond: common.Coalesce(p.TicksPerSecond, common.TicksPerSecond),
		AmountCalc:     easing,
	}
	if err := params.Validate(); err != nil {
		return animation.PlaybackParams{}, err
	}
	return params, nil
}

// Enabled reports whether an MQTT sink is configured.
func (m MQTTConfig) Enabled() bool {
	return m.URL != ""
}

// Options converts the broker settings into connection options.
func (m MQTTConfig) Options() command.MQTTOptions {
	return command.MQTTOptions{
		URL:      m.URL,
		ClientID: m.ClientID,
		Username: m.Username,
		Password: m.Password,
	}
}

// SinkOptions converts the publish settings into MQTT sink options.
func (m MQTTConfig) SinkOptions() []command.MQTTSinkBuilderOption {
	return []command.MQTTSinkBuilderOption{
		command.WithQoS(m.QoS),
		command.WithRetained(m.Retained),
		command.WithPublishTimeout(m.PublishTimeout),
	}
}
