package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

const sample = `
tickRate: 120
profiling: true
playback:
  speed: 0.5
  loop: pingpong
  repeats: 3
  easing: in-out-quad
mqtt:
  url: tcp://localhost:1883
  topic: rig/commands
  qos: 1
  publishTimeout: 250ms
pack:
  path: curves.db
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 120.0, cfg.TickRate)
	assert.True(t, cfg.Profiling)
	assert.Equal(t, float32(0.5), cfg.Playback.Speed)
	// left out of the document
	assert.Equal(t, float32(1000), cfg.Playback.TicksPerSecond)
	assert.Equal(t, "oxy-anim", cfg.MQTT.ClientID)

	assert.True(t, cfg.MQTT.Enabled())
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, 250*time.Millisecond, cfg.MQTT.PublishTimeout)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Options().URL)
	assert.Len(t, cfg.MQTT.SinkOptions(), 3)
	assert.Equal(t, "curves.db", cfg.Pack.Path)

	params, err := cfg.Playback.Params(100, 600)
	require.NoError(t, err)
	assert.Equal(t, animation.PingPong(3), params.Loop)
	assert.InDelta(t, 0.5, params.AmountCalc(0.5), 1e-6)
	assert.InDelta(t, 0.125, params.AmountCalc(0.25), 1e-6)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.TickRate = 0
	cfg.Playback.Easing = "wobble"
	cfg.MQTT.URL = "tcp://broker:1883"
	cfg.MQTT.Topic = ""
	cfg.MQTT.QoS = 3

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"tickRate", "wobble", "qos", "topic is required"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("tickrate: 30\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rig/commands", cfg.MQTT.Topic)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	cfg, err = Load(empty)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
