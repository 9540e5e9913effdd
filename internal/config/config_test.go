package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Empty(t, cfg.ScenarioPath)
	assert.Equal(t, 3600.0, cfg.StepSeconds)
	assert.Equal(t, time.Second, cfg.TickInterval)

	assert.Equal(t, 590.0, cfg.SolarConstant)
	assert.Equal(t, 0.6, cfg.AtmosphericPressureKPa)
	assert.Equal(t, 2.0, cfg.GreenhouseEffect)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "climate-snapshots", cfg.KafkaSnapshotTopic)

	assert.Empty(t, cfg.HistoryDBPath)
	assert.Equal(t, 100, cfg.HistoryQueryLimit)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SCENARIO_PATH", "/etc/marsclim/planet.yaml")
	t.Setenv("STEP_SECONDS", "86400")
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("SOLAR_CONSTANT", "717")
	t.Setenv("ATMOSPHERIC_PRESSURE_KPA", "1.5")
	t.Setenv("GREENHOUSE_EFFECT", "12.5")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "terraform-climate")
	t.Setenv("HISTORY_DB_PATH", "/var/lib/marsclim/history.db")
	t.Setenv("HISTORY_QUERY_LIMIT", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/etc/marsclim/planet.yaml", cfg.ScenarioPath)
	assert.Equal(t, 86400.0, cfg.StepSeconds)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 717.0, cfg.SolarConstant)
	assert.Equal(t, 1.5, cfg.AtmosphericPressureKPa)
	assert.Equal(t, 12.5, cfg.GreenhouseEffect)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "terraform-climate", cfg.KafkaSnapshotTopic)
	assert.Equal(t, "/var/lib/marsclim/history.db", cfg.HistoryDBPath)
	assert.Equal(t, 500, cfg.HistoryQueryLimit)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"bad tick interval", "TICK_INTERVAL", "fast"},
		{"bad step seconds", "STEP_SECONDS", "an hour"},
		{"negative step seconds", "STEP_SECONDS", "-1"},
		{"bad solar constant", "SOLAR_CONSTANT", "bright"},
		{"bad history limit", "HISTORY_QUERY_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_KafkaValidation(t *testing.T) {
	t.Run("enabled without brokers", func(t *testing.T) {
		t.Setenv("KAFKA_ENABLED", "true")
		t.Setenv("KAFKA_BROKERS", " , ")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("disabled ignores brokers", func(t *testing.T) {
		t.Setenv("KAFKA_ENABLED", "false")
		t.Setenv("KAFKA_BROKERS", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.KafkaEnabled)
	})
}
