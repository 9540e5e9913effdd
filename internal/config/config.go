package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Simulation stepping.
	ScenarioPath string        // empty = built-in default scenario
	StepSeconds  float64       // simulated seconds per step
	TickInterval time.Duration // wall-clock interval between steps

	// Forcing terms supplied to every step.
	SolarConstant          float64
	AtmosphericPressureKPa float64
	GreenhouseEffect       float64

	// Optional snapshot publisher.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string

	// Optional snapshot history store.
	HistoryDBPath     string // empty = disabled
	HistoryQueryLimit int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	tickInterval, err := parseDuration("TICK_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}

	stepSeconds, err := parseFloat("STEP_SECONDS", 3600)
	if err != nil {
		return nil, err
	}
	solarConstant, err := parseFloat("SOLAR_CONSTANT", 590)
	if err != nil {
		return nil, err
	}
	pressure, err := parseFloat("ATMOSPHERIC_PRESSURE_KPA", 0.6)
	if err != nil {
		return nil, err
	}
	greenhouse, err := parseFloat("GREENHOUSE_EFFECT", 2.0)
	if err != nil {
		return nil, err
	}

	historyLimit, err := parseInt("HISTORY_QUERY_LIMIT", 100)
	if err != nil {
		return nil, err
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ScenarioPath: os.Getenv("SCENARIO_PATH"),
		StepSeconds:  stepSeconds,
		TickInterval: tickInterval,

		SolarConstant:          solarConstant,
		AtmosphericPressureKPa: pressure,
		GreenhouseEffect:       greenhouse,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: envOrDefault("KAFKA_SNAPSHOT_TOPIC", "climate-snapshots"),

		HistoryDBPath:     os.Getenv("HISTORY_DB_PATH"),
		HistoryQueryLimit: historyLimit,
	}

	if cfg.StepSeconds <= 0 {
		return nil, errors.New("STEP_SECONDS must be positive")
	}
	if cfg.TickInterval <= 0 {
		return nil, errors.New("TICK_INTERVAL must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SNAPSHOT_TOPIC is empty")
	}
	if cfg.HistoryQueryLimit <= 0 {
		return nil, errors.New("HISTORY_QUERY_LIMIT must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
