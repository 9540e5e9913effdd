package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/tharsis-sim/marsclim/internal/adapter/http"
	kafkaadapter "github.com/tharsis-sim/marsclim/internal/adapter/kafka"
	"github.com/tharsis-sim/marsclim/internal/climate"
	"github.com/tharsis-sim/marsclim/internal/config"
	"github.com/tharsis-sim/marsclim/internal/engine"
	"github.com/tharsis-sim/marsclim/internal/forcing"
	"github.com/tharsis-sim/marsclim/internal/observability"
	"github.com/tharsis-sim/marsclim/internal/runner"
	"github.com/tharsis-sim/marsclim/internal/scenario"
	"github.com/tharsis-sim/marsclim/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Build the region set from the scenario file, falling back to the
	// canonical two-poles-plus-equator layout.
	var scn *scenario.Scenario
	if cfg.ScenarioPath != "" {
		scn, err = scenario.Load(cfg.ScenarioPath)
		if err != nil {
			logger.Error("failed to load scenario", "path", cfg.ScenarioPath, "error", err)
			os.Exit(1)
		}
		logger.Info("scenario loaded", "path", cfg.ScenarioPath, "name", scn.Name, "regions", len(scn.Regions))
	} else {
		scn = scenario.Default()
		logger.Info("using default scenario", "name", scn.Name, "regions", len(scn.Regions))
	}

	regions, err := scn.Build()
	if err != nil {
		logger.Error("invalid scenario", "error", err)
		os.Exit(1)
	}

	eng, err := engine.New(regions)
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	source, err := forcing.New(cfg.SolarConstant, cfg.AtmosphericPressureKPa, cfg.GreenhouseEffect)
	if err != nil {
		logger.Error("invalid forcing parameters", "error", err)
		os.Exit(1)
	}

	// Snapshot sinks are feature-flagged: Kafka via KAFKA_ENABLED, SQLite
	// history via HISTORY_DB_PATH.
	var sinks []runner.SnapshotSink

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg)
		sinks = append(sinks, publisher)
		logger.Info("kafka snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka snapshot publishing disabled")
	}

	var history *store.Store
	if cfg.HistoryDBPath != "" {
		history, err = store.Open(cfg.HistoryDBPath)
		if err != nil {
			logger.Error("failed to open history store", "path", cfg.HistoryDBPath, "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, history)
		logger.Info("history persistence enabled", "path", cfg.HistoryDBPath)
	} else {
		logger.Info("history persistence disabled")
	}

	run := runner.New(source, eng, sinks, clockwork.NewRealClock(), logger, metrics, cfg.StepSeconds, cfg.TickInterval)

	var historyReader httpadapter.HistoryReader
	if history != nil {
		historyReader = history
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, historyReader, cfg.HistoryQueryLimit, run, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := run.Run(ctx); err != nil {
			logger.Error("simulation loop error", "error", err)
		}
	}()

	logger.Info("simulation started",
		"regions", len(regions),
		"step_seconds", cfg.StepSeconds,
		"sols_per_year", climate.SolsPerYear,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if history != nil {
		if err := history.Close(); err != nil {
			logger.Error("history store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
