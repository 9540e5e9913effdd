// Package runner drives the climate engine in real time: every wall-clock
// tick it derives the current forcing, advances the engine by one simulated
// step, exports metrics, and hands the resulting snapshot to the configured
// sinks.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tharsis-sim/marsclim/internal/climate"
	"github.com/tharsis-sim/marsclim/internal/observability"
)

// ForcingSource derives the shared forcing for a simulation instant.
type ForcingSource interface {
	At(simTimeSeconds float64) climate.Forcing
}

// Stepper advances the simulation. *engine.Engine satisfies this.
type Stepper interface {
	Step(f climate.Forcing, dt float64) (climate.GlobalClimateAverages, error)
	Regions() []climate.RegionState
	SimTimeSeconds() float64
	StepCount() uint64
}

// SnapshotSink receives each completed step's snapshot. Failed deliveries
// are retried with capped exponential backoff; a snapshot that still fails
// after the last attempt is dropped and counted — the next tick supersedes
// it anyway.
type SnapshotSink interface {
	Name() string
	Record(ctx context.Context, snap climate.StepSnapshot) error
}

// Sink retry policy: start at 200ms, double each retry, cap at 5s. Keeps
// retry storms short while avoiding tight loops during sink outages.
const (
	sinkBaseBackoff = 200 * time.Millisecond
	sinkMaxBackoff  = 5 * time.Second
	sinkMaxAttempts = 3
)

// Runner owns the stepping loop.
type Runner struct {
	source      ForcingSource
	stepper     Stepper
	sinks       []SnapshotSink
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
	stepSeconds float64
	interval    time.Duration
	ready       atomic.Bool
}

// New creates a Runner that advances the simulation by stepSeconds of
// simulated time every interval of wall-clock time. Pass
// clockwork.NewRealClock() in production; tests inject a fake clock to
// drive ticks deterministically.
func New(source ForcingSource, stepper Stepper, sinks []SnapshotSink, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, stepSeconds float64, interval time.Duration) *Runner {
	return &Runner{
		source:      source,
		stepper:     stepper,
		sinks:       sinks,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
		stepSeconds: stepSeconds,
		interval:    interval,
	}
}

// CheckReadiness returns nil once at least one step has completed.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("simulation has not completed a step yet")
	}
	return nil
}

// Run executes the stepping loop until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("simulation loop started",
		"step_seconds", r.stepSeconds,
		"interval", r.interval,
		"sinks", len(r.sinks),
	)
	r.metrics.LoopRunning.Set(1)
	defer r.metrics.LoopRunning.Set(0)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("simulation loop stopping", "reason", ctx.Err(), "steps", r.stepper.StepCount())
			return nil
		case <-ticker.Chan():
			r.step(ctx)
		}
	}
}

// step runs one forcing-step-deliver cycle. Step errors mean non-finite
// arithmetic — a modelling defect. They are logged and counted, and the loop
// keeps serving so the operator can inspect state through the HTTP API.
func (r *Runner) step(ctx context.Context) {
	start := r.clock.Now()

	f := r.source.At(r.stepper.SimTimeSeconds())
	averages, err := r.stepper.Step(f, r.stepSeconds)
	if err != nil {
		r.logger.Error("simulation step failed", "error", err)
		r.metrics.StepErrors.Inc()
		return
	}

	r.metrics.StepsTotal.Inc()
	r.exportState(averages)

	snap := climate.StepSnapshot{
		Step:           r.stepper.StepCount(),
		SimTimeSeconds: r.stepper.SimTimeSeconds(),
		Forcing:        f,
		Averages:       averages,
		ComputedAt:     r.clock.Now(),
	}
	for _, sink := range r.sinks {
		if err := r.deliver(ctx, sink, snap); err != nil {
			r.logger.Warn("snapshot dropped after retries", "sink", sink.Name(), "error", err, "step", snap.Step, "attempts", sinkMaxAttempts)
			r.metrics.SinkRecords.WithLabelValues(sink.Name(), "error").Inc()
			continue
		}
		r.metrics.SinkRecords.WithLabelValues(sink.Name(), "success").Inc()
	}

	r.metrics.StepDuration.Observe(r.clock.Since(start).Seconds())
	r.ready.Store(true)
}

// deliver hands one snapshot to a sink, retrying failed attempts with
// capped exponential backoff. Returns the last error when every attempt
// fails or the context is cancelled mid-retry.
func (r *Runner) deliver(ctx context.Context, sink SnapshotSink, snap climate.StepSnapshot) error {
	backoff := sinkBaseBackoff

	var err error
	for attempt := 1; attempt <= sinkMaxAttempts; attempt++ {
		err = sink.Record(ctx, snap)
		if err == nil {
			return nil
		}
		if attempt == sinkMaxAttempts {
			break
		}
		r.logger.Warn("snapshot delivery failed, retrying",
			"sink", sink.Name(), "error", err, "step", snap.Step, "backoff", backoff)
		if !r.sleepWithContext(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff, sinkMaxBackoff)
	}
	return err
}

func (r *Runner) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-r.clock.After(d):
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

// exportState publishes the aggregate and per-region gauges.
func (r *Runner) exportState(averages climate.GlobalClimateAverages) {
	r.metrics.GlobalSurfaceTemperature.Set(averages.SurfaceTemperatureK)
	r.metrics.GlobalIceArea.Set(averages.TotalIceAreaKm2)
	r.metrics.GlobalAlbedo.Set(averages.AverageAlbedo)

	for _, region := range r.stepper.Regions() {
		label := region.Kind.String()
		r.metrics.RegionSurfaceTemperature.WithLabelValues(label).Set(region.SurfaceTemperatureK)
		if region.Kind.IsPolar() {
			r.metrics.RegionIceArea.WithLabelValues(label).Set(region.IceCapAreaKm2)
		}
	}
}
