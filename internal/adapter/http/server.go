// Package http exposes the simulation over a small JSON API alongside the
// usual health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tharsis-sim/marsclim/internal/climate"
	"github.com/tharsis-sim/marsclim/internal/engine"
	"github.com/tharsis-sim/marsclim/internal/observability"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Simulation is the read/override surface the API needs from the engine.
type Simulation interface {
	Snapshot() climate.GlobalClimateAverages
	Regions() []climate.RegionState
	SimTimeSeconds() float64
	StepCount() uint64
	OverrideTemperature(sel engine.RegionSelector, temperatureK float64) error
}

// HistoryReader serves recent persisted snapshots. Nil when history
// persistence is disabled; the /v1/history route is then not registered.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]climate.StepSnapshot, error)
}

// Server exposes the simulation API plus health, readiness, and metrics.
type Server struct {
	httpServer   *http.Server
	sim          Simulation
	history      HistoryReader
	historyLimit int
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewServer wires all routes. history may be nil; historyLimit is both the
// default and the ceiling for /v1/history page sizes.
func NewServer(addr string, sim Simulation, history HistoryReader, historyLimit int, ready ReadinessChecker, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sim:          sim,
		history:      history,
		historyLimit: historyLimit,
		logger:       logger,
		metrics:      metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/climate", s.handleClimate)
	mux.HandleFunc("GET /v1/regions", s.handleRegions)
	mux.HandleFunc("POST /v1/override", s.handleOverride)
	if history != nil {
		mux.HandleFunc("GET /v1/history", s.handleHistory)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// climateResponse pairs the aggregate with the engine's time accounting.
type climateResponse struct {
	Step           uint64                        `json:"step"`
	SimTimeSeconds float64                       `json:"sim_time_seconds"`
	Averages       climate.GlobalClimateAverages `json:"averages"`
}

func (s *Server) handleClimate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, climateResponse{
		Step:           s.sim.StepCount(),
		SimTimeSeconds: s.sim.SimTimeSeconds(),
		Averages:       s.sim.Snapshot(),
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"regions": s.sim.Regions()})
}

// overrideRequest is the body of POST /v1/override.
type overrideRequest struct {
	RegionKind   string  `json:"region_kind"`
	TemperatureK float64 `json:"temperature_k"`
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	kind, err := climate.ParseRegionKind(req.RegionKind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.sim.OverrideTemperature(engine.RegionSelector{Kind: kind}, req.TemperatureK); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, engine.ErrNoMatchingRegion) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	s.metrics.Overrides.Inc()
	s.logger.Info("temperature override applied", "region_kind", kind.String(), "temperature_k", req.TemperatureK)
	writeJSON(w, http.StatusOK, map[string]any{"regions": s.sim.Regions()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > s.historyLimit {
			parsed = s.historyLimit
		}
		limit = parsed
	}

	snaps, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
