package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/tharsis-sim/marsclim/internal/adapter/http"
	"github.com/tharsis-sim/marsclim/internal/climate"
	"github.com/tharsis-sim/marsclim/internal/engine"
	"github.com/tharsis-sim/marsclim/internal/observability"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockHistory struct {
	snaps []climate.StepSnapshot
	err   error
	limit int
}

func (m *mockHistory) Recent(_ context.Context, limit int) ([]climate.StepSnapshot, error) {
	m.limit = limit
	return m.snaps, m.err
}

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	north, err := climate.NewPolarRegion(climate.NorthPole, 85, 2_000_000, 180, 0.8)
	require.NoError(t, err)
	south, err := climate.NewPolarRegion(climate.SouthPole, -85, 2_000_000, 175, 0.9)
	require.NoError(t, err)
	eq, err := climate.NewEquatorialRegion(0, 50_000_000, 250, 0.1)
	require.NoError(t, err)

	eng, err := engine.New([]*climate.RegionState{north, south, eq})
	require.NoError(t, err)
	return eng
}

const testHistoryLimit = 100

func newTestServer(t *testing.T, history httpadapter.HistoryReader, readyErr error) *httpadapter.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", testEngine(t), history, testHistoryLimit, &mockReadiness{err: readyErr}, logger, observability.NewMetricsForTesting())
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(t, nil, fmt.Errorf("simulation has not completed a step yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "simulation has not completed a step yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestClimateEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/climate", nil)

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Step           uint64                        `json:"step"`
		SimTimeSeconds float64                       `json:"sim_time_seconds"`
		Averages       climate.GlobalClimateAverages `json:"averages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Step)
	assert.Zero(t, body.SimTimeSeconds)
	assert.Greater(t, body.Averages.SurfaceTemperatureK, 0.0)
	assert.Greater(t, body.Averages.TotalIceAreaKm2, 0.0)
}

func TestRegionsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/regions", nil)

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Regions []climate.RegionState `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Regions, 3)
}

func TestOverrideEndpoint(t *testing.T) {
	t.Run("applies override to matching region", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/override",
			strings.NewReader(`{"region_kind":"north_pole","temperature_k":250}`))

		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Regions []climate.RegionState `json:"regions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		found := false
		for _, r := range body.Regions {
			if r.Kind == climate.NorthPole {
				found = true
				assert.InDelta(t, 250.0, r.SurfaceTemperatureK, 1e-9)
			}
		}
		assert.True(t, found)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/override", strings.NewReader(`{`))

		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown region kind", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/override",
			strings.NewReader(`{"region_kind":"tropics","temperature_k":250}`))

		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHistoryEndpoint(t *testing.T) {
	t.Run("returns recent snapshots", func(t *testing.T) {
		history := &mockHistory{snaps: []climate.StepSnapshot{
			{Step: 2, SimTimeSeconds: 7200, ComputedAt: time.Now().UTC()},
			{Step: 1, SimTimeSeconds: 3600, ComputedAt: time.Now().UTC()},
		}}
		srv := newTestServer(t, history, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/history?limit=2", nil)

		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, history.limit)

		var body struct {
			Snapshots []climate.StepSnapshot `json:"snapshots"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Snapshots, 2)
		assert.Equal(t, uint64(2), body.Snapshots[0].Step)
	})

	t.Run("defaults to the configured limit", func(t *testing.T) {
		history := &mockHistory{}
		srv := newTestServer(t, history, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)

		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testHistoryLimit, history.limit)
	})

	t.Run("clamps limit to the configured maximum", func(t *testing.T) {
		history := &mockHistory{}
		srv := newTestServer(t, history, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/history?limit=100000", nil)

		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testHistoryLimit, history.limit)
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		srv := newTestServer(t, &mockHistory{}, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/history?limit=0", nil)

		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not registered without a history store", func(t *testing.T) {
		srv := newTestServer(t, nil, nil)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)

		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
