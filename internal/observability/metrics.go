package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// simulation loop.
type Metrics struct {
	StepsTotal   prometheus.Counter
	StepErrors   prometheus.Counter
	StepDuration prometheus.Histogram
	Overrides    prometheus.Counter
	LoopRunning  prometheus.Gauge

	// Sink delivery metrics, labelled by sink name.
	SinkRecords *prometheus.CounterVec // labels: sink, outcome={success,error}

	// Latest aggregate state, exported for dashboards.
	GlobalSurfaceTemperature prometheus.Gauge
	GlobalIceArea            prometheus.Gauge
	GlobalAlbedo             prometheus.Gauge

	// Per-region state, labelled by region kind.
	RegionSurfaceTemperature *prometheus.GaugeVec // label: region
	RegionIceArea            *prometheus.GaugeVec // label: region
}

// NewMetrics creates and registers all simulation metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting registers against a private registry so parallel
// tests never hit "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics(prometheus.NewRegistry())
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marsclim",
			Name:      "steps_total",
			Help:      "Total completed simulation steps.",
		}),
		StepErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marsclim",
			Name:      "step_errors_total",
			Help:      "Total steps rejected for non-finite forcing or state.",
		}),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "marsclim",
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of one engine step plus sink delivery.",
			Buckets:   []float64{1e-5, 1e-4, 1e-3, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		Overrides: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marsclim",
			Name:      "temperature_overrides_total",
			Help:      "External temperature overrides applied through the HTTP API.",
		}),
		LoopRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marsclim",
			Name:      "loop_running",
			Help:      "1 when the stepping loop is active, 0 when shut down.",
		}),
		SinkRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marsclim",
			Name:      "sink_records_total",
			Help:      "Snapshot deliveries by sink and outcome.",
		}, []string{"sink", "outcome"}),
		GlobalSurfaceTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marsclim",
			Name:      "global_surface_temperature_kelvin",
			Help:      "Area-weighted mean surface temperature across all regions.",
		}),
		GlobalIceArea: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marsclim",
			Name:      "global_ice_area_km2",
			Help:      "Total polar ice cap area.",
		}),
		GlobalAlbedo: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "marsclim",
			Name:      "global_albedo",
			Help:      "Area-weighted mean polar albedo.",
		}),
		RegionSurfaceTemperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "marsclim",
			Name:      "region_surface_temperature_kelvin",
			Help:      "Surface temperature by region kind.",
		}, []string{"region"}),
		RegionIceArea: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "marsclim",
			Name:      "region_ice_area_km2",
			Help:      "Ice cap area by region kind.",
		}, []string{"region"}),
	}

	reg.MustRegister(
		m.StepsTotal,
		m.StepErrors,
		m.StepDuration,
		m.Overrides,
		m.LoopRunning,
		m.SinkRecords,
		m.GlobalSurfaceTemperature,
		m.GlobalIceArea,
		m.GlobalAlbedo,
		m.RegionSurfaceTemperature,
		m.RegionIceArea,
	)

	return m
}
