package climate

import (
	"fmt"
	"math"
	"time"
)

// Forcing carries the shared per-step inputs supplied by the orbital and
// atmosphere providers. All fields must be finite; magnitudes are otherwise
// unconstrained — region updates clamp their outputs regardless of how
// extreme the forcing is.
type Forcing struct {
	SolarConstant          float64 `json:"solar_constant"`            // W/m² at the planet
	DayOfYear              float64 `json:"day_of_year"`               // sols, [0, SolsPerYear)
	TimeOfDay              float64 `json:"time_of_day"`               // [0,1), 0 = midnight, 0.5 = noon
	AtmosphericPressureKPa float64 `json:"atmospheric_pressure_kpa"`  // ambient pressure
	GreenhouseEffect       float64 `json:"greenhouse_effect"`         // W/m², pre-computed upstream
}

// Validate rejects non-finite forcing values. Out-of-range but finite values
// are accepted: the periodic terms wrap naturally and the clamp bands contain
// everything else.
func (f Forcing) Validate() error {
	fields := map[string]float64{
		"solar_constant":           f.SolarConstant,
		"day_of_year":              f.DayOfYear,
		"time_of_day":              f.TimeOfDay,
		"atmospheric_pressure_kpa": f.AtmosphericPressureKPa,
		"greenhouse_effect":        f.GreenhouseEffect,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("forcing field %s is not finite", name)
		}
	}
	return nil
}

// StepSnapshot is the record of one completed simulation step: the forcing
// that drove it and the aggregate state it produced. The runner hands these
// to downstream sinks (history store, snapshot publisher).
type StepSnapshot struct {
	Step           uint64                `json:"step"`
	SimTimeSeconds float64               `json:"sim_time_seconds"`
	Forcing        Forcing               `json:"forcing"`
	Averages       GlobalClimateAverages `json:"averages"`
	ComputedAt     time.Time             `json:"computed_at"`
}
