// Package forcing computes the per-step climate forcing from simulation
// time: orbital position (seasonal and diurnal phase), solar flux modulated
// by Mars's orbital eccentricity, and the configured atmosphere terms.
package forcing

import (
	"errors"
	"math"

	"github.com/tharsis-sim/marsclim/internal/climate"
)

// Mars orbital parameters. Perihelion falls in the second half of the
// northern year, which is why southern summers are the harsher ones.
const (
	orbitalEccentricity = 0.0934
	perihelionSol       = 485.0
)

// Provider derives a climate.Forcing for any simulation instant. It is pure
// and stateless: the same simulation time always yields the same forcing.
type Provider struct {
	baseSolarConstant float64
	pressureKPa       float64
	greenhouseEffect  float64
}

// New creates a Provider. The base solar constant must be non-negative and
// finite; pressure and greenhouse are passed through to the regions, which
// tolerate any finite magnitude.
func New(baseSolarConstant, pressureKPa, greenhouseEffect float64) (*Provider, error) {
	if baseSolarConstant < 0 || math.IsNaN(baseSolarConstant) || math.IsInf(baseSolarConstant, 0) {
		return nil, errors.New("base solar constant must be a non-negative finite number")
	}
	if math.IsNaN(pressureKPa) || math.IsInf(pressureKPa, 0) {
		return nil, errors.New("atmospheric pressure must be finite")
	}
	if math.IsNaN(greenhouseEffect) || math.IsInf(greenhouseEffect, 0) {
		return nil, errors.New("greenhouse effect must be finite")
	}
	return &Provider{
		baseSolarConstant: baseSolarConstant,
		pressureKPa:       pressureKPa,
		greenhouseEffect:  greenhouseEffect,
	}, nil
}

// At returns the forcing for the given simulation time in seconds since
// scenario start. Day zero is northern spring equinox at midnight.
func (p *Provider) At(simTimeSeconds float64) climate.Forcing {
	sols := simTimeSeconds / climate.SolSeconds
	dayOfYear := math.Mod(sols, climate.SolsPerYear)
	if dayOfYear < 0 {
		dayOfYear += climate.SolsPerYear
	}
	timeOfDay := sols - math.Floor(sols)

	return climate.Forcing{
		SolarConstant:          p.solarConstantAt(dayOfYear),
		DayOfYear:              dayOfYear,
		TimeOfDay:              timeOfDay,
		AtmosphericPressureKPa: p.pressureKPa,
		GreenhouseEffect:       p.greenhouseEffect,
	}
}

// solarConstantAt modulates the base flux by orbital distance. Flux scales
// with 1/r², approximated to first order in eccentricity as a ±2e swing
// peaking at perihelion.
func (p *Provider) solarConstantAt(dayOfYear float64) float64 {
	anomaly := 2 * math.Pi * (dayOfYear - perihelionSol) / climate.SolsPerYear
	return p.baseSolarConstant * (1 + 2*orbitalEccentricity*math.Cos(anomaly))
}
