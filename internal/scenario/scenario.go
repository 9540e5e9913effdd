// Package scenario defines the YAML scenario files that fix a simulation's
// geography and initial state: which regions exist, their latitudes and
// areas, and their starting temperatures, ice, and moisture.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tharsis-sim/marsclim/internal/climate"
)

// RegionSpec is one region entry in a scenario file.
type RegionSpec struct {
	Kind                string  `yaml:"kind"` // north_pole | south_pole | equatorial
	LatitudeDegrees     float64 `yaml:"latitude_degrees"`
	SurfaceAreaKm2      float64 `yaml:"surface_area_km2"`
	SurfaceTemperatureK float64 `yaml:"surface_temperature_k"`
	IceFraction         float64 `yaml:"ice_fraction,omitempty"`  // polar only
	SoilMoisture        float64 `yaml:"soil_moisture,omitempty"` // equatorial only
}

// Scenario is a named set of regions.
type Scenario struct {
	Name    string       `yaml:"name"`
	Regions []RegionSpec `yaml:"regions"`
}

// Load reads and parses a scenario file. Construction-time validation of the
// region values happens in Build, not here.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Regions) == 0 {
		return nil, errors.New("scenario defines no regions")
	}
	return &s, nil
}

// Default returns the built-in three-region planet: two mirrored polar caps
// at 85° and a broad equatorial band.
func Default() *Scenario {
	return &Scenario{
		Name: "default",
		Regions: []RegionSpec{
			{Kind: "north_pole", LatitudeDegrees: 85, SurfaceAreaKm2: 2_000_000, SurfaceTemperatureK: 180, IceFraction: 0.8},
			{Kind: "south_pole", LatitudeDegrees: -85, SurfaceAreaKm2: 2_000_000, SurfaceTemperatureK: 180, IceFraction: 0.8},
			{Kind: "equatorial", LatitudeDegrees: 0, SurfaceAreaKm2: 50_000_000, SurfaceTemperatureK: 250, SoilMoisture: 0.1},
		},
	}
}

// Build constructs the region states, applying the climate package's
// construction-time validation. A scenario that mixes polar fields into an
// equatorial entry (or vice versa) is rejected.
func (s *Scenario) Build() ([]*climate.RegionState, error) {
	regions := make([]*climate.RegionState, 0, len(s.Regions))
	for i, spec := range s.Regions {
		kind, err := climate.ParseRegionKind(spec.Kind)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}

		var r *climate.RegionState
		switch {
		case kind.IsPolar():
			if spec.SoilMoisture != 0 {
				return nil, fmt.Errorf("region %d: soil_moisture is not valid on a polar region", i)
			}
			r, err = climate.NewPolarRegion(kind, spec.LatitudeDegrees, spec.SurfaceAreaKm2, spec.SurfaceTemperatureK, spec.IceFraction)
		default:
			if spec.IceFraction != 0 {
				return nil, fmt.Errorf("region %d: ice_fraction is not valid on an equatorial region", i)
			}
			r, err = climate.NewEquatorialRegion(spec.LatitudeDegrees, spec.SurfaceAreaKm2, spec.SurfaceTemperatureK, spec.SoilMoisture)
		}
		if err != nil {
			return nil, fmt.Errorf("region %d (%s): %w", i, spec.Kind, err)
		}
		regions = append(regions, r)
	}
	return regions, nil
}
