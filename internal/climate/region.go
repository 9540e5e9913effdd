package climate

import (
	"errors"
	"fmt"
	"math"
)

// RegionKind identifies which update model a region uses.
type RegionKind uint8

const (
	NorthPole RegionKind = iota
	SouthPole
	Equatorial
)

// String returns the region kind name used in logs, metrics labels, and
// scenario files.
func (k RegionKind) String() string {
	switch k {
	case NorthPole:
		return "north_pole"
	case SouthPole:
		return "south_pole"
	case Equatorial:
		return "equatorial"
	default:
		return "unknown"
	}
}

// ParseRegionKind converts a scenario-file kind name into a RegionKind.
func ParseRegionKind(s string) (RegionKind, error) {
	switch s {
	case "north_pole":
		return NorthPole, nil
	case "south_pole":
		return SouthPole, nil
	case "equatorial":
		return Equatorial, nil
	default:
		return 0, fmt.Errorf("unknown region kind %q", s)
	}
}

// IsPolar reports whether the kind is one of the two polar caps.
func (k RegionKind) IsPolar() bool {
	return k == NorthPole || k == SouthPole
}

// RegionState holds the physical state owned by one geographic region.
// Geography (kind, latitude, area) is fixed at construction; everything else
// mutates in place on every Update call for the life of the simulation.
//
// Polar-only fields (ice temperature, ice cap area, albedo) are zero on
// equatorial regions; equatorial-only fields (humidity, wind, soil moisture)
// are zero on polar regions. Constructors enforce the split.
type RegionState struct {
	Kind            RegionKind `json:"kind"`
	LatitudeDegrees float64    `json:"latitude_degrees"`
	SurfaceAreaKm2  float64    `json:"surface_area_km2"`

	SurfaceTemperatureK     float64 `json:"surface_temperature_k"`
	AtmosphericTemperatureK float64 `json:"atmospheric_temperature_k"`

	// Polar-only.
	IceTemperatureK float64 `json:"ice_temperature_k,omitempty"`
	IceCapAreaKm2   float64 `json:"ice_cap_area_km2,omitempty"`
	Albedo          float64 `json:"albedo,omitempty"`

	// Equatorial-only.
	RelativeHumidity float64 `json:"relative_humidity,omitempty"`
	WindSpeedMps     float64 `json:"wind_speed_mps,omitempty"`
	SoilMoisture     float64 `json:"soil_moisture,omitempty"`
}

// NewPolarRegion constructs a polar cap. The sign of latitudeDegrees must
// match the hemisphere the kind names. Ice fraction seeds both the ice cap
// area and the derived albedo.
func NewPolarRegion(kind RegionKind, latitudeDegrees, surfaceAreaKm2, surfaceTemperatureK, iceFraction float64) (*RegionState, error) {
	if !kind.IsPolar() {
		return nil, fmt.Errorf("kind %s is not polar", kind)
	}
	if surfaceAreaKm2 <= 0 {
		return nil, errors.New("surface area must be positive")
	}
	if kind == NorthPole && latitudeDegrees <= 0 {
		return nil, errors.New("north pole latitude must be positive")
	}
	if kind == SouthPole && latitudeDegrees >= 0 {
		return nil, errors.New("south pole latitude must be negative")
	}
	if iceFraction < 0 || iceFraction > 1 {
		return nil, errors.New("ice fraction must be in [0, 1]")
	}

	surfaceTemperatureK = clamp(surfaceTemperatureK, minTemperatureK, maxPolarTemperatureK)
	r := &RegionState{
		Kind:                    kind,
		LatitudeDegrees:         latitudeDegrees,
		SurfaceAreaKm2:          surfaceAreaKm2,
		SurfaceTemperatureK:     surfaceTemperatureK,
		AtmosphericTemperatureK: surfaceTemperatureK,
		IceTemperatureK:         clamp(surfaceTemperatureK-iceTemperatureOffsetK, minTemperatureK, maxIceTemperatureK),
		IceCapAreaKm2:           iceFraction * surfaceAreaKm2,
	}
	r.Albedo = bareGroundAlbedo + albedoIceGain*r.iceFraction()
	return r, nil
}

// NewEquatorialRegion constructs the low-latitude band. Soil moisture is
// fixed at construction and only feeds the humidity relaxation target.
func NewEquatorialRegion(latitudeDegrees, surfaceAreaKm2, surfaceTemperatureK, soilMoisture float64) (*RegionState, error) {
	if surfaceAreaKm2 <= 0 {
		return nil, errors.New("surface area must be positive")
	}
	if soilMoisture < 0 || soilMoisture > 1 {
		return nil, errors.New("soil moisture must be in [0, 1]")
	}

	surfaceTemperatureK = clamp(surfaceTemperatureK, minTemperatureK, maxTemperatureK)
	return &RegionState{
		Kind:                    Equatorial,
		LatitudeDegrees:         latitudeDegrees,
		SurfaceAreaKm2:          surfaceAreaKm2,
		SurfaceTemperatureK:     surfaceTemperatureK,
		AtmosphericTemperatureK: surfaceTemperatureK,
		RelativeHumidity:        0,
		WindSpeedMps:            windBaseMps,
		SoilMoisture:            soilMoisture,
	}, nil
}

// Update advances the region by dt seconds under the given forcing,
// dispatching on the kind tag. It returns an error only when the forcing or
// a derived value is non-finite, which indicates a modelling bug rather than
// an extreme-but-valid input.
func (r *RegionState) Update(f Forcing, dt float64) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("step duration %v is not a positive finite number of seconds", dt)
	}

	switch r.Kind {
	case NorthPole, SouthPole:
		r.updatePolar(f, dt)
	case Equatorial:
		r.updateEquatorial(f, dt)
	default:
		return fmt.Errorf("region has unknown kind %d", r.Kind)
	}

	return r.checkFinite()
}

// ApplySurfaceTemperature imposes an externally-sourced surface temperature,
// clamped to the region's band exactly as organic updates are. The
// atmosphere is pulled to the same value (the override is authoritative) and
// polar ice temperature is re-derived so the cap never reads warmer than the
// melting point. The caller is responsible for rejecting non-finite input.
func (r *RegionState) ApplySurfaceTemperature(temperatureK float64) {
	hi := maxTemperatureK
	if r.Kind.IsPolar() {
		hi = maxPolarTemperatureK
	}
	r.SurfaceTemperatureK = clamp(temperatureK, minTemperatureK, hi)
	r.AtmosphericTemperatureK = r.SurfaceTemperatureK
	if r.Kind.IsPolar() {
		r.IceTemperatureK = clamp(r.SurfaceTemperatureK-iceTemperatureOffsetK, minTemperatureK, maxIceTemperatureK)
	}
}

// iceFraction returns the fraction of the region covered by ice. Area is
// validated positive at construction, so the division is always defined.
func (r *RegionState) iceFraction() float64 {
	return r.IceCapAreaKm2 / r.SurfaceAreaKm2
}

// hemisphereOffset shifts the seasonal cycle by half a year for the southern
// hemisphere so the two poles are in opposite seasons.
func (r *RegionState) hemisphereOffset() float64 {
	if r.Kind == SouthPole {
		return 0.5
	}
	return 0
}

// checkFinite surfaces NaN/Inf state as an error. Clamping guarantees the
// bands only for finite arithmetic; a non-finite value means a formula bug.
func (r *RegionState) checkFinite() error {
	fields := map[string]float64{
		"surface_temperature_k":     r.SurfaceTemperatureK,
		"atmospheric_temperature_k": r.AtmosphericTemperatureK,
		"ice_temperature_k":         r.IceTemperatureK,
		"ice_cap_area_km2":          r.IceCapAreaKm2,
		"albedo":                    r.Albedo,
		"relative_humidity":         r.RelativeHumidity,
		"wind_speed_mps":            r.WindSpeedMps,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("region %s: %s is not finite after update", r.Kind, name)
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
