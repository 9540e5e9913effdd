package climate

import "math"

// updateEquatorial advances the equatorial band by dt seconds: full diurnal
// insolation, radiative balance at full greenhouse strength, then humidity
// and wind relaxation.
func (r *RegionState) updateEquatorial(f Forcing, dt float64) {
	insolation := equatorialInsolation(f)

	absorbed := insolation * (1 - equatorialGroundAlbedo)
	emitted := emissivity * stefanBoltzmann * pow4(r.SurfaceTemperatureK)
	netFlux := absorbed - emitted + f.GreenhouseEffect*equatorialGreenhouseFactor

	// Bare regolith: a lighter thermal column than ice-bearing poles, so the
	// band heats and cools faster.
	deltaT := netFlux * dt / (thermalColumnKgPerM2 * regolithSpecificHeat)

	r.SurfaceTemperatureK = clamp(r.SurfaceTemperatureK+deltaT, minTemperatureK, maxTemperatureK)
	r.AtmosphericTemperatureK = clamp(r.AtmosphericTemperatureK+deltaT*equatorialAtmosphereLag, minTemperatureK, maxTemperatureK)

	r.relaxHumidity(dt)
	r.relaxWind(dt)
}

// equatorialInsolation returns the flux reaching the equatorial band: a high
// base fraction of the solar constant under a full day/night cycle. The band
// straddles the equator, so no seasonal term applies.
func equatorialInsolation(f Forcing) float64 {
	diurnal := 0.5 + 0.5*math.Sin(2*math.Pi*f.TimeOfDay)
	return equatorialInsolationFraction * f.SolarConstant * diurnal
}

// relaxHumidity moves relative humidity toward a target derived from soil
// moisture and surface temperature.
func (r *RegionState) relaxHumidity(dt float64) {
	target := math.Min(humidityCeiling, r.SoilMoisture*2+(r.SurfaceTemperatureK-200)/200)
	target = clamp(target, 0, 1)

	alpha := relaxFactor(dt, humidityRelaxPerHour)
	r.RelativeHumidity = clamp(r.RelativeHumidity+(target-r.RelativeHumidity)*alpha, 0, 1)
}

// relaxWind moves wind speed toward a target driven by the surface/atmosphere
// temperature gradient.
func (r *RegionState) relaxWind(dt float64) {
	gradient := math.Abs(r.SurfaceTemperatureK - r.AtmosphericTemperatureK)
	target := windBaseMps + gradient*windGradientGain

	alpha := relaxFactor(dt, windRelaxPerHour)
	r.WindSpeedMps = clamp(r.WindSpeedMps+(target-r.WindSpeedMps)*alpha, minWindSpeedMps, maxWindSpeedMps)
}

// relaxFactor converts a per-hour relaxation rate into a per-step blend
// factor, capped at 1 so steps longer than the relaxation time settle on the
// target instead of oscillating past it.
func relaxFactor(dt, ratePerHour float64) float64 {
	return math.Min(1, dt/3600*ratePerHour)
}
