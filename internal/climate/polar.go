package climate

import "math"

// updatePolar advances a polar cap by dt seconds: latitude/season-scaled
// insolation, Stefan–Boltzmann radiative balance, heat-capacity integration,
// then ice sublimation/deposition with the albedo feedback.
func (r *RegionState) updatePolar(f Forcing, dt float64) {
	insolation := polarInsolation(f, r.hemisphereOffset())

	absorbed := insolation * (1 - r.Albedo)
	emitted := emissivity * stefanBoltzmann * pow4(r.SurfaceTemperatureK)
	netFlux := absorbed - emitted + f.GreenhouseEffect*polarGreenhouseFactor

	// Ice raises the effective specific heat of the thermal column, so
	// ice-covered caps respond more slowly than bare regolith.
	specificHeat := regolithSpecificHeat + (iceSpecificHeat-regolithSpecificHeat)*r.iceFraction()
	deltaT := netFlux * dt / (thermalColumnKgPerM2 * specificHeat)

	r.SurfaceTemperatureK = clamp(r.SurfaceTemperatureK+deltaT, minTemperatureK, maxPolarTemperatureK)
	r.AtmosphericTemperatureK = clamp(r.AtmosphericTemperatureK+deltaT*polarAtmosphereLag, minTemperatureK, maxPolarTemperatureK)
	r.IceTemperatureK = clamp(r.SurfaceTemperatureK-iceTemperatureOffsetK, minTemperatureK, maxIceTemperatureK)

	r.stepIceCap(f, dt)
	r.Albedo = clamp(bareGroundAlbedo+albedoIceGain*r.iceFraction(), 0, 1)
}

// polarInsolation returns the flux reaching a polar surface: a small base
// fraction of the solar constant under the seasonal cycle, with the seasonal
// factor floored at zero (polar winter receives no sunlight) and a mild
// diurnal swing.
func polarInsolation(f Forcing, hemisphereOffset float64) float64 {
	seasonal := math.Sin(2 * math.Pi * (f.DayOfYear/SolsPerYear + hemisphereOffset))
	if seasonal < 0 {
		seasonal = 0
	}
	diurnal := 1 + polarDiurnalSwing*math.Sin(2*math.Pi*f.TimeOfDay)
	return polarInsolationFraction * f.SolarConstant * seasonal * diurnal
}

// stepIceCap shrinks the cap by sublimation between 150 K and the melting
// point, and grows it by atmospheric deposition below 150 K. Higher ambient
// pressure suppresses sublimation and feeds deposition.
func (r *RegionState) stepIceCap(f Forcing, dt float64) {
	pressure := math.Max(f.AtmosphericPressureKPa, 0)

	switch {
	case r.IceTemperatureK > sublimationFloorK && r.IceTemperatureK < maxIceTemperatureK:
		// Simplified Clausius–Clapeyron proxy: sublimation accelerates
		// exponentially as the ice approaches the melting point.
		rate := math.Exp((r.IceTemperatureK-maxIceTemperatureK)/10) * sublimationCoeff / (1 + pressure)
		r.IceCapAreaKm2 = math.Max(0, r.IceCapAreaKm2-rate*dt)
	case r.IceTemperatureK <= sublimationFloorK:
		rate := depositionCoeff * pressure
		r.IceCapAreaKm2 = math.Min(r.SurfaceAreaKm2, r.IceCapAreaKm2+rate*dt)
	}
}

func pow4(v float64) float64 {
	vv := v * v
	return vv * vv
}
