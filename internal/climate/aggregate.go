package climate

// GlobalClimateAverages is the planet-wide reduction of all region states,
// recomputed every step. Quantities that only a subset of regions define
// (ice temperature and albedo at the poles, humidity and wind in the
// equatorial band) are averaged over that subset's area alone.
type GlobalClimateAverages struct {
	SurfaceTemperatureK     float64 `json:"surface_temperature_k"`
	AtmosphericTemperatureK float64 `json:"atmospheric_temperature_k"`
	IceTemperatureK         float64 `json:"ice_temperature_k"`
	AverageAlbedo           float64 `json:"average_albedo"`
	AverageHumidity         float64 `json:"average_humidity"`
	AverageWindSpeedMps     float64 `json:"average_wind_speed_mps"`
	TotalIceAreaKm2         float64 `json:"total_ice_area_km2"`
	TotalSurfaceAreaKm2     float64 `json:"total_surface_area_km2"`
}

// Aggregate reduces a collection of region states into area-weighted global
// averages. It is a pure function: deterministic for a given input set and
// read-only over the regions. An empty input yields the zero-valued
// snapshot, which callers must treat as "no data yet" rather than a failure.
func Aggregate(regions []*RegionState) GlobalClimateAverages {
	var (
		out GlobalClimateAverages

		surfaceTempSum float64
		atmTempSum     float64

		polarArea   float64
		iceTempSum  float64
		iceTempArea float64
		albedoSum   float64

		equatorialArea float64
		humiditySum    float64
		windSum        float64
	)

	for _, r := range regions {
		area := r.SurfaceAreaKm2
		out.TotalSurfaceAreaKm2 += area
		out.TotalIceAreaKm2 += r.IceCapAreaKm2

		surfaceTempSum += r.SurfaceTemperatureK * area
		atmTempSum += r.AtmosphericTemperatureK * area

		switch {
		case r.Kind.IsPolar():
			polarArea += area
			albedoSum += r.Albedo * area
			if r.IceCapAreaKm2 > 0 {
				iceTempSum += r.IceTemperatureK * area
				iceTempArea += area
			}
		case r.Kind == Equatorial:
			equatorialArea += area
			humiditySum += r.RelativeHumidity * area
			windSum += r.WindSpeedMps * area
		}
	}

	if out.TotalSurfaceAreaKm2 > 0 {
		out.SurfaceTemperatureK = surfaceTempSum / out.TotalSurfaceAreaKm2
		out.AtmosphericTemperatureK = atmTempSum / out.TotalSurfaceAreaKm2
	}
	if polarArea > 0 {
		out.AverageAlbedo = albedoSum / polarArea
	}
	if iceTempArea > 0 {
		out.IceTemperatureK = iceTempSum / iceTempArea
	}
	if equatorialArea > 0 {
		out.AverageHumidity = humiditySum / equatorialArea
		out.AverageWindSpeedMps = windSum / equatorialArea
	}

	return out
}
