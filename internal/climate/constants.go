package climate

// Martian calendar.
const (
	// SolSeconds is the length of one sol (Martian day) in seconds.
	SolSeconds = 88775.0
	// SolsPerYear is the length of the Martian year in sols.
	SolsPerYear = 668.6
)

// Radiative balance.
const (
	stefanBoltzmann = 5.67e-8 // W/(m²·K⁴)
	emissivity      = 0.95
)

// Temperature clamp bands in Kelvin. Poles cap below the general band and
// hold ice at or below the melting point.
const (
	minTemperatureK      = 100.0
	maxTemperatureK      = 350.0
	maxPolarTemperatureK = 280.0
	maxIceTemperatureK   = 273.0
)

// Insolation fractions and modulation.
const (
	polarInsolationFraction      = 0.10
	polarDiurnalSwing            = 0.20
	equatorialInsolationFraction = 0.80
)

// Greenhouse attenuation. The forcing's greenhouse term arrives at full
// strength at the equator and roughly half strength at the poles.
const (
	polarGreenhouseFactor      = 0.5
	equatorialGreenhouseFactor = 1.0
)

// Thermal integration. Fluxes are W/m²; the heat capacity column is an
// effective 1000 kg/m² of surface material, with specific heat interpolated
// between bare regolith and water ice by ice fraction at the poles.
const (
	thermalColumnKgPerM2    = 1000.0
	regolithSpecificHeat    = 800.0  // J/(kg·K)
	iceSpecificHeat         = 2000.0 // J/(kg·K)
	polarAtmosphereLag      = 0.9    // atmosphere takes 90% of the surface ΔT
	equatorialAtmosphereLag = 0.8
)

// Ice cap dynamics.
const (
	iceTemperatureOffsetK = 5.0   // ice runs slightly colder than the surface
	sublimationFloorK     = 150.0 // no sublimation below this; deposition instead
	sublimationCoeff      = 0.02  // km²/s at the melting point, before pressure damping
	depositionCoeff       = 0.005 // km²/s per kPa of ambient pressure
)

// Albedo: bare ground at zero ice, rising linearly with ice fraction.
const (
	bareGroundAlbedo       = 0.2
	albedoIceGain          = 0.4
	equatorialGroundAlbedo = 0.2
)

// Equatorial humidity and wind relaxation. Rates are per hour of simulated
// time; the per-step relaxation factor is capped at 1 so large dt values
// settle on the target instead of overshooting.
const (
	humidityRelaxPerHour = 0.1
	humidityCeiling      = 0.8
	windRelaxPerHour     = 0.05
	windBaseMps          = 2.0
	windGradientGain     = 0.1
	minWindSpeedMps      = 0.5
	maxWindSpeedMps      = 20.0
)
