// Package climate models the regional climate of a terraformed Mars as a
// small set of coarse-grained energy-balance regions.
//
// # Model Overview
//
// The planet is partitioned into independently-updated regions of three
// kinds: two high-latitude polar caps (NorthPole, SouthPole) and one
// low-latitude equatorial band. Each region integrates a simple
// surface/atmosphere energy balance with an explicit Euler step:
//
//	absorbed  = insolation · (1 − albedo)
//	emitted   = ε · σ · Tsurface⁴          (ε = 0.95, σ = 5.67e-8)
//	net       = absorbed − emitted + greenhouse
//	ΔT        = net · dt / (column mass · specific heat)
//
// Fluxes are per square metre; heat capacity is taken over an effective
// 1000 kg/m² thermal column so the area term cancels out of the integration.
// The model is tuned for plausible, bounded behaviour inside an interactive
// simulation loop, not for scientific accuracy.
//
// # Time Conventions
//
// The natural time unit is the sol (one Martian day, 88,775 seconds); a
// Martian year is 668.6 sols. Forcing carries the seasonal phase as a
// fractional day-of-year in sols and the diurnal phase as a fraction of a
// sol in [0, 1), where 0 is midnight and 0.5 is noon.
//
// # Insolation
//
// Polar regions receive a 10% base fraction of the solar constant, scaled
// by a seasonal factor sin(2π·(dayOfYear/668.6 + hemisphereOffset)) clamped
// at zero (no sunlight through polar winter) and a mild ±20% diurnal swing.
// The equatorial band receives an 80% base fraction under a full diurnal
// cycle 0.5 + 0.5·sin(2π·timeOfDay).
//
// # Ice Dynamics
//
// Polar ice sublimates between 150 K and 273 K at a rate following a
// simplified Clausius–Clapeyron proxy, exp((Tice − 273)/10), damped by
// ambient pressure; below 150 K atmosphere condenses back onto the cap.
// Albedo is derived from ice fraction as 0.2 + 0.4·(iceArea/surfaceArea),
// which closes the ice-albedo feedback loop: less ice lowers albedo, more
// radiation is absorbed, warming accelerates, and more ice is lost.
//
// # Numeric Safety
//
// Every derived temperature, ice area, albedo, humidity, and wind value is
// clamped to its physically-plausible band immediately after computation,
// so the package invariants hold for any finite forcing input. Non-finite
// intermediates indicate a modelling bug and are surfaced as errors by
// [RegionState.Update] rather than silently clamped.
package climate
