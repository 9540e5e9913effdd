// Command validate performs offline integrity checks on the climate model:
// it builds a scenario, runs the engine for a configurable number of steps,
// and verifies invariant bands, aggregate consistency, determinism, and
// numeric health without starting the service.
//
// Usage:
//
//	go run ./cmd/validate -steps 1000 -dt 3600
//	go run ./cmd/validate -scenario scenarios/polar-winter.yaml -steps 668 -dt 88775
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/tharsis-sim/marsclim/internal/climate"
	"github.com/tharsis-sim/marsclim/internal/engine"
	"github.com/tharsis-sim/marsclim/internal/forcing"
	"github.com/tharsis-sim/marsclim/internal/scenario"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type params struct {
	scenarioPath     string
	steps            int
	dt               float64
	solarConstant    float64
	pressureKPa      float64
	greenhouseEffect float64
}

func main() {
	var cfg params
	flag.StringVar(&cfg.scenarioPath, "scenario", "", "scenario YAML path (empty = built-in default)")
	flag.IntVar(&cfg.steps, "steps", 1000, "number of steps to run")
	flag.Float64Var(&cfg.dt, "dt", 3600, "simulated seconds per step")
	flag.Float64Var(&cfg.solarConstant, "solar-constant", 590, "base solar constant in W/m²")
	flag.Float64Var(&cfg.pressureKPa, "pressure", 0.6, "atmospheric pressure in kPa")
	flag.Float64Var(&cfg.greenhouseEffect, "greenhouse", 2.0, "greenhouse warming in K per unit insolation fraction")
	flag.Parse()

	if cfg.steps < 1 || cfg.dt <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(cfg))
}

func run(cfg params) int {
	fmt.Println("=== Climate Model Integrity Validation ===")
	fmt.Println()

	scn, err := loadScenario(cfg.scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load scenario: %v\n", err)
		return 1
	}
	fmt.Printf("Scenario %q: %d regions, %d steps of %.0fs\n", scn.Name, len(scn.Regions), cfg.steps, cfg.dt)

	phases := []*phase{
		validateInvariantBands(scn, cfg),
		validateAggregateConsistency(scn, cfg),
		validateDeterminism(scn, cfg),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == 20 {
				fmt.Printf("  ... %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadScenario(path string) (*scenario.Scenario, error) {
	if path == "" {
		return scenario.Default(), nil
	}
	return scenario.Load(path)
}

// buildRun constructs a fresh engine and forcing provider from the scenario.
func buildRun(scn *scenario.Scenario, cfg params) (*engine.Engine, *forcing.Provider, error) {
	regions, err := scn.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build regions: %w", err)
	}
	eng, err := engine.New(regions)
	if err != nil {
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}
	source, err := forcing.New(cfg.solarConstant, cfg.pressureKPa, cfg.greenhouseEffect)
	if err != nil {
		return nil, nil, fmt.Errorf("build forcing: %w", err)
	}
	return eng, source, nil
}

// ── Phase 1: Invariant Bands ──
// Every region must stay inside its physical bands at every step.

func validateInvariantBands(scn *scenario.Scenario, cfg params) *phase {
	p := &phase{name: "Phase 1: Invariant Bands"}

	eng, source, err := buildRun(scn, cfg)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	initialArea := map[int]float64{}
	for i, r := range eng.Regions() {
		initialArea[i] = r.SurfaceAreaKm2
	}

	for step := 0; step < cfg.steps; step++ {
		f := source.At(eng.SimTimeSeconds())
		if _, err := eng.Step(f, cfg.dt); err != nil {
			p.errorf("step %d: %v", step+1, err)
			return p
		}

		for i, r := range eng.Regions() {
			checkRegionBands(p, step+1, i, r, initialArea[i])
		}
	}
	return p
}

func checkRegionBands(p *phase, step, idx int, r climate.RegionState, areaKm2 float64) {
	pf := func(format string, args ...any) {
		p.errorf("step %d region %d (%s): "+format, append([]any{step, idx, r.Kind}, args...)...)
	}

	if r.SurfaceTemperatureK < 100 || r.SurfaceTemperatureK > 350 {
		pf("surface temperature %.2fK outside [100, 350]", r.SurfaceTemperatureK)
	}
	if r.AtmosphericTemperatureK < 100 || r.AtmosphericTemperatureK > 350 {
		pf("atmosphere temperature %.2fK outside [100, 350]", r.AtmosphericTemperatureK)
	}

	if r.Kind.IsPolar() {
		if r.SurfaceTemperatureK > 280 {
			pf("polar surface temperature %.2fK above 280", r.SurfaceTemperatureK)
		}
		if r.IceTemperatureK > 273 {
			pf("ice temperature %.2fK above 273", r.IceTemperatureK)
		}
		if r.IceCapAreaKm2 < 0 || r.IceCapAreaKm2 > areaKm2 {
			pf("ice cap area %.0f km² outside [0, %.0f]", r.IceCapAreaKm2, areaKm2)
		}
		if r.Albedo < 0.2 || r.Albedo > 0.6 {
			pf("albedo %.3f outside [0.2, 0.6]", r.Albedo)
		}
	} else {
		if r.RelativeHumidity < 0 || r.RelativeHumidity > 0.8 {
			pf("humidity %.3f outside [0, 0.8]", r.RelativeHumidity)
		}
		if r.WindSpeedMps < 0.5 || r.WindSpeedMps > 20 {
			pf("wind speed %.2f m/s outside [0.5, 20]", r.WindSpeedMps)
		}
	}
}

// ── Phase 2: Aggregate Consistency ──
// The engine's snapshot must equal an aggregate recomputed from the region
// states it exposes.

func validateAggregateConsistency(scn *scenario.Scenario, cfg params) *phase {
	p := &phase{name: "Phase 2: Aggregate Consistency"}

	eng, source, err := buildRun(scn, cfg)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	checkEvery := cfg.steps / 10
	if checkEvery < 1 {
		checkEvery = 1
	}

	for step := 0; step < cfg.steps; step++ {
		f := source.At(eng.SimTimeSeconds())
		snap, err := eng.Step(f, cfg.dt)
		if err != nil {
			p.errorf("step %d: %v", step+1, err)
			return p
		}
		if (step+1)%checkEvery != 0 {
			continue
		}

		states := eng.Regions()
		refs := make([]*climate.RegionState, len(states))
		for i := range states {
			refs[i] = &states[i]
		}
		recomputed := climate.Aggregate(refs)
		compareAggregates(p, step+1, snap, recomputed)
	}
	return p
}

func compareAggregates(p *phase, step int, got, want climate.GlobalClimateAverages) {
	check := func(name string, g, w float64) {
		if math.Abs(g-w) > 1e-9 {
			p.errorf("step %d: %s: snapshot %.9g, recomputed %.9g", step, name, g, w)
		}
	}
	check("surface_temperature_k", got.SurfaceTemperatureK, want.SurfaceTemperatureK)
	check("atmosphere_temperature_k", got.AtmosphericTemperatureK, want.AtmosphericTemperatureK)
	check("ice_temperature_k", got.IceTemperatureK, want.IceTemperatureK)
	check("total_ice_area_km2", got.TotalIceAreaKm2, want.TotalIceAreaKm2)
	check("average_albedo", got.AverageAlbedo, want.AverageAlbedo)
	check("average_humidity", got.AverageHumidity, want.AverageHumidity)
	check("average_wind_speed_mps", got.AverageWindSpeedMps, want.AverageWindSpeedMps)
	check("total_surface_area_km2", got.TotalSurfaceAreaKm2, want.TotalSurfaceAreaKm2)
}

// ── Phase 3: Determinism ──
// Two runs from the same scenario and parameters must produce identical
// snapshots at every step.

func validateDeterminism(scn *scenario.Scenario, cfg params) *phase {
	p := &phase{name: "Phase 3: Determinism"}

	engA, sourceA, err := buildRun(scn, cfg)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	engB, sourceB, err := buildRun(scn, cfg)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	for step := 0; step < cfg.steps; step++ {
		snapA, errA := engA.Step(sourceA.At(engA.SimTimeSeconds()), cfg.dt)
		snapB, errB := engB.Step(sourceB.At(engB.SimTimeSeconds()), cfg.dt)
		if errA != nil || errB != nil {
			p.errorf("step %d: run A err=%v, run B err=%v", step+1, errA, errB)
			return p
		}
		if snapA != snapB {
			p.errorf("step %d: runs diverged: %+v vs %+v", step+1, snapA, snapB)
			return p
		}
	}
	return p
}
