// Package engine orchestrates the per-step climate simulation: it owns the
// fixed region collection, feeds shared forcing to every region, and exposes
// the aggregated planet-wide snapshot.
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tharsis-sim/marsclim/internal/climate"
)

// ErrNoMatchingRegion is returned by OverrideTemperature when the selector
// matches none of the engine's regions.
var ErrNoMatchingRegion = errors.New("no region matches selector")

// RegionSelector picks regions for an external temperature override. Kind is
// sufficient to address any region: the two poles carry their hemisphere in
// the kind tag and the equatorial band is unique.
type RegionSelector struct {
	Kind climate.RegionKind `json:"kind"`
}

// Engine is the climate simulation core. It is constructed once per
// scenario with a fixed set of regions and stepped for the lifetime of the
// simulation; resets tear the whole engine down and rebuild it.
//
// Step, OverrideTemperature, and Snapshot are serialized by an internal
// mutex: an override can never land in the middle of a step, and region
// updates within one step always complete before aggregation runs.
type Engine struct {
	mu             sync.Mutex
	regions        []*climate.RegionState
	last           climate.GlobalClimateAverages
	simTimeSeconds float64
	steps          uint64
}

// New creates an engine over the given regions. A region count of zero is
// valid: the engine steps trivially and snapshots stay zero-valued. Nil
// regions are rejected.
func New(regions []*climate.RegionState) (*Engine, error) {
	for i, r := range regions {
		if r == nil {
			return nil, fmt.Errorf("region %d is nil", i)
		}
	}
	e := &Engine{regions: regions}
	e.last = climate.Aggregate(e.regions)
	return e, nil
}

// Step advances every region by dt seconds under the shared forcing, then
// aggregates and returns the planet-wide averages. Regions are independent
// within a step, so update order does not matter; aggregation runs strictly
// after all updates complete.
//
// A non-nil error means the forcing or a derived value was non-finite — a
// modelling defect, not a recoverable condition. The engine state is not
// rolled back; callers should treat the run as corrupt.
func (e *Engine) Step(f climate.Forcing, dt float64) (climate.GlobalClimateAverages, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range e.regions {
		if err := r.Update(f, dt); err != nil {
			return climate.GlobalClimateAverages{}, fmt.Errorf("step %d: %w", e.steps+1, err)
		}
	}

	e.simTimeSeconds += dt
	e.steps++
	e.last = climate.Aggregate(e.regions)
	return e.last, nil
}

// OverrideTemperature imposes an authoritative surface temperature on every
// region the selector matches. This is the single sanctioned external
// mutation path; values are clamped to the same bands as organic updates, so
// an override can never violate the region invariants. The change becomes
// visible on the next Snapshot or Step.
func (e *Engine) OverrideTemperature(sel RegionSelector, temperatureK float64) error {
	if math.IsNaN(temperatureK) || math.IsInf(temperatureK, 0) {
		return errors.New("override temperature is not finite")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	matched := false
	for _, r := range e.regions {
		if r.Kind != sel.Kind {
			continue
		}
		r.ApplySurfaceTemperature(temperatureK)
		matched = true
	}
	if !matched {
		return fmt.Errorf("%w: kind %s", ErrNoMatchingRegion, sel.Kind)
	}

	e.last = climate.Aggregate(e.regions)
	return nil
}

// Snapshot returns the last computed aggregate without re-stepping. It is
// idempotent and side-effect-free.
func (e *Engine) Snapshot() climate.GlobalClimateAverages {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Regions returns a copy of the current region states for read-only
// consumers (status endpoints, validation reports).
func (e *Engine) Regions() []climate.RegionState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]climate.RegionState, len(e.regions))
	for i, r := range e.regions {
		out[i] = *r
	}
	return out
}

// SimTimeSeconds returns the total simulated time integrated so far.
func (e *Engine) SimTimeSeconds() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.simTimeSeconds
}

// StepCount returns the number of completed steps.
func (e *Engine) StepCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps
}
