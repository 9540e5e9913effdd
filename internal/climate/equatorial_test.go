package climate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquatorialInsolation(t *testing.T) {
	f := testForcing()

	tests := []struct {
		name      string
		timeOfDay float64
		want      float64
	}{
		{"midnight", 0, 0.5 * equatorialInsolationFraction * 590},
		{"diurnal peak", 0.25, 1.0 * equatorialInsolationFraction * 590},
		{"noon", 0.5, 0.5 * equatorialInsolationFraction * 590},
		{"diurnal trough", 0.75, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.TimeOfDay = tt.timeOfDay
			assert.InDelta(t, tt.want, equatorialInsolation(f), 1e-9)
		})
	}
}

func TestEquatorialUpdate_HumidityRelaxation(t *testing.T) {
	t.Run("moves toward the moisture/temperature target", func(t *testing.T) {
		r := testEquatorial(t)
		require.Zero(t, r.RelativeHumidity)

		f := testForcing()
		for i := 0; i < 200; i++ {
			require.NoError(t, r.Update(f, 3600))
			assertInvariants(t, r)
		}

		// target = min(0.8, 0.1·2 + (Ts − 200)/200); the band settles in the
		// low 200s K under this forcing, putting the target in (0.2, 0.5).
		target := math.Min(humidityCeiling, r.SoilMoisture*2+(r.SurfaceTemperatureK-200)/200)
		assert.InDelta(t, target, r.RelativeHumidity, 0.05)
	})

	t.Run("ceiling at 0.8 with saturated soil", func(t *testing.T) {
		r, err := NewEquatorialRegion(0, testEquatorialAreaKm2, 300, 1.0)
		require.NoError(t, err)

		f := testForcing()
		f.GreenhouseEffect = 200 // keep the band hot
		for i := 0; i < 300; i++ {
			require.NoError(t, r.Update(f, 3600))
		}

		assert.LessOrEqual(t, r.RelativeHumidity, humidityCeiling+1e-9)
		assert.Greater(t, r.RelativeHumidity, 0.7)
	})

	t.Run("long steps settle instead of overshooting", func(t *testing.T) {
		r := testEquatorial(t)
		// dt of one sol gives a raw relaxation factor well above 1; it must
		// be capped so humidity lands on the target, not beyond it.
		require.NoError(t, r.Update(testForcing(), SolSeconds))
		assert.GreaterOrEqual(t, r.RelativeHumidity, 0.0)
		assert.LessOrEqual(t, r.RelativeHumidity, 1.0)
	})
}

func TestEquatorialUpdate_WindRelaxation(t *testing.T) {
	t.Run("tracks the surface/atmosphere gradient", func(t *testing.T) {
		r := testEquatorial(t)

		f := testForcing()
		for i := 0; i < 500; i++ {
			require.NoError(t, r.Update(f, 3600))
		}

		gradient := math.Abs(r.SurfaceTemperatureK - r.AtmosphericTemperatureK)
		target := clamp(windBaseMps+gradient*windGradientGain, minWindSpeedMps, maxWindSpeedMps)
		assert.InDelta(t, target, r.WindSpeedMps, 0.5)
	})

	t.Run("clamped to its band", func(t *testing.T) {
		r := testEquatorial(t)
		// Force a large artificial gradient; the target exceeds the cap.
		r.SurfaceTemperatureK = 350
		r.AtmosphericTemperatureK = 100

		for i := 0; i < 10; i++ {
			require.NoError(t, r.Update(testForcing(), SolSeconds))
			assert.GreaterOrEqual(t, r.WindSpeedMps, minWindSpeedMps)
			assert.LessOrEqual(t, r.WindSpeedMps, maxWindSpeedMps)
		}
	})
}

func TestEquatorialUpdate_EquilibriumConvergence(t *testing.T) {
	// With constant forcing, repeated stepping must converge: successive
	// temperature deltas shrink toward zero instead of diverging or
	// oscillating unboundedly.
	r := testEquatorial(t)
	f := testForcing()

	prev := r.SurfaceTemperatureK
	var lastDelta float64
	for i := 0; i < 10_000; i++ {
		require.NoError(t, r.Update(f, 3600))
		lastDelta = r.SurfaceTemperatureK - prev
		prev = r.SurfaceTemperatureK
	}

	assert.Less(t, math.Abs(lastDelta), 1e-3)
	assertInvariants(t, r)

	// One more day of stepping barely moves the settled temperature.
	settled := r.SurfaceTemperatureK
	for i := 0; i < 24; i++ {
		require.NoError(t, r.Update(f, 3600))
	}
	assert.InDelta(t, settled, r.SurfaceTemperatureK, 0.1)
}

func TestEquatorialUpdate_AtmosphereLagsSurface(t *testing.T) {
	r := testEquatorial(t)
	f := testForcing()
	f.TimeOfDay = 0.25 // peak insolation

	surfaceBefore := r.SurfaceTemperatureK
	atmBefore := r.AtmosphericTemperatureK
	require.NoError(t, r.Update(f, 3600))

	surfaceDelta := r.SurfaceTemperatureK - surfaceBefore
	atmDelta := r.AtmosphericTemperatureK - atmBefore
	require.NotZero(t, surfaceDelta)
	assert.InDelta(t, surfaceDelta*equatorialAtmosphereLag, atmDelta, 1e-9)
}
