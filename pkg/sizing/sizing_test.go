package sizing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3ddruck12/geosonde/pkg/borehole"
	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/fluid"
	"github.com/3ddruck12/geosonde/pkg/gfunction"
	"github.com/3ddruck12/geosonde/pkg/ground"
	"github.com/3ddruck12/geosonde/pkg/load"
	"github.com/3ddruck12/geosonde/pkg/pipe"
)

var (
	heatingFactors = [12]float64{0.155, 0.148, 0.125, 0.099, 0.064, 0, 0, 0, 0.061, 0.087, 0.117, 0.144}
	coolingFactors = [12]float64{0, 0, 0, 0.05, 0.15, 0.25, 0.30, 0.25, 0, 0, 0, 0}
)

func mustTables(t *testing.T) *fluid.Tables {
	t.Helper()
	tables, err := fluid.Load()
	require.NoError(t, err)
	return tables
}

func moraineGround() ground.Profile {
	return ground.Profile{
		Conductivity:           2.0,
		VolumetricHeatCapacity: 2.4e6,
		SurfaceTemp:            10,
		Gradient:               0.03,
	}
}

func testField(count int, depth, maxDepth float64) borehole.Configuration {
	return borehole.Configuration{
		Diameter:          0.152,
		Depth:             depth,
		Count:             count,
		Spacing:           6,
		Shape:             borehole.Line,
		GroutConductivity: 1.3,
		MaxDepth:          maxDepth,
	}
}

func testPipe() pipe.Configuration {
	return pipe.Configuration{
		Type:          pipe.SingleU,
		OuterDiameter: 0.032,
		WallThickness: 0.003,
		Conductivity:  0.42,
		ShankSpacing:  0.06,
	}
}

func detachedHouse() load.Profile {
	return load.Profile{
		AnnualHeatingKWh: 10000,
		PeakHeatingKW:    6,
		COP:              4,
		MonthlyHeating:   heatingFactors,
	}
}

func heatingInput(bore borehole.Configuration, profile load.Profile) Input {
	return Input{
		Ground:       moraineGround(),
		Bore:         bore,
		Pipe:         testPipe(),
		Fluid:        fluid.Spec{Family: fluid.EthyleneGlycol, Concentration: 25},
		Load:         profile,
		MinFluidTemp: -2,
		MaxFluidTemp: 30,
		DeltaT:       3,
	}
}

func TestRequiredLengthFormula(t *testing.T) {
	loads := load.GroundLoads{Base: 1000, Periodic: 2000, Peak: 5000}
	l, err := RequiredLength(loads, 0.2, 0.1, 0.05, 0.1, 12)
	require.NoError(t, err)
	assert.InDelta(t, (1000*0.3+2000*0.2+5000*0.15)/12, l, 1e-9)

	_, err = RequiredLength(loads, 0.2, 0.1, 0.05, 0.1, 0)
	var ve *errs.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = RequiredLength(load.GroundLoads{}, 0.2, 0.1, 0.05, 0.1, 12)
	assert.ErrorAs(t, err, &ve)
}

func TestTemperaturePenalty(t *testing.T) {
	assert.InDelta(t, 4.5, TemperaturePenalty(4500, 0.05, 0.1, 150), 1e-9)
}

func TestSizeDetachedHouse(t *testing.T) {
	s := New(mustTables(t), gfunction.LineSource{}, Config{})
	in := heatingInput(testField(1, 100, 400), detachedHouse())

	res, err := s.Size(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, StateConverged, res.FinalState)
	assert.Equal(t, load.Heating, res.DominantSide)
	assert.Equal(t, 1, res.Count)
	assert.Zero(t, res.CountAdjustments)
	assert.GreaterOrEqual(t, res.Iterations, 2)

	assert.Greater(t, res.TotalLength, 140.0)
	assert.Less(t, res.TotalLength, 175.0)
	assert.InDelta(t, res.TotalLength, res.Depth, 1e-9)

	require.NotNil(t, res.Heating)
	assert.Nil(t, res.Cooling)
	assert.Greater(t, res.Resistances.Borehole(), 0.10)
	assert.Less(t, res.Resistances.Borehole(), 0.20)

	// Converged onto the limit: the brine leaving the heat pump sits half
	// a spread below the minimum mean fluid temperature.
	assert.InDelta(t, in.MinFluidTemp-0.5*in.DeltaT, res.Heating.ExitTemp, 0.1)

	// Superposition orders the scale resistances by horizon.
	assert.Greater(t, res.Heating.Base.Resistance, res.Heating.Periodic.Resistance)
	assert.Greater(t, res.Heating.Periodic.Resistance, res.Heating.Peak.Resistance)

	// January carries the worst month, August no heating at all.
	assert.Less(t, res.MonthlyFluidTemp[0], res.MonthlyFluidTemp[7])
	for m, temp := range res.MonthlyFluidTemp {
		assert.Less(t, temp, res.GroundTemp, "month %d", m)
		assert.Greater(t, temp, in.MinFluidTemp, "month %d", m)
	}
}

func TestSizeIsIdempotent(t *testing.T) {
	tables := mustTables(t)
	s := New(tables, gfunction.LineSource{}, Config{})
	in := heatingInput(testField(1, 100, 400), detachedHouse())

	first, err := s.Size(context.Background(), in)
	require.NoError(t, err)
	second, err := s.Size(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A fresh solver over the same tables lands on the same result, so no
	// state survives outside the inputs.
	third, err := New(tables, gfunction.LineSource{}, Config{}).Size(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestSizeGrowsFieldAtDepthCap(t *testing.T) {
	s := New(mustTables(t), gfunction.LineSource{}, Config{})
	profile := load.Profile{
		AnnualHeatingKWh: 30000,
		PeakHeatingKW:    18,
		COP:              4,
		MonthlyHeating:   heatingFactors,
	}
	in := heatingInput(testField(1, 100, 100), profile)

	res, err := s.Size(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, StateConverged, res.FinalState)
	assert.GreaterOrEqual(t, res.CountAdjustments, 1)
	assert.GreaterOrEqual(t, res.Count, 5)
	assert.Less(t, res.Count, 9)
	assert.LessOrEqual(t, res.Depth, 100.0+1e-9)
	assert.Greater(t, res.TotalLength, 500.0)
	assert.Less(t, res.TotalLength, 700.0)

	// Re-running from the converged geometry must not move the answer:
	// the resistances were already evaluated at the final field.
	again := heatingInput(testField(res.Count, res.Depth, 100), profile)
	res2, err := s.Size(context.Background(), again)
	require.NoError(t, err)
	assert.Zero(t, res2.CountAdjustments)
	assert.InEpsilon(t, res.TotalLength, res2.TotalLength, 0.01)
}

func TestSizeCountPolicies(t *testing.T) {
	tables := mustTables(t)
	profile := load.Profile{
		AnnualHeatingKWh: 30000,
		PeakHeatingKW:    18,
		COP:              4,
		MonthlyHeating:   heatingFactors,
	}
	in := heatingInput(testField(1, 80, 100), profile)

	minimize, err := New(tables, gfunction.LineSource{}, Config{Policy: MinimizeCount}).
		Size(context.Background(), in)
	require.NoError(t, err)
	preserve, err := New(tables, gfunction.LineSource{}, Config{Policy: PreserveDepth}).
		Size(context.Background(), in)
	require.NoError(t, err)

	assert.Greater(t, preserve.Count, minimize.Count)
	assert.Less(t, preserve.Depth, minimize.Depth)
	assert.LessOrEqual(t, minimize.Depth, 100.0+1e-9)
	assert.LessOrEqual(t, preserve.Depth, 100.0+1e-9)
}

func TestSizeCoolingOnly(t *testing.T) {
	s := New(mustTables(t), gfunction.LineSource{}, Config{})
	in := heatingInput(testField(1, 100, 400), load.Profile{
		AnnualCoolingKWh: 8000,
		PeakCoolingKW:    6,
		EER:              4,
		MonthlyCooling:   coolingFactors,
	})
	in.MaxFluidTemp = 28

	res, err := s.Size(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, load.Cooling, res.DominantSide)
	assert.Nil(t, res.Heating)
	require.NotNil(t, res.Cooling)
	assert.InDelta(t, in.MaxFluidTemp-0.5*in.DeltaT, res.Cooling.ExitTemp, 0.2)

	// Rejection lifts the loop above the ground temperature, July most.
	assert.Greater(t, res.MonthlyFluidTemp[6], res.MonthlyFluidTemp[0])
	for m, temp := range res.MonthlyFluidTemp {
		assert.Greater(t, temp, res.GroundTemp, "month %d", m)
		assert.Less(t, temp, in.MaxFluidTemp, "month %d", m)
	}
}

func TestSizeRejectsInfeasibleLimits(t *testing.T) {
	s := New(mustTables(t), gfunction.LineSource{}, Config{})
	in := heatingInput(testField(1, 100, 400), detachedHouse())
	in.MinFluidTemp = 15
	in.MaxFluidTemp = 20

	_, err := s.Size(context.Background(), in)
	var ve *errs.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSizeConvergenceCap(t *testing.T) {
	s := New(mustTables(t), gfunction.LineSource{}, Config{MaxLengthIterations: 1})
	in := heatingInput(testField(1, 100, 400), detachedHouse())

	_, err := s.Size(context.Background(), in)
	var ce *errs.ConvergenceError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Stage, "length")
}

type stuckProvider struct{ delay time.Duration }

func (p stuckProvider) Value(ctx context.Context, _ gfunction.Layout, _ float64) (float64, error) {
	select {
	case <-time.After(p.delay):
		return 5, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func TestSizeProviderTimeout(t *testing.T) {
	s := New(mustTables(t), stuckProvider{delay: 200 * time.Millisecond},
		Config{ProviderTimeout: 5 * time.Millisecond})
	in := heatingInput(testField(1, 100, 400), detachedHouse())

	_, err := s.Size(context.Background(), in)
	var te *errs.TimeoutError
	assert.ErrorAs(t, err, &te)
}
