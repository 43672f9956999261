package hydraulics

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3ddruck12/geosonde/pkg/borehole"
	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/fluid"
	"github.com/3ddruck12/geosonde/pkg/load"
	"github.com/3ddruck12/geosonde/pkg/pipe"
)

func mustTables(t *testing.T) *fluid.Tables {
	t.Helper()
	tables, err := fluid.Load()
	require.NoError(t, err)
	return tables
}

func eg25() fluid.Spec {
	return fluid.Spec{Family: fluid.EthyleneGlycol, Concentration: 25, Table: fluid.TableCurrent}
}

func singleUDN32Field(count int, depth float64) Input {
	return Input{
		Bore: borehole.Configuration{
			Diameter:          0.152,
			Depth:             depth,
			Count:             count,
			Spacing:           6,
			Shape:             borehole.Line,
			GroutConductivity: 1.3,
			MaxDepth:          400,
		},
		Pipe: pipe.Configuration{
			Type:          pipe.SingleU,
			OuterDiameter: 0.032,
			WallThickness: 0.003,
			Conductivity:  0.42,
			ShankSpacing:  0.06,
		},
		Fluid: eg25(),
	}
}

func TestFlowEnergyBalanceExact(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		props := fluid.Props{
			Density:      950 + rng.Float64()*150,
			Viscosity:    0.001 + rng.Float64()*0.01,
			SpecificHeat: 3000 + rng.Float64()*1400,
			Conductivity: 0.4 + rng.Float64()*0.2,
		}
		loadW := 500 + rng.Float64()*50000
		deltaT := 1 + rng.Float64()*9

		q := Flow(loadW, deltaT, props)
		back := q * props.Density * props.SpecificHeat * deltaT
		assert.InEpsilon(t, loadW, back, 1e-12)
	}
}

// A 6.5 kW detached house on one 120 m probe: the heat pump runs at COP 4.9
// with a 5 K spread, so the evaporator draws about 5.17 kW from the ground
// and the loop settles near 0.9 m3/h.
func TestSolveDetachedHouse(t *testing.T) {
	in := singleUDN32Field(1, 120)
	in.MeanFluidTemp = 0
	in.DeltaT = 5
	in.GroundLoadKW = 6.5 * load.ExtractionRatio(4.9)

	st, err := Solve(mustTables(t), in, Options{})
	require.NoError(t, err)

	assert.InEpsilon(t, 0.90, st.FlowM3h, 0.02)
	assert.InDelta(t, 0.472, st.Velocity, 0.005)
	assert.Greater(t, st.Reynolds, 3300.0)
	assert.Less(t, st.Reynolds, 3550.0)
	assert.Equal(t, Turbulent, st.Regime)
	assert.InDelta(t, 1.047, st.TotalBar(), 0.01)
	assert.InDelta(t, 10.68, st.Head(), 0.1)
	assert.InDelta(t, 52.4, st.ElectricPower, 1.5)

	require.Len(t, st.Components, 3)
	sum := 0.0
	for _, c := range st.Components {
		assert.Positive(t, c.Pressure)
		sum += c.Share
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

// The DN32 double-U reference case of the viscosity table revision: moving
// the reference from 15 degC to the 0 degC design condition raises the
// design-point pressure drop by about 16 percent.
func TestSolveTableRevisionShift(t *testing.T) {
	tables := mustTables(t)

	in := singleUDN32Field(2, 100)
	in.Pipe.Type = pipe.DoubleU
	in.DeltaT = 3
	in.GroundLoadKW = 11

	in.Fluid.Table = fluid.TableCurrent
	in.MeanFluidTemp = fluid.TableCurrent.RefTemp()
	current, err := Solve(tables, in, Options{})
	require.NoError(t, err)

	in.Fluid.Table = fluid.TableLegacy
	in.MeanFluidTemp = fluid.TableLegacy.RefTemp()
	legacy, err := Solve(tables, in, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 2.735, current.TotalBar(), 0.01)
	assert.InDelta(t, 2.355, legacy.TotalBar(), 0.01)
	assert.InDelta(t, 1.161, current.TotalBar()/legacy.TotalBar(), 0.005)

	assert.Equal(t, Turbulent, current.Regime)
	assert.Equal(t, Turbulent, legacy.Regime)
	assert.Greater(t, legacy.Reynolds, current.Reynolds)
}

func TestRegimeClassificationBoundaries(t *testing.T) {
	opts := Options{}.withDefaults()
	cases := []struct {
		re   float64
		want Regime
	}{
		{800, Laminar},
		{2299.9, Laminar},
		{2300, Transitional},
		{2400, Transitional},
		{2500, Transitional},
		{2500.1, Turbulent},
		{9000, Turbulent},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, opts.Classify(c.re), "Re %.1f", c.re)
	}
}

func TestSolveLaminarAdvisory(t *testing.T) {
	in := singleUDN32Field(1, 100)
	in.Fluid.Concentration = 35
	in.DeltaT = 5
	in.GroundLoadKW = 2

	st, err := Solve(mustTables(t), in, Options{})
	require.NoError(t, err)

	assert.Equal(t, Laminar, st.Regime)
	assert.InDelta(t, 875, st.Reynolds, 3)
	assert.InEpsilon(t, 64/st.Reynolds, st.FrictionFactor, 1e-9)

	joined := strings.Join(st.Warnings, "\n")
	assert.Contains(t, joined, "laminar")
}

func TestSolveRejectsBadInput(t *testing.T) {
	tables := mustTables(t)

	in := singleUDN32Field(1, 100)
	in.DeltaT = 3
	_, err := Solve(tables, in, Options{})
	var ve *errs.ValidationError
	assert.ErrorAs(t, err, &ve)

	in = singleUDN32Field(1, 100)
	in.GroundLoadKW = 5
	_, err = Solve(tables, in, Options{})
	assert.ErrorAs(t, err, &ve)

	in = singleUDN32Field(1, 100)
	in.GroundLoadKW = 5
	in.DeltaT = 3
	in.MeanFluidTemp = -40
	_, err = Solve(tables, in, Options{})
	var oor *errs.OutOfRangeError
	assert.ErrorAs(t, err, &oor)
}

func TestFindOperatingPoint(t *testing.T) {
	in := singleUDN32Field(1, 120)
	in.DeltaT = 5
	in.GroundLoadKW = 6.5 * load.ExtractionRatio(4.9)
	curve := Curve{MaxFlowM3h: 4, MaxHead: 12}

	op, err := FindOperatingPoint(mustTables(t), in, curve, Options{})
	require.NoError(t, err)

	// The pump is stronger than the design point needs, so it pushes the
	// loop a little past the design flow, up the system curve.
	assert.Greater(t, op.FlowM3h, 0.90)
	assert.Less(t, op.FlowM3h, curve.MaxFlowM3h)
	assert.Greater(t, op.Head, 10.68)
	assert.Less(t, op.Head, curve.MaxHead)
	assert.InDelta(t, curve.Head(op.FlowM3h), op.Head, 1e-6)
	assert.Positive(t, op.ElectricPower)
	assert.InEpsilon(t, 2*op.HydraulicPower, op.ElectricPower, 1e-9)
}

func TestFindOperatingPointNoIntersection(t *testing.T) {
	in := singleUDN32Field(1, 120)
	in.DeltaT = 5
	in.GroundLoadKW = 6.5 * load.ExtractionRatio(4.9)
	curve := Curve{MaxFlowM3h: 4, MaxHead: 4}

	_, err := FindOperatingPoint(mustTables(t), in, curve, Options{})
	var ni *errs.NoIntersectionError
	require.ErrorAs(t, err, &ni)
	assert.InDelta(t, 4.0, ni.PumpMaxHead, 1e-9)
	assert.InDelta(t, 10.68, ni.RequiredHead, 0.1)
}
