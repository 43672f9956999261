// Package hydraulics solves the brine loop of a borefield: design flow from
// the ground-side load, velocity and Reynolds number per circuit, the Darcy
// pressure drop split into its components, and the operating point against a
// circulation pump curve. A circuit is one borehole with its U-loops piped in
// series; circuits run in parallel off a common header, so every circuit sees
// the same pressure drop and the dimensioning circuit is any one of them.
package hydraulics

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/3ddruck12/geosonde/pkg/borehole"
	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/fluid"
	"github.com/3ddruck12/geosonde/pkg/pipe"
	"github.com/3ddruck12/geosonde/pkg/units"
)

// Regime buckets the flow character inside the probe pipes.
type Regime string

const (
	Laminar      Regime = "laminar"
	Transitional Regime = "transitional"
	Turbulent    Regime = "turbulent"
)

// Options tune the solver. The zero value selects the defaults below.
type Options struct {
	// LaminarLimit and TurbulentLimit bound the transitional band. A
	// Reynolds number exactly on the turbulent limit still counts as
	// transitional, so a value on the boundary never flips between runs.
	LaminarLimit   float64
	TurbulentLimit float64
	// HorizontalLength is the buried header run per circuit, trench plus
	// manifold, in metres.
	HorizontalLength float64
	// FittingsLossBar is the lumped allowance for bends, balancing valves
	// and the heat pump evaporator.
	FittingsLossBar float64
	// Roughness of the pipe wall in metres. PE is hydraulically smooth.
	Roughness float64
	// PumpEfficiency converts hydraulic to electric power, wire to water.
	PumpEfficiency float64
	// SpecificFlowMin and SpecificFlowMax bound the plausible design flow
	// in litres per second per kW of ground load. Together they roughly
	// correspond to spreads between 6 K and 1.5 K.
	SpecificFlowMin float64
	SpecificFlowMax float64
	// MaxCircuitFlowM3h is the flow per circuit above which a single probe
	// runs loud and erodes its fittings.
	MaxCircuitFlowM3h float64
}

func (o Options) withDefaults() Options {
	if o.LaminarLimit == 0 {
		o.LaminarLimit = 2300
	}
	if o.TurbulentLimit == 0 {
		o.TurbulentLimit = 2500
	}
	if o.HorizontalLength == 0 {
		o.HorizontalLength = 50
	}
	if o.FittingsLossBar == 0 {
		o.FittingsLossBar = 0.5
	}
	if o.Roughness == 0 {
		o.Roughness = 1.5e-6
	}
	if o.PumpEfficiency == 0 {
		o.PumpEfficiency = 0.5
	}
	if o.SpecificFlowMin == 0 {
		o.SpecificFlowMin = 0.04
	}
	if o.SpecificFlowMax == 0 {
		o.SpecificFlowMax = 0.15
	}
	if o.MaxCircuitFlowM3h == 0 {
		o.MaxCircuitFlowM3h = 2.5
	}
	return o
}

// Classify buckets a Reynolds number into the regime bands of the options.
func (o Options) Classify(reynolds float64) Regime {
	switch {
	case reynolds < o.LaminarLimit:
		return Laminar
	case reynolds <= o.TurbulentLimit:
		return Transitional
	default:
		return Turbulent
	}
}

// Input describes one hydraulic design point.
type Input struct {
	Bore borehole.Configuration
	Pipe pipe.Configuration
	// Fluid selects the brine; properties are taken from the tables at
	// MeanFluidTemp, the seasonal mean of the loop.
	Fluid         fluid.Spec
	MeanFluidTemp float64
	// DeltaT is the design spread between flow and return in kelvin.
	DeltaT float64
	// GroundLoadKW is the load crossing the loop. For a heat pump in
	// heating this is the evaporator load, building heat times (COP-1)/COP.
	GroundLoadKW float64
	// Circuits overrides the parallel circuit count. Zero means one
	// circuit per borehole.
	Circuits int
}

// Component is one contributor to the circuit pressure drop.
type Component struct {
	Name string
	// Pressure drop in Pa and its share of the total.
	Pressure float64
	Share    float64
}

// State is the solved hydraulic design point.
type State struct {
	Props    fluid.Props
	Circuits int
	// FlowM3h is the total system flow, CircuitFlowM3h the share of one
	// parallel circuit.
	FlowM3h        float64
	CircuitFlowM3h float64
	// CircuitLength is the pipe run of one circuit: all U-loops of the
	// bore in series plus the horizontal header.
	CircuitLength  float64
	Velocity       float64
	Reynolds       float64
	Regime         Regime
	FrictionFactor float64
	// Components break the drop into borehole legs, header and fittings.
	Components []Component
	// TotalPressure is the circuit drop in Pa, equal for all parallel
	// circuits.
	TotalPressure float64
	// HydraulicPower moves the total flow across the drop; ElectricPower
	// divides by the wire-to-water efficiency.
	HydraulicPower float64
	ElectricPower  float64
	Warnings       []string
}

// TotalBar returns the circuit drop in bar.
func (s *State) TotalBar() float64 { return units.PaToBar(s.TotalPressure) }

// Head returns the circuit drop as metres of liquid column.
func (s *State) Head() float64 { return units.BarToHead(s.TotalBar()) }

// Flow returns the volume flow in m3/s that moves loadW watts across a
// spread of deltaT kelvin. This is the defining energy balance of the loop;
// no correction factors are applied.
func Flow(loadW, deltaT float64, props fluid.Props) float64 {
	return loadW / (props.Density * props.SpecificHeat * deltaT)
}

// Reynolds returns rho*v*d/mu for flow in a circular pipe.
func Reynolds(props fluid.Props, velocity, diameter float64) float64 {
	return props.Density * velocity * diameter / props.Viscosity
}

// frictionFactor picks 64/Re below the laminar limit and the Swamee-Jain
// approximation of the Colebrook equation above it. The transitional band
// uses the turbulent correlation, the conservative side.
func frictionFactor(reynolds, diameter, roughness, laminarLimit float64) float64 {
	if reynolds < laminarLimit {
		return 64 / reynolds
	}
	rel := roughness / diameter
	return 0.25 / math.Pow(math.Log10(rel/3.7+5.74/math.Pow(reynolds, 0.9)), 2)
}

// darcy is the Darcy-Weisbach pressure drop over a straight run, in Pa.
func darcy(friction, length, diameter, density, velocity float64) float64 {
	return friction * length / diameter * density * velocity * velocity / 2
}

// Solve resolves the design point: exact flow from the energy balance, then
// velocity, regime and the component pressure drops of one circuit.
func Solve(tables *fluid.Tables, in Input, opts Options) (*State, error) {
	opts = opts.withDefaults()

	if in.GroundLoadKW <= 0 {
		return nil, &errs.ValidationError{Field: "hydraulics.ground_load", Value: in.GroundLoadKW, Reason: "must be positive"}
	}
	if in.DeltaT <= 0 {
		return nil, &errs.ValidationError{Field: "hydraulics.delta_t", Value: in.DeltaT, Reason: "must be positive"}
	}
	if err := in.Pipe.Validate(); err != nil {
		return nil, err
	}
	if err := in.Bore.Validate(); err != nil {
		return nil, err
	}

	props, err := tables.PropertiesAt(in.Fluid, in.MeanFluidTemp)
	if err != nil {
		return nil, err
	}

	circuits := in.Circuits
	if circuits == 0 {
		circuits = in.Bore.Count
	}
	if circuits < 1 {
		return nil, &errs.ValidationError{Field: "hydraulics.circuits", Value: float64(circuits), Reason: "at least one circuit"}
	}

	total := Flow(units.KWToW(in.GroundLoadKW), in.DeltaT, props)
	perCircuit := total / float64(circuits)

	d := in.Pipe.InnerDiameter()
	v := perCircuit / in.Pipe.FlowArea()
	re := Reynolds(props, v, d)
	regime := opts.Classify(re)
	f := frictionFactor(re, d, opts.Roughness, opts.LaminarLimit)

	legs := float64(in.Pipe.Type.Loops()) * 2 * in.Bore.Depth
	dpLegs := darcy(f, legs, d, props.Density, v)
	dpHeader := darcy(f, opts.HorizontalLength, d, props.Density, v)
	dpFittings := units.BarToPa(opts.FittingsLossBar)
	dpTotal := dpLegs + dpHeader + dpFittings
	if dpTotal <= 0 || math.IsNaN(dpTotal) || math.IsInf(dpTotal, 0) {
		return nil, fmt.Errorf("hydraulics: non-physical pressure drop %g Pa", dpTotal)
	}

	components := []Component{
		{Name: "borehole legs", Pressure: dpLegs, Share: dpLegs / dpTotal},
		{Name: "horizontal header", Pressure: dpHeader, Share: dpHeader / dpTotal},
		{Name: "fittings and evaporator", Pressure: dpFittings, Share: dpFittings / dpTotal},
	}

	st := &State{
		Props:          props,
		Circuits:       circuits,
		FlowM3h:        units.CubicMetersPerSecondToPerHour(total),
		CircuitFlowM3h: units.CubicMetersPerSecondToPerHour(perCircuit),
		CircuitLength:  legs + opts.HorizontalLength,
		Velocity:       v,
		Reynolds:       re,
		Regime:         regime,
		FrictionFactor: f,
		Components:     components,
		TotalPressure:  dpTotal,
		HydraulicPower: total * dpTotal,
		ElectricPower:  total * dpTotal / opts.PumpEfficiency,
	}
	st.Warnings = advisories(st, in, opts)

	log.WithFields(log.Fields{
		"flow_m3h": st.FlowM3h,
		"velocity": v,
		"reynolds": re,
		"regime":   regime,
		"dp_bar":   st.TotalBar(),
	}).Debug("hydraulic design point solved")

	return st, nil
}

// advisories collects the plausibility warnings of a solved state. None of
// them fail the run; they flag designs a planner should look at twice.
func advisories(st *State, in Input, opts Options) []string {
	var w []string
	switch st.Regime {
	case Laminar:
		w = append(w, fmt.Sprintf(
			"laminar flow (Re %.0f): film heat transfer degrades, raise the flow or pick a smaller pipe", st.Reynolds))
	case Transitional:
		w = append(w, fmt.Sprintf(
			"transitional flow (Re %.0f between %.0f and %.0f): pressure drop and film predictions are uncertain",
			st.Reynolds, opts.LaminarLimit, opts.TurbulentLimit))
	}

	specific := st.FlowM3h / 3.6 / in.GroundLoadKW
	if specific < opts.SpecificFlowMin {
		w = append(w, fmt.Sprintf(
			"specific flow %.3f l/(s*kW) below %.2f: the spread will run wider than designed", specific, opts.SpecificFlowMin))
	} else if specific > opts.SpecificFlowMax {
		w = append(w, fmt.Sprintf(
			"specific flow %.3f l/(s*kW) above %.2f: check load and spread inputs", specific, opts.SpecificFlowMax))
	}

	if st.CircuitFlowM3h > opts.MaxCircuitFlowM3h {
		w = append(w, fmt.Sprintf(
			"circuit flow %.2f m3/h over %.2f m3/h: split the field into more parallel circuits", st.CircuitFlowM3h, opts.MaxCircuitFlowM3h))
	}
	return w
}
