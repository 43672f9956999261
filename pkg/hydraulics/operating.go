package hydraulics

import (
	log "github.com/sirupsen/logrus"

	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/fluid"
	"github.com/3ddruck12/geosonde/pkg/units"
)

// Curve is a falling pump characteristic approximated by a parabola through
// the shutoff head and the maximum flow: H(Q) = Hmax * (1 - (Q/Qmax)^2).
// Flow in m3/h, head in metres.
type Curve struct {
	MaxFlowM3h float64
	MaxHead    float64
}

// Head returns the pump head at the given flow, zero beyond the curve end.
func (c Curve) Head(flowM3h float64) float64 {
	if flowM3h >= c.MaxFlowM3h {
		return 0
	}
	r := flowM3h / c.MaxFlowM3h
	return c.MaxHead * (1 - r*r)
}

// OperatingPoint is the intersection of a system curve with a pump curve.
type OperatingPoint struct {
	FlowM3h float64
	// Head in metres and the same drop in Pa.
	Head     float64
	Pressure float64
	// HydraulicPower at the intersection and the electric draw behind the
	// wire-to-water efficiency.
	HydraulicPower float64
	ElectricPower  float64
}

// bisection steps; the interval shrinks by 2^-60, far below any flow meter.
const intersectSteps = 60

// FindOperatingPoint intersects the system curve of the design point with the
// pump curve. The system head rises monotonically from the fittings allowance
// at standstill, the pump head falls from shutoff to its maximum flow, so at
// most one intersection exists; a pump whose shutoff head is below the
// standstill system head never meets the curve and returns a
// NoIntersectionError.
func FindOperatingPoint(tables *fluid.Tables, in Input, curve Curve, opts Options) (*OperatingPoint, error) {
	opts = opts.withDefaults()
	st, err := Solve(tables, in, opts)
	if err != nil {
		return nil, err
	}
	if curve.MaxFlowM3h <= 0 || curve.MaxHead <= 0 {
		return nil, &errs.ValidationError{Field: "pump.curve", Value: curve.MaxHead, Reason: "curve needs positive max flow and head"}
	}

	system := systemHead(st, in, opts)

	// Excess head of the pump over the system. Positive at zero flow when
	// an intersection exists, always negative at the curve end.
	excess := func(q float64) float64 { return curve.Head(q) - system(q) }

	if excess(0) <= 0 {
		return nil, &errs.NoIntersectionError{PumpMaxHead: curve.MaxHead, RequiredHead: st.Head()}
	}

	lo, hi := 0.0, curve.MaxFlowM3h
	for i := 0; i < intersectSteps; i++ {
		mid := (lo + hi) / 2
		if excess(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	q := (lo + hi) / 2
	head := system(q)
	pa := units.BarToPa(head / units.HeadPerBar)
	qSI := units.CubicMetersPerHourToPerSecond(q)

	op := &OperatingPoint{
		FlowM3h:        q,
		Head:           head,
		Pressure:       pa,
		HydraulicPower: qSI * pa,
		ElectricPower:  qSI * pa / opts.PumpEfficiency,
	}

	log.WithFields(log.Fields{
		"flow_m3h":    q,
		"head_m":      head,
		"design_m3h":  st.FlowM3h,
		"design_head": st.Head(),
	}).Debug("pump operating point resolved")

	return op, nil
}

// systemHead builds the system curve of a solved state: friction re-evaluated
// at an arbitrary total flow plus the fixed fittings allowance, as head in
// metres. Fluid properties stay at the design temperature.
func systemHead(st *State, in Input, opts Options) func(totalM3h float64) float64 {
	d := in.Pipe.InnerDiameter()
	area := in.Pipe.FlowArea()
	legs := st.CircuitLength - opts.HorizontalLength
	fittings := units.BarToPa(opts.FittingsLossBar)

	return func(totalM3h float64) float64 {
		if totalM3h <= 0 {
			return units.BarToHead(units.PaToBar(fittings))
		}
		perCircuit := units.CubicMetersPerHourToPerSecond(totalM3h) / float64(st.Circuits)
		v := perCircuit / area
		re := Reynolds(st.Props, v, d)
		f := frictionFactor(re, d, opts.Roughness, opts.LaminarLimit)
		dp := darcy(f, legs+opts.HorizontalLength, d, st.Props.Density, v) + fittings
		return units.BarToHead(units.PaToBar(dp))
	}
}
