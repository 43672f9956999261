// Package sizing iterates the VDI 4640 three-scale superposition to the
// borehole length that holds the fluid temperature limits. Two nested loops
// drive it: an inner length iteration that re-derives the borehole
// resistance, the response factors and the depth-averaged ground temperature
// for every candidate, and an outer adjustment that grows the borehole count
// whenever the converged depth exceeds the permitted maximum. Re-deriving
// the resistances inside the loop matters: a deeper or more numerous field
// changes the per-circuit flow and the mean ground temperature, and a length
// computed from stale resistances lands short.
package sizing

import (
	"context"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/3ddruck12/geosonde/pkg/borehole"
	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/fluid"
	"github.com/3ddruck12/geosonde/pkg/gfunction"
	"github.com/3ddruck12/geosonde/pkg/ground"
	"github.com/3ddruck12/geosonde/pkg/hydraulics"
	"github.com/3ddruck12/geosonde/pkg/load"
	"github.com/3ddruck12/geosonde/pkg/pipe"
	"github.com/3ddruck12/geosonde/pkg/thermal"
	"github.com/3ddruck12/geosonde/pkg/units"
)

// State names the solver phases, mostly for logs and diagnostics.
type State int

const (
	StateInitial State = iota
	StateResistances
	StateTimescales
	StateLengthCandidate
	StateConverged
	StateCountAdjusted
	StateDiverged
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateResistances:
		return "resistances"
	case StateTimescales:
		return "timescales"
	case StateLengthCandidate:
		return "length-candidate"
	case StateConverged:
		return "converged"
	case StateCountAdjusted:
		return "count-adjusted"
	case StateDiverged:
		return "diverged"
	default:
		return "unknown"
	}
}

// CountPolicy decides how the field grows when the depth cap binds.
type CountPolicy string

const (
	// MinimizeCount drills as few boreholes as the depth cap allows and
	// lets each run to the cap.
	MinimizeCount CountPolicy = "minimize-count"
	// PreserveDepth keeps every borehole near the configured start depth
	// and grows the count instead.
	PreserveDepth CountPolicy = "preserve-depth"
)

// Config tunes the solver. Zero values select the defaults below.
type Config struct {
	// LengthTolerance is the relative change between candidates below
	// which the length iteration counts as converged.
	LengthTolerance float64
	// MaxLengthIterations caps the inner loop per side and count.
	MaxLengthIterations int
	// MaxCountAdjustments caps the outer loop.
	MaxCountAdjustments int
	Policy              CountPolicy
	// ProviderTimeout bounds a single response-factor evaluation; zero
	// leaves the provider unwrapped.
	ProviderTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.LengthTolerance == 0 {
		c.LengthTolerance = 0.005
	}
	if c.MaxLengthIterations == 0 {
		c.MaxLengthIterations = 20
	}
	if c.MaxCountAdjustments == 0 {
		c.MaxCountAdjustments = 20
	}
	if c.Policy == "" {
		c.Policy = MinimizeCount
	}
	return c
}

// Input is one sizing problem.
type Input struct {
	Ground ground.Profile
	Bore   borehole.Configuration
	Pipe   pipe.Configuration
	Fluid  fluid.Spec
	Load   load.Profile
	// MinFluidTemp and MaxFluidTemp bound the mean fluid temperature in
	// heating and cooling.
	MinFluidTemp float64
	MaxFluidTemp float64
	// DeltaT is the spread across the heat pump.
	DeltaT float64
	// MeanFluidTemp is the property lookup temperature; zero is the 0 degC
	// heating design condition.
	MeanFluidTemp float64
	// FlowM3h is the total loop flow. Zero derives it from the larger
	// peak ground load and the spread.
	FlowM3h float64
}

// Contribution is one superposition term of one side, evaluated at the
// final length.
type Contribution struct {
	// G and Resistance describe the ground response of the time scale.
	G          float64
	Resistance float64
	// Load is the ground-side magnitude in W, DeltaT the fluid swing it
	// costs.
	Load   float64
	DeltaT float64
}

// SideResult is the sizing outcome of one side.
type SideResult struct {
	Side load.Side
	// RequiredLength is the total borehole metres this side alone needs.
	RequiredLength float64
	// ReactionSpread is the usable temperature difference of this side.
	ReactionSpread       float64
	Base, Periodic, Peak Contribution
	// ExitTemp is the brine temperature leaving the heat pump at the
	// design point, evaluated at the final field length.
	ExitTemp float64
}

// Result is the converged field.
type Result struct {
	DominantSide load.Side
	// Heating and Cooling are nil when the profile has no such load.
	Heating *SideResult
	Cooling *SideResult

	TotalLength float64
	Depth       float64
	Count       int
	// GroundTemp is the undisturbed temperature averaged over the final
	// depth.
	GroundTemp float64
	// Resistances is the borehole network at the final state, FlowM3h the
	// loop flow it was evaluated at.
	Resistances thermal.Resistances
	FlowM3h     float64
	// MonthlyFluidTemp is the mean fluid temperature per month from the
	// base drift plus that month's periodic load.
	MonthlyFluidTemp [12]float64

	Iterations       int
	CountAdjustments int
	FinalState       State
}

// RequiredLength solves the length equation of one side: the total borehole
// metres that hold the reaction spread against the three-scale superposition.
func RequiredLength(loads load.GroundLoads, rBase, rPer, rPeak, rb, spread float64) (float64, error) {
	if spread <= 0 {
		return 0, &errs.ValidationError{Field: "sizing.reaction_spread", Value: spread,
			Reason: "fluid limit on the wrong side of the ground temperature"}
	}
	numerator := loads.Base*(rBase+rb) + loads.Periodic*(rPer+rb) + loads.Peak*(rPeak+rb)
	if numerator <= 0 {
		return 0, &errs.ValidationError{Field: "sizing.load", Value: numerator, Reason: "no thermal load"}
	}
	return numerator / spread, nil
}

// TemperaturePenalty is the fluid swing one superposition term costs at a
// total field length.
func TemperaturePenalty(loadW, scaleResistance, rb, totalLength float64) float64 {
	return loadW * (scaleResistance + rb) / totalLength
}

// Solver runs the sizing iteration against a response-factor provider.
type Solver struct {
	tables   *fluid.Tables
	provider gfunction.Provider
	cfg      Config
}

// New builds a solver. A non-zero provider timeout in the config wraps the
// provider so a stuck evaluation surfaces as a TimeoutError.
func New(tables *fluid.Tables, provider gfunction.Provider, cfg Config) *Solver {
	cfg = cfg.withDefaults()
	if cfg.ProviderTimeout > 0 {
		provider = gfunction.WithTimeout(provider, cfg.ProviderTimeout)
	}
	return &Solver{tables: tables, provider: provider, cfg: cfg}
}

// scales bundles the per-candidate ground response.
type scales struct {
	gBase, gPer, gPeak float64
	rBase, rPer, rPeak float64
	rb                 thermal.Resistances
	groundTemp         float64
}

// Size runs the full iteration and returns the converged field.
func (s *Solver) Size(ctx context.Context, in Input) (*Result, error) {
	if err := in.Ground.Validate(); err != nil {
		return nil, err
	}
	if err := in.Bore.Validate(); err != nil {
		return nil, err
	}
	if err := in.Pipe.Validate(); err != nil {
		return nil, err
	}
	if err := in.Load.Validate(); err != nil {
		return nil, err
	}
	if in.DeltaT <= 0 {
		return nil, &errs.ValidationError{Field: "sizing.delta_t", Value: in.DeltaT, Reason: "must be positive"}
	}
	if in.MinFluidTemp >= in.MaxFluidTemp {
		return nil, &errs.ValidationError{Field: "sizing.fluid_limits", Value: in.MinFluidTemp,
			Reason: "minimum fluid temperature must lie below the maximum"}
	}
	sides := in.Load.Active()
	if len(sides) == 0 {
		return nil, &errs.ValidationError{Field: "sizing.load", Value: 0, Reason: "profile carries neither heating nor cooling"}
	}

	props, err := s.tables.PropertiesAt(in.Fluid, in.MeanFluidTemp)
	if err != nil {
		return nil, err
	}

	flow := units.CubicMetersPerHourToPerSecond(in.FlowM3h)
	if flow <= 0 {
		flow = s.deriveFlow(in, props)
	}

	work := in.Bore
	work.MaxDepth = 0 // the outer loop enforces the cap itself

	result := &Result{Count: in.Bore.Count, FinalState: StateInitial}

	for adjustment := 0; ; adjustment++ {
		lengths := map[load.Side]float64{}

		for _, side := range sides {
			length, iters, err := s.convergeLength(ctx, in, work, props, flow, side)
			result.Iterations += iters
			if err != nil {
				return nil, err
			}
			lengths[side] = length
		}

		dominant := sides[0]
		for _, side := range sides[1:] {
			if lengths[side] > lengths[dominant] {
				dominant = side
			}
		}
		total := lengths[dominant]
		depth := total / float64(work.Count)

		if in.Bore.MaxDepth <= 0 || depth <= in.Bore.MaxDepth {
			result.DominantSide = dominant
			result.CountAdjustments = adjustment
			return s.finish(ctx, in, work, props, flow, lengths, result)
		}

		if adjustment >= s.cfg.MaxCountAdjustments {
			log.WithFields(log.Fields{
				"state": StateDiverged,
				"depth": depth,
				"count": work.Count,
			}).Warn("count adjustment cap reached")
			return nil, &errs.ConvergenceError{Stage: "borehole count adjustment",
				Iterations: adjustment, Last: depth}
		}

		work.Count = s.grow(total, work.Count, in)
		work.Depth = total / float64(work.Count)
		result.FinalState = StateCountAdjusted
		log.WithFields(log.Fields{
			"state":     StateCountAdjusted,
			"count":     work.Count,
			"depth":     work.Depth,
			"policy":    s.cfg.Policy,
			"dominant":  dominant,
			"total_len": total,
		}).Debug("depth cap exceeded, field grown")
	}
}

// grow applies the count policy to an over-deep solution.
func (s *Solver) grow(totalLength float64, current int, in Input) int {
	target := in.Bore.MaxDepth
	if s.cfg.Policy == PreserveDepth && in.Bore.Depth < target {
		target = in.Bore.Depth
	}
	next := int(math.Ceil(totalLength / target))
	if next <= current {
		next = current + 1
	}
	return next
}

func sideActive(p load.Profile, side load.Side) bool {
	for _, active := range p.Active() {
		if active == side {
			return true
		}
	}
	return false
}

// activeLoads returns the ground loads of a side, zero when the profile does
// not carry that side. The guard matters: the ground-side ratio of an unused
// side divides by its unset COP.
func activeLoads(p load.Profile, side load.Side) load.GroundLoads {
	if !sideActive(p, side) {
		return load.GroundLoads{}
	}
	return p.GroundLoads(side)
}

// deriveFlow sizes the loop flow from the larger peak ground load and the
// design spread.
func (s *Solver) deriveFlow(in Input, props fluid.Props) float64 {
	peak := activeLoads(in.Load, load.Heating).Peak
	if c := activeLoads(in.Load, load.Cooling).Peak; c > peak {
		peak = c
	}
	return hydraulics.Flow(peak, in.DeltaT, props)
}

// convergeLength iterates the length candidate of one side at a fixed count
// until the relative change drops below the tolerance.
func (s *Solver) convergeLength(ctx context.Context, in Input, work borehole.Configuration,
	props fluid.Props, flow float64, side load.Side) (float64, int, error) {

	loads := in.Load.GroundLoads(side)
	candidate := work.Depth * float64(work.Count)

	for iter := 1; iter <= s.cfg.MaxLengthIterations; iter++ {
		sc, err := s.evaluate(ctx, in, work, props, flow, candidate)
		if err != nil {
			return 0, iter, err
		}

		spread := sc.groundTemp - in.MinFluidTemp
		if side == load.Cooling {
			spread = in.MaxFluidTemp - sc.groundTemp
		}

		next, err := RequiredLength(loads, sc.rBase, sc.rPer, sc.rPeak, sc.rb.Borehole(), spread)
		if err != nil {
			return 0, iter, err
		}

		log.WithFields(log.Fields{
			"state":     StateLengthCandidate,
			"side":      side,
			"iteration": iter,
			"candidate": next,
			"previous":  candidate,
		}).Debug("length candidate")

		if math.Abs(next-candidate)/next <= s.cfg.LengthTolerance {
			return next, iter, nil
		}
		candidate = next
	}

	log.WithFields(log.Fields{
		"state": StateDiverged,
		"side":  side,
	}).Warn("length iteration cap reached")
	return 0, s.cfg.MaxLengthIterations, &errs.ConvergenceError{
		Stage:      string(side) + " length iteration",
		Iterations: s.cfg.MaxLengthIterations,
		Last:       candidate,
	}
}

// evaluate recomputes everything that depends on the candidate length: the
// depth-averaged ground temperature, the borehole resistance network at the
// per-circuit flow, and the three response factors.
func (s *Solver) evaluate(ctx context.Context, in Input, work borehole.Configuration,
	props fluid.Props, flow, candidate float64) (scales, error) {

	depth := candidate / float64(work.Count)
	work.Depth = depth

	var sc scales
	sc.groundTemp = in.Ground.MeanTempOverDepth(depth)

	perCircuit := flow / float64(work.Count)
	rb, err := thermal.Compute(in.Pipe, work, props, perCircuit)
	if err != nil {
		return scales{}, err
	}
	sc.rb = rb
	log.WithFields(log.Fields{
		"state": StateResistances,
		"rb":    rb.Borehole(),
		"depth": depth,
	}).Debug("borehole network re-evaluated")

	layout := gfunction.Layout{Positions: work.FieldPositions(), BoreholeRadius: work.Radius()}
	foBase, foPer, foPeak := gfunction.CharacteristicTimes(in.Ground.Diffusivity(), work.Radius())

	if sc.gBase, err = s.provider.Value(ctx, layout, foBase); err != nil {
		return scales{}, err
	}
	if sc.gPer, err = s.provider.Value(ctx, layout, foPer); err != nil {
		return scales{}, err
	}
	if sc.gPeak, err = s.provider.Value(ctx, layout, foPeak); err != nil {
		return scales{}, err
	}

	twoPiLambda := 2 * math.Pi * in.Ground.Conductivity
	sc.rBase = sc.gBase / twoPiLambda
	sc.rPer = sc.gPer / twoPiLambda
	sc.rPeak = sc.gPeak / twoPiLambda
	log.WithFields(log.Fields{
		"state":  StateTimescales,
		"g_base": sc.gBase,
		"g_per":  sc.gPer,
		"g_peak": sc.gPeak,
	}).Debug("response factors resolved")
	return sc, nil
}

// finish evaluates both sides at the final field length and assembles the
// result.
func (s *Solver) finish(ctx context.Context, in Input, work borehole.Configuration,
	props fluid.Props, flow float64, lengths map[load.Side]float64,
	result *Result) (*Result, error) {

	total := lengths[result.DominantSide]
	sc, err := s.evaluate(ctx, in, work, props, flow, total)
	if err != nil {
		return nil, err
	}

	result.TotalLength = total
	result.Count = work.Count
	result.Depth = total / float64(work.Count)
	result.GroundTemp = sc.groundTemp
	result.Resistances = sc.rb
	result.FlowM3h = units.CubicMetersPerSecondToPerHour(flow)

	for side, length := range lengths {
		sr := s.sideResult(in, sc, side, length, total)
		if side == load.Heating {
			result.Heating = sr
		} else {
			result.Cooling = sr
		}
	}

	result.MonthlyFluidTemp = s.monthlyTemps(in, sc, total)
	result.FinalState = StateConverged

	log.WithFields(log.Fields{
		"state":        StateConverged,
		"total_length": result.TotalLength,
		"depth":        result.Depth,
		"count":        result.Count,
		"dominant":     result.DominantSide,
		"iterations":   result.Iterations,
		"adjustments":  result.CountAdjustments,
	}).Info("field sized")

	return result, nil
}

// sideResult evaluates one side's contributions and exit temperature at the
// final length.
func (s *Solver) sideResult(in Input, sc scales, side load.Side, length, total float64) *SideResult {
	loads := in.Load.GroundLoads(side)
	rb := sc.rb.Borehole()

	sr := &SideResult{
		Side:           side,
		RequiredLength: length,
		Base:           Contribution{G: sc.gBase, Resistance: sc.rBase, Load: loads.Base},
		Periodic:       Contribution{G: sc.gPer, Resistance: sc.rPer, Load: loads.Periodic},
		Peak:           Contribution{G: sc.gPeak, Resistance: sc.rPeak, Load: loads.Peak},
	}
	sr.Base.DeltaT = TemperaturePenalty(loads.Base, sc.rBase, rb, total)
	sr.Periodic.DeltaT = TemperaturePenalty(loads.Periodic, sc.rPer, rb, total)
	sr.Peak.DeltaT = TemperaturePenalty(loads.Peak, sc.rPeak, rb, total)

	sign := -1.0
	sr.ReactionSpread = sc.groundTemp - in.MinFluidTemp
	if side == load.Cooling {
		sign = 1.0
		sr.ReactionSpread = in.MaxFluidTemp - sc.groundTemp
	}
	swing := sr.Base.DeltaT + sr.Periodic.DeltaT + sr.Peak.DeltaT
	sr.ExitTemp = sc.groundTemp + sign*swing - 0.5*in.DeltaT

	return sr
}

// monthlyTemps builds the mean fluid temperature per month: the long-term
// base drift plus the month's own periodic load, net across both sides.
// Extraction pulls the fluid below the ground temperature, rejection lifts
// it above.
func (s *Solver) monthlyTemps(in Input, sc scales, total float64) [12]float64 {
	rb := sc.rb.Borehole()
	baseNet := activeLoads(in.Load, load.Heating).Base - activeLoads(in.Load, load.Cooling).Base
	drift := TemperaturePenalty(baseNet, sc.rBase, rb, total)

	var out [12]float64
	for m := 0; m < 12; m++ {
		qm := 0.0
		if sideActive(in.Load, load.Heating) {
			qm += in.Load.MonthlyGroundLoad(load.Heating, m)
		}
		if sideActive(in.Load, load.Cooling) {
			qm -= in.Load.MonthlyGroundLoad(load.Cooling, m)
		}
		out[m] = sc.groundTemp - drift - TemperaturePenalty(qm, sc.rPer, rb, total)
	}
	return out
}
