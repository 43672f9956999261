// Package thermal computes the steady-state resistance network inside a
// borehole cross-section: convective film, pipe wall, grout, and the
// leg-to-leg short circuit of multi-pipe probes. Resistances are per metre of
// borehole, the form the sizing superposition consumes.
package thermal

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/3ddruck12/geosonde/pkg/borehole"
	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/fluid"
	"github.com/3ddruck12/geosonde/pkg/pipe"
)

// Correction factors for the four-leg arrangements relative to the two-leg
// line-source expressions.
const (
	doubleUBorehole = 0.7
	doubleUInternal = 0.5
)

// Laminar-flow Nusselt number for constant wall temperature, and the Reynolds
// number above which the film follows the Dittus-Boelter correlation.
const (
	nusseltLaminar    = 3.66
	reynoldsTurbulent = 2300.0
)

// Resistances is the per-metre network of one borehole.
type Resistances struct {
	// Grout is the fluid-to-bore-wall conduction through the backfill.
	Grout float64
	// PipeWall is the wall conduction, combined over all parallel legs.
	PipeWall float64
	// Film is the convective film, combined over all parallel legs.
	Film float64
	// Internal is the leg-to-leg short-circuit resistance (Ra). Not part
	// of the fluid-to-ground path.
	Internal float64
}

// Borehole returns Rb, the effective fluid-to-bore-wall resistance.
func (r Resistances) Borehole() float64 {
	return r.Grout + r.PipeWall + r.Film
}

// PipeWallResistance returns the conduction resistance of one pipe wall per
// metre.
func PipeWallResistance(innerDiameter, outerDiameter, conductivity float64) (float64, error) {
	if innerDiameter <= 0 {
		return 0, &errs.ValidationError{Field: "pipe.inner_diameter", Value: innerDiameter, Reason: "must be positive"}
	}
	if outerDiameter <= innerDiameter {
		return 0, &errs.GeometryError{Detail: fmt.Sprintf(
			"outer diameter %.1f mm not larger than inner %.1f mm",
			outerDiameter*1000, innerDiameter*1000)}
	}
	if conductivity <= 0 {
		return 0, &errs.ValidationError{Field: "pipe.conductivity", Value: conductivity, Reason: "must be positive"}
	}
	return math.Log(outerDiameter/innerDiameter) / (2 * math.Pi * conductivity), nil
}

// FilmResistance returns the convective resistance of one leg per metre for
// the given volumetric flow through that leg.
func FilmResistance(innerDiameter, flowPerLeg float64, props fluid.Props) (float64, error) {
	if innerDiameter <= 0 {
		return 0, &errs.ValidationError{Field: "pipe.inner_diameter", Value: innerDiameter, Reason: "must be positive"}
	}
	if flowPerLeg <= 0 {
		return 0, &errs.ValidationError{Field: "flow_per_leg", Value: flowPerLeg, Reason: "must be positive"}
	}
	if props.Viscosity <= 0 || props.Conductivity <= 0 || props.Density <= 0 || props.SpecificHeat <= 0 {
		return 0, &errs.ValidationError{Field: "fluid.properties", Value: 0, Reason: "all fluid properties must be positive"}
	}

	area := math.Pi / 4 * innerDiameter * innerDiameter
	velocity := flowPerLeg / area
	re := props.Density * velocity * innerDiameter / props.Viscosity

	nu := nusseltLaminar
	if re >= reynoldsTurbulent {
		nu = 0.023 * math.Pow(re, 0.8) * math.Pow(props.Prandtl(), 0.4)
	}
	h := nu * props.Conductivity / innerDiameter
	return 1 / (math.Pi * innerDiameter * h), nil
}

// uTubeGroutResistance returns the two-leg line-source grout resistance and
// the leg-to-leg internal resistance.
func uTubeGroutResistance(boreRadius, pipeOuterRadius, shankSpacing, groutConductivity float64) (rb, ra float64, err error) {
	if shankSpacing < 2*pipeOuterRadius {
		return 0, 0, &errs.GeometryError{Detail: fmt.Sprintf(
			"shank spacing %.0f mm below the %.0f mm the two pipes occupy",
			shankSpacing*1000, 2*pipeOuterRadius*1000)}
	}
	if shankSpacing/2+pipeOuterRadius > boreRadius {
		return 0, 0, &errs.GeometryError{Detail: fmt.Sprintf(
			"shank spacing %.0f mm exceeds a %.0f mm bore", shankSpacing*1000, 2*boreRadius*1000)}
	}
	rb = (math.Log(boreRadius/pipeOuterRadius) + math.Log(boreRadius/shankSpacing)) /
		(4 * math.Pi * groutConductivity)
	ra = math.Log(shankSpacing/pipeOuterRadius) / (math.Pi * groutConductivity)
	return rb, ra, nil
}

// coaxialResistances returns the bore and internal resistances of a coaxial
// probe: backfill plus outer wall toward the ground, inner wall between the
// two streams.
func coaxialResistances(boreRadius float64, p pipe.Configuration, groutConductivity float64) (rb, ra float64) {
	outerOuter := p.OuterDiameter / 2
	outerInner := outerOuter - p.WallThickness
	// The inner drop pipe of the catalogue probes runs one series smaller.
	innerOuter := outerOuter / 2
	innerInner := innerOuter - p.WallThickness/2

	rb = math.Log(boreRadius/outerOuter)/(2*math.Pi*groutConductivity) +
		math.Log(outerOuter/outerInner)/(2*math.Pi*p.Conductivity)
	ra = math.Log(innerOuter/innerInner) / (2 * math.Pi * p.Conductivity)
	return rb, ra
}

// Compute builds the resistance network for one borehole at the given flow.
// flowPerLeg is the volumetric flow through a single vertical leg in m3/s.
// A non-positive borehole resistance is an internal-consistency failure and
// surfaces as an error, never as a clamped value.
func Compute(p pipe.Configuration, bore borehole.Configuration, props fluid.Props, flowPerLeg float64) (Resistances, error) {
	if err := p.Validate(); err != nil {
		return Resistances{}, err
	}
	if err := bore.Validate(); err != nil {
		return Resistances{}, err
	}

	legs := float64(p.Type.Legs())

	wall, err := PipeWallResistance(p.InnerDiameter(), p.OuterDiameter, p.Conductivity)
	if err != nil {
		return Resistances{}, err
	}
	film, err := FilmResistance(p.InnerDiameter(), flowPerLeg, props)
	if err != nil {
		return Resistances{}, err
	}

	var r Resistances
	switch p.Type {
	case pipe.Coaxial:
		r.Grout, r.Internal = coaxialResistances(bore.Radius(), p, bore.GroutConductivity)
		// Only the outer annulus exchanges with the ground.
		r.PipeWall = 0
		r.Film = film
	case pipe.DoubleU, pipe.FourPipe:
		rb, ra, err := uTubeGroutResistance(bore.Radius(), p.OuterDiameter/2, p.ShankSpacing, bore.GroutConductivity)
		if err != nil {
			return Resistances{}, err
		}
		r.Grout = rb * doubleUBorehole
		r.Internal = ra * doubleUInternal
		r.PipeWall = wall / legs
		r.Film = film / legs
	default:
		rb, ra, err := uTubeGroutResistance(bore.Radius(), p.OuterDiameter/2, p.ShankSpacing, bore.GroutConductivity)
		if err != nil {
			return Resistances{}, err
		}
		r.Grout = rb
		r.Internal = ra
		r.PipeWall = wall / legs
		r.Film = film / legs
	}

	if r.Borehole() <= 0 || r.Internal <= 0 {
		return Resistances{}, fmt.Errorf("non-physical borehole resistance Rb=%.4f Ra=%.4f for %s probe in %.0f mm bore",
			r.Borehole(), r.Internal, p.Type, bore.Diameter*1000)
	}

	log.WithFields(log.Fields{
		"arrangement": p.Type,
		"rb":          r.Borehole(),
		"ra":          r.Internal,
	}).Debug("borehole resistance network computed")
	return r, nil
}
