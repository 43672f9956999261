// Package fluid resolves the thermophysical properties of the brine in the
// ground circuit. Properties come from concentration-indexed reference tables
// for water/glycol mixtures; lookups interpolate along the concentration axis
// and apply temperature corrections relative to the table's reference
// temperature. Lookups outside the tabulated domain fail instead of clamping:
// near the freeze-protection line the real viscosity rises faster than any
// extrapolation would predict.
package fluid

import (
	_ "embed"
	"fmt"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/interp"

	"github.com/3ddruck12/geosonde/pkg/errs"
)

// Family identifies the antifreeze agent mixed into the water.
type Family string

const (
	Water           Family = "water"
	EthyleneGlycol  Family = "ethylene-glycol"
	PropyleneGlycol Family = "propylene-glycol"
)

// TableVersion selects which viscosity reference the lookup uses. The current
// table is referenced at 0 degC per VDI-Waermeatlas, the design condition of a
// heating-mode brine circuit. The legacy table, referenced at 15 degC, is kept
// for comparison runs against results produced before the correction.
type TableVersion int

const (
	TableCurrent TableVersion = iota
	TableLegacy
)

// RefTemp returns the reference temperature of the table version in degC.
func (v TableVersion) RefTemp() float64 {
	if v == TableLegacy {
		return 15
	}
	return 0
}

// Spec selects a brine: family, glycol concentration in volume percent, and
// the property table version. Immutable once chosen for a project.
type Spec struct {
	Family        Family
	Concentration float64
	Table         TableVersion
}

// Props holds the resolved properties at one temperature.
type Props struct {
	Density      float64 // kg/m3
	Viscosity    float64 // Pa*s
	SpecificHeat float64 // J/(kg*K)
	Conductivity float64 // W/(m*K)
}

// Prandtl returns the Prandtl number of the fluid state.
func (p Props) Prandtl() float64 {
	return p.SpecificHeat * p.Viscosity / p.Conductivity
}

type brineRow struct {
	Family        string  `csv:"family"`
	Concentration float64 `csv:"concentration"`
	Density       float64 `csv:"density"`
	HeatCapacity  float64 `csv:"heat_capacity"`
	Conductivity  float64 `csv:"conductivity"`
	ViscosityRef0 float64 `csv:"viscosity_ref0"`
	ViscRef15     float64 `csv:"viscosity_ref15"`
	MinTemp       float64 `csv:"min_temp"`
	MaxTemp       float64 `csv:"max_temp"`
}

//go:embed brines.csv
var brinesCSV string

// familyTable interpolates every property column over the concentration axis
// of one fluid family.
type familyTable struct {
	minConc, maxConc float64
	density          interp.PiecewiseLinear
	heatCapacity     interp.PiecewiseLinear
	conductivity     interp.PiecewiseLinear
	viscRef0         interp.PiecewiseLinear
	viscRef15        interp.PiecewiseLinear
	minTemp          interp.PiecewiseLinear
	maxTemp          interp.PiecewiseLinear
}

// Tables is the loaded brine property database, immutable after load.
type Tables struct {
	families map[Family]*familyTable
}

// Load parses the embedded brine tables.
func Load() (*Tables, error) {
	var rows []brineRow
	if err := gocsv.UnmarshalString(brinesCSV, &rows); err != nil {
		return nil, fmt.Errorf("parsing brine table: %w", err)
	}

	byFamily := map[Family][]brineRow{}
	for _, r := range rows {
		f := Family(r.Family)
		byFamily[f] = append(byFamily[f], r)
	}

	t := &Tables{families: make(map[Family]*familyTable, len(byFamily))}
	for f, rs := range byFamily {
		ft, err := fitFamily(rs)
		if err != nil {
			return nil, fmt.Errorf("fitting %s table: %w", f, err)
		}
		t.families[f] = ft
	}
	return t, nil
}

func fitFamily(rows []brineRow) (*familyTable, error) {
	n := len(rows)
	concs := make([]float64, n)
	cols := make(map[string][]float64, 7)
	for name := range map[string]struct{}{
		"density": {}, "cp": {}, "lambda": {}, "visc0": {}, "visc15": {}, "tmin": {}, "tmax": {},
	} {
		cols[name] = make([]float64, n)
	}
	for i, r := range rows {
		concs[i] = r.Concentration
		cols["density"][i] = r.Density
		cols["cp"][i] = r.HeatCapacity
		cols["lambda"][i] = r.Conductivity
		cols["visc0"][i] = r.ViscosityRef0
		cols["visc15"][i] = r.ViscRef15
		cols["tmin"][i] = r.MinTemp
		cols["tmax"][i] = r.MaxTemp
	}

	ft := &familyTable{minConc: concs[0], maxConc: concs[n-1]}
	for name, pl := range map[string]*interp.PiecewiseLinear{
		"density": &ft.density, "cp": &ft.heatCapacity, "lambda": &ft.conductivity,
		"visc0": &ft.viscRef0, "visc15": &ft.viscRef15, "tmin": &ft.minTemp, "tmax": &ft.maxTemp,
	} {
		if err := pl.Fit(concs, cols[name]); err != nil {
			return nil, err
		}
	}
	return ft, nil
}

// FreezeLimit returns the lowest valid operating temperature for the spec's
// concentration, the freeze-protection line of the mixture.
func (t *Tables) FreezeLimit(spec Spec) (float64, error) {
	ft, conc, err := t.resolve(spec)
	if err != nil {
		return 0, err
	}
	return ft.minTemp.Predict(conc), nil
}

// PropertiesAt resolves the brine properties at the given temperature.
// Concentration outside the family's tabulated range and temperatures outside
// the freeze-protection-valid window return an OutOfRangeError.
func (t *Tables) PropertiesAt(spec Spec, temperature float64) (Props, error) {
	ft, conc, err := t.resolve(spec)
	if err != nil {
		return Props{}, err
	}

	tMin := ft.minTemp.Predict(conc)
	tMax := ft.maxTemp.Predict(conc)
	if temperature < tMin || temperature > tMax {
		return Props{}, &errs.OutOfRangeError{
			Quantity: "temperature", Value: temperature, Min: tMin, Max: tMax,
		}
	}

	visc := ft.viscRef0.Predict(conc)
	if spec.Table == TableLegacy {
		visc = ft.viscRef15.Predict(conc)
	}

	ref := spec.Table.RefTemp()
	return Props{
		Density:      ft.density.Predict(conc) * (1 - 0.0002*(temperature-ref)),
		Viscosity:    viscosityAt(visc, ref, temperature),
		SpecificHeat: ft.heatCapacity.Predict(conc) * (1 + 0.0001*(temperature-ref)),
		Conductivity: ft.conductivity.Predict(conc) * (1 + 0.0005*(temperature-ref)),
	}, nil
}

// viscosityAt corrects a table viscosity from the reference temperature to the
// operating temperature. Above the reference the viscosity thins roughly
// hyperbolically; below it the mixture stiffens toward the freeze line.
func viscosityAt(tableValue, refTemp, temperature float64) float64 {
	d := temperature - refTemp
	if d >= 0 {
		return tableValue / (1 + 0.03*d)
	}
	return tableValue * (1 + 0.04*-d)
}

func (t *Tables) resolve(spec Spec) (*familyTable, float64, error) {
	family := spec.Family
	conc := spec.Concentration
	if family == Water || family == "" {
		family = EthyleneGlycol
		if conc != 0 {
			return nil, 0, &errs.ValidationError{
				Field: "fluid.concentration", Value: conc, Reason: "pure water carries no antifreeze",
			}
		}
	}
	ft, ok := t.families[family]
	if !ok {
		return nil, 0, &errs.ValidationError{
			Field: "fluid.family", Value: 0, Reason: fmt.Sprintf("unknown family %q", spec.Family),
		}
	}
	if conc < ft.minConc || conc > ft.maxConc {
		return nil, 0, &errs.OutOfRangeError{
			Quantity: "concentration", Value: conc, Min: ft.minConc, Max: ft.maxConc,
		}
	}
	return ft, conc, nil
}
