// Package load turns building heating and cooling demand into the three
// characteristic ground loads of the superposition sizing method: the
// long-term base load, the worst-month periodic load, and the short-term
// peak. Heat-pump ratios convert building-side energy to ground-side energy,
// since the compressor supplies part of the heating and adds to the rejected
// cooling heat.
package load

import (
	_ "embed"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"

	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/units"
)

// Side distinguishes the two sizing directions of the ground circuit.
type Side string

const (
	Heating Side = "heating"
	Cooling Side = "cooling"
)

// HotWaterPerPersonKWh is the annual domestic hot-water demand per person
// after VDI 2067.
const HotWaterPerPersonKWh = 800.0

// Profile is the building demand driving the sizing run.
type Profile struct {
	// AnnualHeatingKWh and AnnualCoolingKWh are building-side energies.
	AnnualHeatingKWh float64
	AnnualCoolingKWh float64
	// PeakHeatingKW and PeakCoolingKW are building-side peak loads.
	PeakHeatingKW float64
	PeakCoolingKW float64
	// FullLoadHours derives the annual energy when it is not given.
	FullLoadHours float64
	// COP at the heating design point, EER at the cooling design point.
	COP float64
	EER float64
	// MonthlyHeating and MonthlyCooling distribute the annual energy over
	// the year; each array should sum to one.
	MonthlyHeating [12]float64
	MonthlyCooling [12]float64
}

// GroundLoads are the three superposition loads on the ground side, in watts,
// as positive magnitudes.
type GroundLoads struct {
	Base     float64
	Periodic float64
	Peak     float64
}

// ExtractionRatio is the ground-side share of the heating output: the
// compressor work supplies the rest.
func ExtractionRatio(cop float64) float64 {
	return (cop - 1) / cop
}

// RejectionRatio is the ground-side share of the cooling load: the compressor
// work is rejected on top of it.
func RejectionRatio(eer float64) float64 {
	return (eer + 1) / eer
}

// Validate rejects profiles a sizing run cannot use.
func (p Profile) Validate() error {
	if p.AnnualHeatingKWh < 0 || p.AnnualCoolingKWh < 0 {
		return &errs.ValidationError{Field: "load.annual_energy", Value: math.Min(p.AnnualHeatingKWh, p.AnnualCoolingKWh), Reason: "must not be negative"}
	}
	if p.PeakHeatingKW < 0 || p.PeakCoolingKW < 0 {
		return &errs.ValidationError{Field: "load.peak", Value: math.Min(p.PeakHeatingKW, p.PeakCoolingKW), Reason: "must not be negative"}
	}
	if p.heatingActive() && p.COP <= 1 {
		return &errs.ValidationError{Field: "load.cop", Value: p.COP, Reason: "heating sizing needs a COP above 1"}
	}
	if p.coolingActive() && p.EER <= 0 {
		return &errs.ValidationError{Field: "load.eer", Value: p.EER, Reason: "cooling sizing needs a positive EER"}
	}
	for i, f := range p.MonthlyHeating {
		if f < 0 {
			return &errs.ValidationError{Field: fmt.Sprintf("load.monthly_heating[%d]", i), Value: f, Reason: "must not be negative"}
		}
	}
	for i, f := range p.MonthlyCooling {
		if f < 0 {
			return &errs.ValidationError{Field: fmt.Sprintf("load.monthly_cooling[%d]", i), Value: f, Reason: "must not be negative"}
		}
	}
	return nil
}

func (p Profile) heatingActive() bool {
	return p.AnnualHeatingKWh > 0 || p.PeakHeatingKW > 0
}

func (p Profile) coolingActive() bool {
	return p.AnnualCoolingKWh > 0 || p.PeakCoolingKW > 0
}

// Active reports which sides the profile loads.
func (p Profile) Active() []Side {
	var sides []Side
	if p.heatingActive() {
		sides = append(sides, Heating)
	}
	if p.coolingActive() {
		sides = append(sides, Cooling)
	}
	return sides
}

// AnnualEnergy returns the building-side annual energy of one side, derived
// from full-load hours when not given directly.
func (p Profile) AnnualEnergy(side Side) float64 {
	annual, peak := p.AnnualHeatingKWh, p.PeakHeatingKW
	if side == Cooling {
		annual, peak = p.AnnualCoolingKWh, p.PeakCoolingKW
	}
	if annual == 0 && p.FullLoadHours > 0 {
		annual = peak * p.FullLoadHours
	}
	return annual
}

// GroundLoads derives the three superposition loads of one side. The base
// load spreads the annual ground energy over the year, the periodic load
// concentrates the worst month into its 730 hours, and the peak converts the
// building peak to the ground side.
func (p Profile) GroundLoads(side Side) GroundLoads {
	ratio := ExtractionRatio(p.COP)
	monthly := p.MonthlyHeating
	peak := p.PeakHeatingKW
	if side == Cooling {
		ratio = RejectionRatio(p.EER)
		monthly = p.MonthlyCooling
		peak = p.PeakCoolingKW
	}

	annualGround := p.AnnualEnergy(side) * ratio

	worstMonth := floats.Max(monthly[:])
	return GroundLoads{
		Base:     annualGround * 1000 / units.HoursPerYear,
		Periodic: annualGround * worstMonth * 1000 / units.HoursPerMonth,
		Peak:     units.KWToW(peak) * ratio,
	}
}

// MonthlyGroundLoad returns the mean ground-side load of one month in watts.
func (p Profile) MonthlyGroundLoad(side Side, month int) float64 {
	ratio := ExtractionRatio(p.COP)
	monthly := p.MonthlyHeating
	if side == Cooling {
		ratio = RejectionRatio(p.EER)
		monthly = p.MonthlyCooling
	}
	return p.AnnualEnergy(side) * ratio * monthly[month] * 1000 / units.HoursPerMonth
}

type profileRow struct {
	Name string  `csv:"name"`
	Side string  `csv:"side"`
	Jan  float64 `csv:"jan"`
	Feb  float64 `csv:"feb"`
	Mar  float64 `csv:"mar"`
	Apr  float64 `csv:"apr"`
	May  float64 `csv:"may"`
	Jun  float64 `csv:"jun"`
	Jul  float64 `csv:"jul"`
	Aug  float64 `csv:"aug"`
	Sep  float64 `csv:"sep"`
	Oct  float64 `csv:"oct"`
	Nov  float64 `csv:"nov"`
	Dec  float64 `csv:"dec"`
}

func (r profileRow) factors() [12]float64 {
	return [12]float64{r.Jan, r.Feb, r.Mar, r.Apr, r.May, r.Jun, r.Jul, r.Aug, r.Sep, r.Oct, r.Nov, r.Dec}
}

//go:embed profiles.csv
var profilesCSV string

// Template is a named pair of monthly distributions for a building type.
type Template struct {
	Name    string
	Heating [12]float64
	Cooling [12]float64
}

// Catalogue holds the monthly distribution templates and the hot-water
// profile, immutable after load.
type Catalogue struct {
	templates map[string]Template
	dhw       [12]float64
	names     []string
}

// LoadCatalogue parses the embedded template table.
func LoadCatalogue() (*Catalogue, error) {
	var rows []profileRow
	if err := gocsv.UnmarshalString(profilesCSV, &rows); err != nil {
		return nil, fmt.Errorf("parsing load profile table: %w", err)
	}
	c := &Catalogue{templates: map[string]Template{}}
	for _, r := range rows {
		switch r.Side {
		case "dhw":
			c.dhw = r.factors()
			continue
		case "heating", "cooling":
		default:
			return nil, fmt.Errorf("load profile %q: unknown side %q", r.Name, r.Side)
		}
		tpl := c.templates[r.Name]
		tpl.Name = r.Name
		if r.Side == "heating" {
			tpl.Heating = r.factors()
		} else {
			tpl.Cooling = r.factors()
		}
		c.templates[r.Name] = tpl
	}
	for name, tpl := range c.templates {
		if s := floats.Sum(tpl.Heating[:]); math.Abs(s-1) > 0.02 && s != 0 {
			return nil, fmt.Errorf("load profile %q: heating factors sum to %.3f", name, s)
		}
		if s := floats.Sum(tpl.Cooling[:]); math.Abs(s-1) > 0.02 && s != 0 {
			return nil, fmt.Errorf("load profile %q: cooling factors sum to %.3f", name, s)
		}
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Get returns the template with the given name.
func (c *Catalogue) Get(name string) (Template, error) {
	tpl, ok := c.templates[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Template{}, fmt.Errorf("unknown load profile %q (known: %s)", name, strings.Join(c.names, ", "))
	}
	return tpl, nil
}

// Names lists the templates in sorted order.
func (c *Catalogue) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// HotWaterAnnualKWh returns the VDI 2067 annual hot-water energy for the
// number of occupants.
func (c *Catalogue) HotWaterAnnualKWh(persons int) float64 {
	return HotWaterPerPersonKWh * float64(persons)
}

// HotWaterMonthly returns the monthly hot-water distribution.
func (c *Catalogue) HotWaterMonthly() [12]float64 {
	return c.dhw
}
