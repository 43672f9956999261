package project

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/3ddruck12/geosonde/pkg/borehole"
	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/fluid"
	"github.com/3ddruck12/geosonde/pkg/ground"
	"github.com/3ddruck12/geosonde/pkg/load"
	"github.com/3ddruck12/geosonde/pkg/pipe"
	"github.com/3ddruck12/geosonde/pkg/pump"
	"github.com/3ddruck12/geosonde/pkg/sizing"
)

// Databases bundles the embedded catalogues a project resolves against.
type Databases struct {
	Soils    *ground.Catalogue
	Pipes    *pipe.Catalogue
	Profiles *load.Catalogue
	Fluids   *fluid.Tables
	Pumps    *pump.Catalogue
}

// OpenDatabases loads every embedded catalogue.
func OpenDatabases() (*Databases, error) {
	soils, err := ground.LoadCatalogue()
	if err != nil {
		return nil, fmt.Errorf("soil catalogue: %w", err)
	}
	pipes, err := pipe.LoadCatalogue()
	if err != nil {
		return nil, fmt.Errorf("pipe catalogue: %w", err)
	}
	profiles, err := load.LoadCatalogue()
	if err != nil {
		return nil, fmt.Errorf("load profile catalogue: %w", err)
	}
	fluids, err := fluid.Load()
	if err != nil {
		return nil, fmt.Errorf("brine tables: %w", err)
	}
	pumps, err := pump.LoadCatalogue()
	if err != nil {
		return nil, fmt.Errorf("pump catalogue: %w", err)
	}
	return &Databases{Soils: soils, Pipes: pipes, Profiles: profiles, Fluids: fluids, Pumps: pumps}, nil
}

// Resolved is a project bound to solver inputs.
type Resolved struct {
	Name  string
	Input sizing.Input
	// Circuits is the parallel circuit count for the hydraulic model; zero
	// falls back to the borehole count.
	Circuits int
	// Soil is set when the ground came from a soil class, for the VDI
	// extraction-band check.
	Soil *ground.SoilType
	// Forecast and Filter parameterize the pump selection.
	Forecast pump.ForecastOptions
	Filter   pump.Filter
}

// Resolve binds the spec to the catalogues and converts to solver units.
func (s *Spec) Resolve(db *Databases) (*Resolved, error) {
	r := &Resolved{Name: s.Name, Circuits: s.Operation.Circuits}

	if err := s.resolveSite(db, r); err != nil {
		return nil, err
	}
	if err := s.resolveBorefield(r); err != nil {
		return nil, err
	}
	if err := s.resolvePipe(db, r); err != nil {
		return nil, err
	}
	if err := s.resolveFluid(r); err != nil {
		return nil, err
	}
	if err := s.resolveDemand(db, r); err != nil {
		return nil, err
	}

	r.Input.MinFluidTemp = *s.Operation.MinFluidTemp
	r.Input.MaxFluidTemp = s.Operation.MaxFluidTemp
	r.Input.DeltaT = s.Operation.DeltaT
	r.Input.MeanFluidTemp = s.Operation.MeanFluidTemp
	r.Input.FlowM3h = s.Operation.FlowM3h

	r.Forecast = pump.ForecastOptions{
		OperatingHours: s.Pump.OperatingHours,
		PricePerKWh:    s.Pump.PricePerKWh,
	}
	r.Filter = pump.Filter{Regulated: s.Pump.Regulated, MaxResults: s.Pump.MaxResults}

	log.WithFields(log.Fields{
		"name":  s.Name,
		"soil":  s.Site.SoilType,
		"pipe":  s.Pipe.Series,
		"count": r.Input.Bore.Count,
	}).Debug("project resolved")
	return r, nil
}

func (s *Spec) resolveSite(db *Databases, r *Resolved) error {
	profile := ground.Profile{
		Conductivity:           s.Site.Conductivity,
		VolumetricHeatCapacity: s.Site.HeatCapacityMJ * 1e6,
		SurfaceTemp:            s.Site.SurfaceTemp,
		Gradient:               s.Site.Gradient,
	}

	if s.Site.SoilType != "" {
		soil, err := db.Soils.Get(s.Site.SoilType)
		if err != nil {
			return err
		}
		r.Soil = &soil
		if profile.Conductivity == 0 {
			profile.Conductivity = soil.Conductivity
		}
		if profile.VolumetricHeatCapacity == 0 {
			profile.VolumetricHeatCapacity = soil.HeatCapacity * 1e6
		}
	}

	if profile.Conductivity == 0 {
		return &errs.ValidationError{Field: "site.conductivity", Value: 0,
			Reason: "give a soil_type or an explicit conductivity"}
	}
	r.Input.Ground = profile
	return nil
}

func (s *Spec) resolveBorefield(r *Resolved) error {
	shape, err := parseShape(s.Borefield.Shape)
	if err != nil {
		return err
	}
	r.Input.Bore = borehole.Configuration{
		Diameter:          s.Borefield.DiameterMM / 1000,
		Depth:             s.Borefield.Depth,
		Count:             s.Borefield.Count,
		Spacing:           s.Borefield.Spacing,
		Shape:             shape,
		GroutConductivity: s.Borefield.GroutConductivity,
		MaxDepth:          *s.Borefield.MaxDepth,
	}
	return nil
}

func (s *Spec) resolvePipe(db *Databases, r *Resolved) error {
	arrangement, err := parseArrangement(s.Pipe.Arrangement)
	if err != nil {
		return err
	}
	shank := s.Pipe.ShankMM / 1000

	if s.Pipe.Series != "" {
		series, err := db.Pipes.Get(s.Pipe.Series)
		if err != nil {
			return err
		}
		r.Input.Pipe = series.Configuration(arrangement, shank)
		return nil
	}

	r.Input.Pipe = pipe.Configuration{
		Type:          arrangement,
		OuterDiameter: s.Pipe.OuterMM / 1000,
		WallThickness: s.Pipe.WallMM / 1000,
		Conductivity:  s.Pipe.Conductivity,
		ShankSpacing:  shank,
	}
	return nil
}

func (s *Spec) resolveFluid(r *Resolved) error {
	table, err := parseTable(s.Fluid.Table)
	if err != nil {
		return err
	}
	r.Input.Fluid = fluid.Spec{
		Family:        fluid.Family(s.Fluid.Family),
		Concentration: s.Fluid.Concentration,
		Table:         table,
	}
	return nil
}

func (s *Spec) resolveDemand(db *Databases, r *Resolved) error {
	d := s.Demand
	profile := load.Profile{
		AnnualHeatingKWh: d.AnnualHeatingKWh,
		AnnualCoolingKWh: d.AnnualCoolingKWh,
		PeakHeatingKW:    d.PeakHeatingKW,
		PeakCoolingKW:    d.PeakCoolingKW,
		FullLoadHours:    d.FullLoadHours,
		COP:              d.COP,
		EER:              d.EER,
	}

	if d.Profile != "" {
		tpl, err := db.Profiles.Get(d.Profile)
		if err != nil {
			return err
		}
		profile.MonthlyHeating = tpl.Heating
		profile.MonthlyCooling = tpl.Cooling
	}
	if d.MonthlyHeating != nil {
		factors, err := monthlyFactors("demand.monthly_heating", d.MonthlyHeating)
		if err != nil {
			return err
		}
		profile.MonthlyHeating = factors
	}
	if d.MonthlyCooling != nil {
		factors, err := monthlyFactors("demand.monthly_cooling", d.MonthlyCooling)
		if err != nil {
			return err
		}
		profile.MonthlyCooling = factors
	}

	if d.Occupants > 0 {
		blendHotWater(&profile, db.Profiles, d.Occupants)
	}

	r.Input.Load = profile
	return nil
}

// blendHotWater adds the VDI 2067 hot-water demand to the heating side and
// re-weights the monthly distribution between space heating and the flatter
// hot-water profile.
func blendHotWater(p *load.Profile, profiles *load.Catalogue, occupants int) {
	dhw := profiles.HotWaterAnnualKWh(occupants)
	space := p.AnnualHeatingKWh
	total := space + dhw
	if total <= 0 {
		return
	}

	dhwMonthly := profiles.HotWaterMonthly()
	for m := 0; m < 12; m++ {
		p.MonthlyHeating[m] = (space*p.MonthlyHeating[m] + dhw*dhwMonthly[m]) / total
	}
	p.AnnualHeatingKWh = total
}

func monthlyFactors(field string, values []float64) ([12]float64, error) {
	var out [12]float64
	if len(values) != 12 {
		return out, &errs.ValidationError{Field: field, Value: float64(len(values)),
			Reason: "needs exactly 12 monthly factors"}
	}
	copy(out[:], values)
	return out, nil
}

func parseShape(s string) (borehole.Shape, error) {
	switch borehole.Shape(s) {
	case borehole.Line, borehole.LShape, borehole.UShape, borehole.Rectangle:
		return borehole.Shape(s), nil
	}
	return "", fmt.Errorf("unknown field shape %q (known: line, l, u, rectangle)", s)
}

func parseArrangement(s string) (pipe.Type, error) {
	switch pipe.Type(s) {
	case pipe.SingleU, pipe.DoubleU, pipe.FourPipe, pipe.Coaxial:
		return pipe.Type(s), nil
	}
	return "", fmt.Errorf("unknown pipe arrangement %q (known: single-u, double-u, four-pipe, coaxial)", s)
}

func parseTable(s string) (fluid.TableVersion, error) {
	switch s {
	case "", "current":
		return fluid.TableCurrent, nil
	case "legacy":
		return fluid.TableLegacy, nil
	}
	return 0, fmt.Errorf("unknown property table %q (known: current, legacy)", s)
}
