package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/3ddruck12/geosonde/internal/config"
	"github.com/3ddruck12/geosonde/pkg/borehole"
	"github.com/3ddruck12/geosonde/pkg/gfunction"
	"github.com/3ddruck12/geosonde/pkg/hydraulics"
	"github.com/3ddruck12/geosonde/pkg/project"
	"github.com/3ddruck12/geosonde/pkg/pump"
	"github.com/3ddruck12/geosonde/pkg/report"
	"github.com/3ddruck12/geosonde/pkg/sizing"
	"github.com/3ddruck12/geosonde/pkg/units"
	"github.com/3ddruck12/geosonde/pkg/validation"
)

// session bundles what every subcommand needs: the resolved project, the open
// catalogues and the solver settings.
type session struct {
	resolved *project.Resolved
	db       *project.Databases
	settings *config.Settings
}

func openSession(projectPath string) (*session, error) {
	spec, err := project.LoadProject(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	db, err := project.OpenDatabases()
	if err != nil {
		return nil, err
	}
	resolved, err := spec.Resolve(db)
	if err != nil {
		return nil, fmt.Errorf("resolving project: %w", err)
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return &session{resolved: resolved, db: db, settings: &settings}, nil
}

// inputReport runs the pre-solve checks: parameter ranges, cross-field
// consistency and the freeze margin of the brine.
func (s *session) inputReport() *validation.Report {
	in := s.resolved.Input
	rep := validation.ValidateInput(in)
	rep.Merge(validation.ValidateFluid(s.db.Fluids, in.Fluid, in.MinFluidTemp, in.DeltaT))
	return rep
}

// hydraulicInput maps the project onto the hydraulic model at the given field
// geometry. The circuit load is the larger peak ground load of the two sides.
func (s *session) hydraulicInput(bore borehole.Configuration) hydraulics.Input {
	in := s.resolved.Input
	var peakW float64
	for _, side := range in.Load.Active() {
		if p := in.Load.GroundLoads(side).Peak; p > peakW {
			peakW = p
		}
	}
	return hydraulics.Input{
		Bore:          bore,
		Pipe:          in.Pipe,
		Fluid:         in.Fluid,
		MeanFluidTemp: in.MeanFluidTemp,
		DeltaT:        in.DeltaT,
		GroundLoadKW:  units.WToKW(peakW),
		Circuits:      s.resolved.Circuits,
	}
}

// heatPumpKW is the building-side rating the pump catalogue lists models for.
func (s *session) heatPumpKW() float64 {
	return math.Max(s.resolved.Input.Load.PeakHeatingKW, s.resolved.Input.Load.PeakCoolingKW)
}

// forecast projects the electricity use of one catalogue model. Project-level
// pump settings override the machine-wide ini values.
func (s *session) forecast(m pump.Model) (pump.Forecast, error) {
	mode := pump.Constant
	if m.Regulated {
		mode = pump.Regulated
	}
	opts := s.settings.ForecastOptions()
	if s.resolved.Forecast.OperatingHours > 0 {
		opts.OperatingHours = s.resolved.Forecast.OperatingHours
	}
	if s.resolved.Forecast.PricePerKWh > 0 {
		opts.PricePerKWh = s.resolved.Forecast.PricePerKWh
	}
	return pump.EnergyForecast(m.PowerAvgW, mode, opts)
}

func runValidate(projectPath string) error {
	s, err := openSession(projectPath)
	if err != nil {
		return err
	}

	rep := s.inputReport()
	rep.Merge(validation.ValidateHydraulics(s.hydraulicInput(s.resolved.Input.Bore)))

	printReport(rep)

	if !rep.Valid {
		os.Exit(1)
	}
	return nil
}

func runHydraulics(projectPath string) error {
	s, err := openSession(projectPath)
	if err != nil {
		return err
	}

	in := s.hydraulicInput(s.resolved.Input.Bore)
	rep := validation.ValidateHydraulics(in)
	if !rep.Valid {
		printReport(rep)
		return fmt.Errorf("project has validation errors")
	}

	st, err := hydraulics.Solve(s.db.Fluids, in, s.settings.HydraulicOptions())
	if err != nil {
		return err
	}

	printHydraulics(st)
	return nil
}

func runPumps(projectPath string) error {
	s, err := openSession(projectPath)
	if err != nil {
		return err
	}

	in := s.hydraulicInput(s.resolved.Input.Bore)
	st, err := hydraulics.Solve(s.db.Fluids, in, s.settings.HydraulicOptions())
	if err != nil {
		return err
	}

	matches := s.db.Pumps.Search(st.FlowM3h, st.Head(), s.heatPumpKW(), s.resolved.Filter)
	if len(matches) == 0 {
		return fmt.Errorf("no catalogue pump covers %.2f m3/h at %.2f m head", st.FlowM3h, st.Head())
	}

	printPumps(st, matches)

	best := matches[0].Model
	op, err := hydraulics.FindOperatingPoint(s.db.Fluids, in, best.Curve(), s.settings.HydraulicOptions())
	if err != nil {
		return err
	}
	f, err := s.forecast(best)
	if err != nil {
		return err
	}

	fmt.Println()
	printOperatingPoint(best, op)
	fmt.Println()
	printForecast(f)
	return nil
}

func runSize(projectPath, outputDir string) error {
	s, err := openSession(projectPath)
	if err != nil {
		return err
	}

	rep := s.inputReport()
	if !rep.Valid {
		printReport(rep)
		return fmt.Errorf("project has validation errors")
	}

	solver := sizing.New(s.db.Fluids, gfunction.LineSource{}, s.settings.SizingConfig())
	res, err := solver.Size(context.Background(), s.resolved.Input)
	if err != nil {
		return err
	}
	rep.Merge(validation.ValidateSizing(s.resolved.Input, res, s.resolved.Soil))

	// Hydraulics at the sized geometry, not the configured one.
	bore := s.resolved.Input.Bore
	bore.Depth = res.Depth
	bore.Count = res.Count
	in := s.hydraulicInput(bore)
	st, err := hydraulics.Solve(s.db.Fluids, in, s.settings.HydraulicOptions())
	if err != nil {
		return err
	}

	summary := report.Summary{
		Project:    s.resolved.Name,
		Load:       s.resolved.Input.Load,
		Sizing:     res,
		Hydraulics: st,
	}

	printSizing(s.resolved.Name, res)
	fmt.Println()
	printHydraulics(st)

	matches := s.db.Pumps.Search(st.FlowM3h, st.Head(), s.heatPumpKW(), s.resolved.Filter)
	if len(matches) > 0 {
		summary.Pumps = matches
		best := matches[0].Model

		op, err := hydraulics.FindOperatingPoint(s.db.Fluids, in, best.Curve(), s.settings.HydraulicOptions())
		if err != nil {
			return err
		}
		summary.OperatingPoint = op

		f, err := s.forecast(best)
		if err != nil {
			return err
		}
		summary.Forecast = &f

		fmt.Println()
		printPumps(st, matches)
		fmt.Println()
		printOperatingPoint(best, op)
		fmt.Println()
		printForecast(f)
	} else {
		fmt.Println("\nNo catalogue pump covers the design point.")
	}

	if len(rep.Warnings) > 0 || len(rep.Info) > 0 {
		fmt.Println()
		printReport(rep)
	}

	if outputDir != "" {
		if err := report.WriteFiles(outputDir, summary); err != nil {
			return err
		}
		fmt.Printf("\nReports written to %s\n", outputDir)
	}
	return nil
}
