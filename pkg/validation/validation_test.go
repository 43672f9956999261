package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3ddruck12/geosonde/pkg/borehole"
	"github.com/3ddruck12/geosonde/pkg/fluid"
	"github.com/3ddruck12/geosonde/pkg/ground"
	"github.com/3ddruck12/geosonde/pkg/hydraulics"
	"github.com/3ddruck12/geosonde/pkg/load"
	"github.com/3ddruck12/geosonde/pkg/pipe"
	"github.com/3ddruck12/geosonde/pkg/sizing"
)

func validInput() sizing.Input {
	return sizing.Input{
		Ground: ground.Profile{Conductivity: 2.0, VolumetricHeatCapacity: 2.4e6, SurfaceTemp: 10, Gradient: 0.03},
		Bore: borehole.Configuration{
			Diameter: 0.152, Depth: 100, Count: 1, Spacing: 6,
			Shape: borehole.Line, GroutConductivity: 1.3, MaxDepth: 400,
		},
		Pipe: pipe.Configuration{
			Type: pipe.SingleU, OuterDiameter: 0.032, WallThickness: 0.003,
			Conductivity: 0.42, ShankSpacing: 0.06,
		},
		Fluid:        fluid.Spec{Family: fluid.EthyleneGlycol, Concentration: 25},
		Load:         load.Profile{AnnualHeatingKWh: 10000, PeakHeatingKW: 6, COP: 4},
		MinFluidTemp: -2,
		MaxFluidTemp: 30,
		DeltaT:       3,
	}
}

func TestReportMechanics(t *testing.T) {
	r := NewReport()
	assert.True(t, r.Valid)

	r.AddWarning(Result{Level: LevelGuideline, Message: "heads up"})
	assert.True(t, r.Valid, "warnings alone keep the report valid")
	assert.Equal(t, SeverityWarning, r.Warnings[0].Severity)

	other := NewReport()
	other.AddError(Result{Level: LevelRange, Message: "bad value"})
	other.AddInfo(Result{Level: LevelGuideline, Message: "fyi"})

	r.Merge(other)
	assert.False(t, r.Valid)
	assert.Len(t, r.Errors, 1)
	assert.Len(t, r.Warnings, 1)
	assert.Len(t, r.Info, 1)
	assert.Equal(t, "1 errors, 1 warnings, 1 info", r.Summary)
}

func TestValidateInputAcceptsTypicalDesign(t *testing.T) {
	r := ValidateInput(validInput())
	assert.True(t, r.Valid, "findings: %+v", r.Errors)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestValidateInputRangeViolations(t *testing.T) {
	in := validInput()
	in.Bore.Depth = 500
	in.Load.COP = 1.5

	r := ValidateInput(in)
	require.False(t, r.Valid)

	fields := map[string]bool{}
	for _, e := range r.Errors {
		fields[e.Field] = true
		assert.Equal(t, LevelRange, e.Level)
	}
	assert.True(t, fields["borehole_depth"])
	assert.True(t, fields["heat_pump_cop"])

	var depth Result
	for _, e := range r.Errors {
		if e.Field == "borehole_depth" {
			depth = e
		}
	}
	assert.Equal(t, "10-400 m", depth.Expected)
}

func TestValidateInputTemperatureConflicts(t *testing.T) {
	in := validInput()
	in.MinFluidTemp = 15
	in.MaxFluidTemp = 10

	r := ValidateInput(in)
	require.False(t, r.Valid)

	// 15 degC breaks its own range and conflicts with both the 10 degC
	// maximum and the undisturbed ground.
	conflicts := map[string]bool{}
	for _, e := range r.Errors {
		if e.Level == LevelConsistency {
			conflicts[e.ConflictWith] = true
		}
	}
	assert.True(t, conflicts["max_fluid_temperature"])
	assert.True(t, conflicts["undisturbed_ground_temp"])
	assert.Len(t, r.Errors, 3)
}

func TestValidateInputShankMustFitBore(t *testing.T) {
	in := validInput()
	in.Bore.Diameter = 0.12
	in.Pipe.ShankSpacing = 0.10

	r := ValidateInput(in)
	require.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "shank_spacing", r.Errors[0].Field)
	assert.Equal(t, "borehole_diameter", r.Errors[0].ConflictWith)
}

func TestValidateInputSpacingGuideline(t *testing.T) {
	in := validInput()
	in.Bore.Count = 4
	in.Bore.Spacing = 4

	r := ValidateInput(in)
	assert.True(t, r.Valid, "a guideline departure is not an error")
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, LevelGuideline, r.Warnings[0].Level)
	assert.Equal(t, "borehole_spacing", r.Warnings[0].Field)
}

func TestValidateFluidFreezeMargin(t *testing.T) {
	tables, err := fluid.Load()
	require.NoError(t, err)
	spec := fluid.Spec{Family: fluid.EthyleneGlycol, Concentration: 25}

	r := ValidateFluid(tables, spec, -2, 3)
	assert.True(t, r.Valid)
	assert.Empty(t, r.Warnings)

	// Coldest brine -10.5 degC against the -12 degC freeze line: thin margin.
	r = ValidateFluid(tables, spec, -9, 3)
	assert.True(t, r.Valid)
	assert.Len(t, r.Warnings, 1)

	// Coldest brine -12.5 degC would freeze.
	r = ValidateFluid(tables, spec, -11, 3)
	assert.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0].Message, "freeze limit")
}

func TestValidateHydraulicsRanges(t *testing.T) {
	in := hydraulics.Input{
		Bore:         validInput().Bore,
		Pipe:         validInput().Pipe,
		Fluid:        validInput().Fluid,
		DeltaT:       3,
		GroundLoadKW: 5,
		Circuits:     60,
	}
	r := ValidateHydraulics(in)
	require.False(t, r.Valid)
	assert.Equal(t, "num_circuits", r.Errors[0].Field)
}

func TestValidateSizingExtractionBand(t *testing.T) {
	in := validInput()
	soil := &ground.SoilType{Name: "sand, dry", ExtractionMin: 30, ExtractionMax: 50}

	// 4.5 kW ground peak on 50 m: 90 W/m, far above the band.
	r := ValidateSizing(in, &sizing.Result{TotalLength: 50, Depth: 50}, soil)
	assert.True(t, r.Valid, "band departures warn, they do not invalidate")
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0].Message, "exceeds")

	// 150 m: 30 W/m, right at the band floor.
	r = ValidateSizing(in, &sizing.Result{TotalLength: 150, Depth: 150}, soil)
	assert.Empty(t, r.Warnings)
	assert.Len(t, r.Info, 1)

	// 300 m: 15 W/m, conservative.
	r = ValidateSizing(in, &sizing.Result{TotalLength: 300, Depth: 300}, soil)
	assert.Empty(t, r.Warnings)
	assert.Len(t, r.Info, 2)
}
