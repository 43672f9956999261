package validation

import (
	"fmt"

	"github.com/3ddruck12/geosonde/pkg/fluid"
	"github.com/3ddruck12/geosonde/pkg/ground"
	"github.com/3ddruck12/geosonde/pkg/hydraulics"
	"github.com/3ddruck12/geosonde/pkg/load"
	"github.com/3ddruck12/geosonde/pkg/pipe"
	"github.com/3ddruck12/geosonde/pkg/sizing"
)

// ValidateInput checks a sizing problem against the parameter ranges and the
// cross-field rules. It reports everything it finds; it never stops early.
func ValidateInput(in sizing.Input) *Report {
	r := NewReport()

	CheckValue(r, "borehole_depth", in.Bore.Depth)
	CheckValue(r, "borehole_diameter", in.Bore.Diameter*1000)
	CheckValue(r, "num_boreholes", float64(in.Bore.Count))
	if in.Bore.Count > 1 {
		CheckValue(r, "borehole_spacing", in.Bore.Spacing)
	}
	CheckValue(r, "grout_thermal_conductivity", in.Bore.GroutConductivity)

	CheckValue(r, "pipe_outer_diameter", in.Pipe.OuterDiameter*1000)
	CheckValue(r, "pipe_thickness", in.Pipe.WallThickness*1000)
	if in.Pipe.Type != pipe.Coaxial {
		CheckValue(r, "shank_spacing", in.Pipe.ShankSpacing*1000)
	}
	CheckValue(r, "pipe_thermal_conductivity", in.Pipe.Conductivity)

	CheckValue(r, "ground_thermal_conductivity", in.Ground.Conductivity)
	CheckValue(r, "ground_heat_capacity", in.Ground.VolumetricHeatCapacity/1e6)
	CheckValue(r, "undisturbed_ground_temp", in.Ground.SurfaceTemp)
	CheckValue(r, "geothermal_gradient", in.Ground.Gradient)

	heating := hasSide(in.Load, load.Heating)
	cooling := hasSide(in.Load, load.Cooling)
	if heating {
		CheckValue(r, "heat_pump_cop", in.Load.COP)
		CheckValue(r, "annual_heating_demand", in.Load.AnnualHeatingKWh/1000)
		CheckValue(r, "peak_heating_load", in.Load.PeakHeatingKW)
	}
	if cooling {
		CheckValue(r, "heat_pump_eer", in.Load.EER)
		CheckValue(r, "annual_cooling_demand", in.Load.AnnualCoolingKWh/1000)
		CheckValue(r, "peak_cooling_load", in.Load.PeakCoolingKW)
	}

	CheckValue(r, "min_fluid_temperature", in.MinFluidTemp)
	CheckValue(r, "max_fluid_temperature", in.MaxFluidTemp)
	CheckValue(r, "delta_t_fluid", in.DeltaT)
	CheckValue(r, "antifreeze_concentration", in.Fluid.Concentration)
	if in.FlowM3h > 0 {
		CheckValue(r, "fluid_flow_rate", in.FlowM3h)
	}

	checkGeometry(r, in)
	checkTemperatures(r, in, heating, cooling)

	if in.Bore.Count > 1 && in.Bore.Spacing < Ranges["borehole_spacing"].Default {
		r.AddWarning(Result{
			Level:       LevelGuideline,
			Message:     fmt.Sprintf("borehole spacing %.1f m is below the 6 m the VDI 4640 recommends; neighbouring boreholes will shade each other", in.Bore.Spacing),
			Field:       "borehole_spacing",
			ActualValue: in.Bore.Spacing,
			Expected:    ">= 6 m",
			Suggestions: []string{"increase the spacing or accept a larger total length"},
		})
	}

	return r
}

func hasSide(p load.Profile, side load.Side) bool {
	for _, s := range p.Active() {
		if s == side {
			return true
		}
	}
	return false
}

func checkGeometry(r *Report, in sizing.Input) {
	inner := in.Pipe.InnerDiameter() * 1000
	if inner <= 0 {
		r.AddError(Result{
			Level:        LevelConsistency,
			Message:      fmt.Sprintf("pipe inner diameter would be %.1f mm; the wall swallows the bore", inner),
			Field:        "pipe_thickness",
			ActualValue:  in.Pipe.WallThickness * 1000,
			ConflictWith: "pipe_outer_diameter",
		})
	}
	if in.Pipe.Type != pipe.Coaxial && in.Pipe.ShankSpacing+in.Pipe.OuterDiameter > in.Bore.Diameter {
		r.AddError(Result{
			Level:        LevelConsistency,
			Message:      fmt.Sprintf("shank spacing %.0f mm plus pipe diameter %.0f mm does not fit a %.0f mm borehole", in.Pipe.ShankSpacing*1000, in.Pipe.OuterDiameter*1000, in.Bore.Diameter*1000),
			Field:        "shank_spacing",
			ActualValue:  in.Pipe.ShankSpacing * 1000,
			ConflictWith: "borehole_diameter",
		})
	}
}

func checkTemperatures(r *Report, in sizing.Input, heating, cooling bool) {
	if in.MinFluidTemp >= in.MaxFluidTemp {
		r.AddError(Result{
			Level:        LevelConsistency,
			Message:      fmt.Sprintf("minimum fluid temperature %.1f degC must lie below the maximum %.1f degC", in.MinFluidTemp, in.MaxFluidTemp),
			Field:        "min_fluid_temperature",
			ActualValue:  in.MinFluidTemp,
			ConflictWith: "max_fluid_temperature",
		})
	}

	groundTemp := in.Ground.MeanTempOverDepth(in.Bore.Depth)
	if heating && in.MinFluidTemp >= groundTemp {
		r.AddError(Result{
			Level:        LevelConsistency,
			Message:      fmt.Sprintf("minimum fluid temperature %.1f degC sits above the %.1f degC undisturbed ground; no heat can be extracted", in.MinFluidTemp, groundTemp),
			Field:        "min_fluid_temperature",
			ActualValue:  in.MinFluidTemp,
			ConflictWith: "undisturbed_ground_temp",
		})
	}
	if cooling && in.MaxFluidTemp <= groundTemp {
		r.AddError(Result{
			Level:        LevelConsistency,
			Message:      fmt.Sprintf("maximum fluid temperature %.1f degC sits below the %.1f degC undisturbed ground; no heat can be rejected", in.MaxFluidTemp, groundTemp),
			Field:        "max_fluid_temperature",
			ActualValue:  in.MaxFluidTemp,
			ConflictWith: "undisturbed_ground_temp",
		})
	}
}

// ValidateFluid checks the coldest operating temperature against the freeze
// limit of the selected brine.
func ValidateFluid(tables *fluid.Tables, spec fluid.Spec, minFluidTemp, deltaT float64) *Report {
	r := NewReport()

	freeze, err := tables.FreezeLimit(spec)
	if err != nil {
		r.AddError(Result{
			Level:   LevelConsistency,
			Message: err.Error(),
			Field:   "antifreeze_concentration",
		})
		return r
	}

	coldest := minFluidTemp - 0.5*deltaT
	switch {
	case coldest < freeze:
		r.AddError(Result{
			Level:       LevelConsistency,
			Message:     fmt.Sprintf("coldest brine temperature %.1f degC falls below the %.1f degC freeze limit at %.0f %% concentration", coldest, freeze, spec.Concentration),
			Field:       "min_fluid_temperature",
			ActualValue: coldest,
			Expected:    fmt.Sprintf(">= %.1f degC", freeze),
			Suggestions: []string{"raise the antifreeze concentration or the minimum fluid temperature"},
		})
	case coldest < freeze+2:
		r.AddWarning(Result{
			Level:       LevelGuideline,
			Message:     fmt.Sprintf("coldest brine temperature %.1f degC leaves less than 2 K margin to the %.1f degC freeze limit", coldest, freeze),
			Field:       "min_fluid_temperature",
			ActualValue: coldest,
			Expected:    fmt.Sprintf(">= %.1f degC", freeze+2),
		})
	}
	return r
}

// ValidateHydraulics checks the loop parameters of a hydraulic problem.
func ValidateHydraulics(in hydraulics.Input) *Report {
	r := NewReport()
	circuits := in.Circuits
	if circuits == 0 {
		circuits = in.Bore.Count
	}
	CheckValue(r, "num_circuits", float64(circuits))
	CheckValue(r, "delta_t_fluid", in.DeltaT)
	CheckValue(r, "heat_pump_power", in.GroundLoadKW)
	return r
}

// ValidateSizing checks a converged result against the drilling limits and,
// when a soil class is known, the VDI 4640 extraction band.
func ValidateSizing(in sizing.Input, res *sizing.Result, soil *ground.SoilType) *Report {
	r := NewReport()

	CheckValue(r, "borehole_depth", res.Depth)

	if !hasSide(in.Load, load.Heating) || res.TotalLength <= 0 {
		return r
	}
	rate := in.Load.GroundLoads(load.Heating).Peak / res.TotalLength
	r.AddInfo(Result{
		Level:       LevelGuideline,
		Message:     fmt.Sprintf("specific heat extraction %.1f W/m over %.0f m total length", rate, res.TotalLength),
		Field:       "extraction_rate",
		ActualValue: rate,
	})

	if soil == nil {
		return r
	}
	band := fmt.Sprintf("%.0f-%.0f W/m for %s", soil.ExtractionMin, soil.ExtractionMax, soil.Name)
	switch {
	case rate > soil.ExtractionMax:
		r.AddWarning(Result{
			Level:       LevelGuideline,
			Message:     fmt.Sprintf("specific extraction %.1f W/m exceeds the VDI 4640 band of %s", rate, band),
			Field:       "extraction_rate",
			ActualValue: rate,
			Expected:    band,
			Suggestions: []string{"verify the ground data with a thermal response test", "plan additional borehole metres"},
		})
	case rate < soil.ExtractionMin:
		r.AddInfo(Result{
			Level:       LevelGuideline,
			Message:     fmt.Sprintf("specific extraction %.1f W/m stays below the VDI 4640 band of %s; the field is conservative", rate, band),
			Field:       "extraction_rate",
			ActualValue: rate,
			Expected:    band,
		})
	}
	return r
}
