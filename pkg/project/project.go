// Package project reads borehole project files: a YAML description of site,
// field geometry, pipework, brine, demand and operating envelope, resolved
// against the embedded catalogues into solver-ready inputs.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/3ddruck12/geosonde/pkg/validation"
)

// DefaultFileName is the project file looked up in a project directory.
const DefaultFileName = "project.yaml"

// Load reads a project spec from a YAML file and fills the defaults.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing project YAML: %w", err)
	}
	spec.ApplyDefaults()

	log.WithFields(log.Fields{"path": path, "name": spec.Name}).Debug("project loaded")
	return &spec, nil
}

// LoadProject loads the project file from a project directory.
func LoadProject(projectDir string) (*Spec, error) {
	return Load(filepath.Join(projectDir, DefaultFileName))
}

// ApplyDefaults fills every blank field with the default of its parameter
// range, so a minimal project file describes a complete single-borehole
// plant.
func (s *Spec) ApplyDefaults() {
	def := validation.Default

	if s.Site.SurfaceTemp == 0 {
		s.Site.SurfaceTemp = def("undisturbed_ground_temp")
	}
	if s.Site.Gradient == 0 {
		s.Site.Gradient = def("geothermal_gradient")
	}

	if s.Borefield.DiameterMM == 0 {
		s.Borefield.DiameterMM = def("borehole_diameter")
	}
	if s.Borefield.Depth == 0 {
		s.Borefield.Depth = def("borehole_depth")
	}
	if s.Borefield.MaxDepth == nil {
		max := validation.Ranges["borehole_depth"].Max
		s.Borefield.MaxDepth = &max
	}
	if s.Borefield.Count == 0 {
		s.Borefield.Count = int(def("num_boreholes"))
	}
	if s.Borefield.Spacing == 0 {
		s.Borefield.Spacing = def("borehole_spacing")
	}
	if s.Borefield.Shape == "" {
		s.Borefield.Shape = "line"
	}
	if s.Borefield.GroutConductivity == 0 {
		s.Borefield.GroutConductivity = def("grout_thermal_conductivity")
	}

	if s.Pipe.Arrangement == "" {
		s.Pipe.Arrangement = "single-u"
	}
	if s.Pipe.Series == "" {
		if s.Pipe.OuterMM == 0 {
			s.Pipe.OuterMM = def("pipe_outer_diameter")
		}
		if s.Pipe.WallMM == 0 {
			s.Pipe.WallMM = def("pipe_thickness")
		}
		if s.Pipe.Conductivity == 0 {
			s.Pipe.Conductivity = def("pipe_thermal_conductivity")
		}
	}
	if s.Pipe.ShankMM == 0 {
		s.Pipe.ShankMM = def("shank_spacing")
	}

	if s.Fluid.Family == "" {
		s.Fluid.Family = "ethylene-glycol"
	}
	if s.Fluid.Family != "water" && s.Fluid.Concentration == 0 {
		s.Fluid.Concentration = def("antifreeze_concentration")
	}

	if s.Demand.COP == 0 {
		s.Demand.COP = def("heat_pump_cop")
	}
	if s.Demand.EER == 0 {
		s.Demand.EER = def("heat_pump_eer")
	}
	if s.Demand.Profile == "" && s.Demand.MonthlyHeating == nil && s.Demand.MonthlyCooling == nil {
		s.Demand.Profile = "detached-house"
	}

	if s.Operation.MinFluidTemp == nil {
		min := def("min_fluid_temperature")
		s.Operation.MinFluidTemp = &min
	}
	if s.Operation.MaxFluidTemp == 0 {
		s.Operation.MaxFluidTemp = def("max_fluid_temperature")
	}
	if s.Operation.DeltaT == 0 {
		s.Operation.DeltaT = def("delta_t_fluid")
	}
}
