// Package ground models the thermal state of the subsurface around a
// borehole field: a conductivity/capacity profile plus the undisturbed
// temperature field, and a catalogue of soil classes with typical values for
// projects where no thermal response test is available.
package ground

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/3ddruck12/geosonde/pkg/errs"
)

// Profile is the thermal description of the ground at a site. Immutable per
// project.
type Profile struct {
	// Conductivity is the effective thermal conductivity, W/(m*K).
	Conductivity float64
	// VolumetricHeatCapacity in J/(m3*K).
	VolumetricHeatCapacity float64
	// SurfaceTemp is the annual mean temperature at the surface, degC.
	SurfaceTemp float64
	// Gradient is the geothermal gradient, K/m.
	Gradient float64
}

// Diffusivity returns the thermal diffusivity in m2/s.
func (p Profile) Diffusivity() float64 {
	return p.Conductivity / p.VolumetricHeatCapacity
}

// TempAt returns the undisturbed ground temperature at depth z metres.
func (p Profile) TempAt(z float64) float64 {
	return p.SurfaceTemp + p.Gradient*z
}

// MeanTempOverDepth returns the undisturbed temperature averaged over a
// borehole of the given depth. The gradient is linear, so the mean sits at
// half depth.
func (p Profile) MeanTempOverDepth(depth float64) float64 {
	return p.SurfaceTemp + p.Gradient*depth/2
}

// Validate rejects profiles outside the plausible parameter space before a
// solver consumes them.
func (p Profile) Validate() error {
	if p.Conductivity <= 0 {
		return &errs.ValidationError{Field: "ground.conductivity", Value: p.Conductivity, Reason: "must be positive"}
	}
	if p.VolumetricHeatCapacity <= 0 {
		return &errs.ValidationError{Field: "ground.heat_capacity", Value: p.VolumetricHeatCapacity, Reason: "must be positive"}
	}
	if p.Gradient < 0 {
		return &errs.ValidationError{Field: "ground.gradient", Value: p.Gradient, Reason: "must not be negative"}
	}
	return nil
}

// SoilType is one row of the soil catalogue with the typical value range per
// VDI 4640 table values.
type SoilType struct {
	Name            string  `csv:"name"`
	ConductivityMin float64 `csv:"conductivity_min"`
	Conductivity    float64 `csv:"conductivity"`
	ConductivityMax float64 `csv:"conductivity_max"`
	// HeatCapacity is the typical volumetric heat capacity, MJ/(m3*K).
	HeatCapacity float64 `csv:"heat_capacity"`
	// ExtractionMin/Max bound the specific heat extraction rate, W/m, for
	// plausibility reporting.
	ExtractionMin float64 `csv:"extraction_min"`
	ExtractionMax float64 `csv:"extraction_max"`
}

// Profile builds a ground profile from the soil's typical values and the
// site's surface temperature and gradient.
func (s SoilType) Profile(surfaceTemp, gradient float64) Profile {
	return Profile{
		Conductivity:           s.Conductivity,
		VolumetricHeatCapacity: s.HeatCapacity * 1e6,
		SurfaceTemp:            surfaceTemp,
		Gradient:               gradient,
	}
}

//go:embed soils.csv
var soilsCSV string

// Catalogue is the read-only soil class table, loaded once at start.
type Catalogue struct {
	byName map[string]SoilType
	names  []string
}

// LoadCatalogue parses the embedded soil table.
func LoadCatalogue() (*Catalogue, error) {
	var rows []SoilType
	if err := gocsv.UnmarshalString(soilsCSV, &rows); err != nil {
		return nil, fmt.Errorf("parsing soil table: %w", err)
	}
	c := &Catalogue{byName: make(map[string]SoilType, len(rows))}
	for _, r := range rows {
		c.byName[r.Name] = r
		c.names = append(c.names, r.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Get returns the soil class with the given name.
func (c *Catalogue) Get(name string) (SoilType, error) {
	s, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return SoilType{}, fmt.Errorf("unknown soil type %q (known: %s)", name, strings.Join(c.names, ", "))
	}
	return s, nil
}

// Names lists the catalogue entries in sorted order.
func (c *Catalogue) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
