// Package pipe describes the probe pipework inside a borehole: the pipe
// arrangement (single-U, double-U, four-pipe, coaxial), its dimensions, and
// the PE pipe series catalogue.
package pipe

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/units"
)

// Type is the pipe arrangement inside the borehole.
type Type string

const (
	SingleU  Type = "single-u"
	DoubleU  Type = "double-u"
	FourPipe Type = "four-pipe"
	Coaxial  Type = "coaxial"
)

// Legs returns the number of vertical pipe legs in the borehole.
func (t Type) Legs() int {
	switch t {
	case DoubleU, FourPipe:
		return 4
	default:
		return 2
	}
}

// Loops returns the number of U-loops per borehole. The loops of one
// borehole are manifolded in series, so each borehole forms one hydraulic
// circuit of Loops()*2 vertical legs.
func (t Type) Loops() int {
	switch t {
	case DoubleU, FourPipe:
		return 2
	default:
		return 1
	}
}

// Configuration is the pipework of one borehole. Dimensions in metres.
type Configuration struct {
	Type          Type
	OuterDiameter float64
	WallThickness float64
	Conductivity  float64
	// ShankSpacing is the centre-to-centre distance between opposing legs.
	// Unused for coaxial probes.
	ShankSpacing float64
}

// InnerDiameter returns the flow diameter.
func (c Configuration) InnerDiameter() float64 {
	return c.OuterDiameter - 2*c.WallThickness
}

// FlowArea returns the cross-section area of one leg.
func (c Configuration) FlowArea() float64 {
	return units.CircleArea(c.InnerDiameter())
}

// Validate rejects impossible pipe geometry.
func (c Configuration) Validate() error {
	switch c.Type {
	case SingleU, DoubleU, FourPipe, Coaxial:
	default:
		return &errs.ValidationError{Field: "pipe.type", Value: 0, Reason: fmt.Sprintf("unknown arrangement %q", c.Type)}
	}
	if c.OuterDiameter <= 0 {
		return &errs.ValidationError{Field: "pipe.outer_diameter", Value: c.OuterDiameter, Reason: "must be positive"}
	}
	if c.WallThickness <= 0 {
		return &errs.ValidationError{Field: "pipe.wall_thickness", Value: c.WallThickness, Reason: "must be positive"}
	}
	if c.InnerDiameter() <= 0 {
		return &errs.GeometryError{Detail: fmt.Sprintf(
			"wall thickness %.1f mm leaves no flow area in a %.1f mm pipe",
			c.WallThickness*1000, c.OuterDiameter*1000)}
	}
	if c.Conductivity <= 0 {
		return &errs.ValidationError{Field: "pipe.conductivity", Value: c.Conductivity, Reason: "must be positive"}
	}
	if c.Type != Coaxial && c.ShankSpacing < c.OuterDiameter {
		return &errs.GeometryError{Detail: fmt.Sprintf(
			"shank spacing %.1f mm places %.1f mm pipes inside each other",
			c.ShankSpacing*1000, c.OuterDiameter*1000)}
	}
	return nil
}

// Series is one row of the PE pipe catalogue. Catalogue dimensions are
// millimetres, converted on access.
type Series struct {
	Designation  string  `csv:"designation"`
	OuterMM      float64 `csv:"outer_mm"`
	WallMM       float64 `csv:"wall_mm"`
	Conductivity float64 `csv:"conductivity"`
}

// Configuration builds a pipe configuration from the series dimensions.
func (s Series) Configuration(t Type, shankSpacing float64) Configuration {
	return Configuration{
		Type:          t,
		OuterDiameter: s.OuterMM / 1000,
		WallThickness: s.WallMM / 1000,
		Conductivity:  s.Conductivity,
		ShankSpacing:  shankSpacing,
	}
}

//go:embed pipes.csv
var pipesCSV string

// Catalogue is the read-only PE pipe series table.
type Catalogue struct {
	byName map[string]Series
	names  []string
}

// LoadCatalogue parses the embedded pipe series table.
func LoadCatalogue() (*Catalogue, error) {
	var rows []Series
	if err := gocsv.UnmarshalString(pipesCSV, &rows); err != nil {
		return nil, fmt.Errorf("parsing pipe table: %w", err)
	}
	c := &Catalogue{byName: make(map[string]Series, len(rows))}
	for _, r := range rows {
		c.byName[r.Designation] = r
		c.names = append(c.names, r.Designation)
	}
	sort.Strings(c.names)
	return c, nil
}

// Get returns the pipe series with the given designation.
func (c *Catalogue) Get(designation string) (Series, error) {
	s, ok := c.byName[strings.ToLower(strings.TrimSpace(designation))]
	if !ok {
		return Series{}, fmt.Errorf("unknown pipe series %q (known: %s)", designation, strings.Join(c.names, ", "))
	}
	return s, nil
}

// Names lists the catalogue entries in sorted order.
func (c *Catalogue) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
