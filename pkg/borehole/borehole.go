// Package borehole describes the drilled field: bore geometry, grout, count,
// spacing, and the plan-view layout of the boreholes.
package borehole

import (
	"fmt"
	"math"

	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/pipe"
)

// Shape is the plan-view arrangement of a multi-borehole field.
type Shape string

const (
	Line      Shape = "line"
	LShape    Shape = "l"
	UShape    Shape = "u"
	Rectangle Shape = "rectangle"
)

// Configuration is the drilled field. Dimensions in metres.
type Configuration struct {
	// Diameter of the drilled bore.
	Diameter float64
	// Depth of each borehole.
	Depth float64
	// Count of boreholes in the field.
	Count int
	// Spacing between neighbouring boreholes.
	Spacing float64
	Shape   Shape
	// GroutConductivity of the backfill, W/(m*K).
	GroutConductivity float64
	// MaxDepth is the permitted depth per borehole. Deeper solutions must
	// grow the count instead, never truncate.
	MaxDepth float64
}

// TotalLength returns depth times count.
func (c Configuration) TotalLength() float64 {
	return c.Depth * float64(c.Count)
}

// Radius returns the bore radius.
func (c Configuration) Radius() float64 {
	return c.Diameter / 2
}

// Validate rejects structurally impossible fields.
func (c Configuration) Validate() error {
	if c.Diameter <= 0 {
		return &errs.ValidationError{Field: "borehole.diameter", Value: c.Diameter, Reason: "must be positive"}
	}
	if c.Depth <= 0 {
		return &errs.ValidationError{Field: "borehole.depth", Value: c.Depth, Reason: "must be positive"}
	}
	if c.Count < 1 {
		return &errs.ValidationError{Field: "borehole.count", Value: float64(c.Count), Reason: "at least one borehole"}
	}
	if c.Count > 1 && c.Spacing <= 0 {
		return &errs.ValidationError{Field: "borehole.spacing", Value: c.Spacing, Reason: "multi-borehole fields need a spacing"}
	}
	if c.GroutConductivity <= 0 {
		return &errs.ValidationError{Field: "borehole.grout_conductivity", Value: c.GroutConductivity, Reason: "must be positive"}
	}
	if c.MaxDepth > 0 && c.Depth > c.MaxDepth {
		return &errs.ValidationError{Field: "borehole.depth", Value: c.Depth,
			Reason: fmt.Sprintf("exceeds permitted maximum of %.0f m", c.MaxDepth)}
	}
	return nil
}

// PipePositions returns the plan-view leg centres inside the bore
// cross-section, relative to the bore axis. Single-U legs sit opposed on one
// axis, double-U and four-pipe legs at quarter turns. Fails with a
// GeometryError when the shank spacing would push a pipe through the bore
// wall.
func (c Configuration) PipePositions(p pipe.Configuration) ([][2]float64, error) {
	if p.Type == pipe.Coaxial {
		return [][2]float64{{0, 0}}, nil
	}
	half := p.ShankSpacing / 2
	if half+p.OuterDiameter/2 > c.Radius() {
		return nil, &errs.GeometryError{Detail: fmt.Sprintf(
			"shank spacing %.0f mm does not fit a %.0f mm bore with %.0f mm pipes",
			p.ShankSpacing*1000, c.Diameter*1000, p.OuterDiameter*1000)}
	}
	switch p.Type.Legs() {
	case 2:
		return [][2]float64{{-half, 0}, {half, 0}}, nil
	default:
		return [][2]float64{{half, 0}, {0, half}, {-half, 0}, {0, -half}}, nil
	}
}

// FieldPositions returns the plan-view borehole coordinates of the layout.
// Line fields run along the x axis; L and U shapes bend at the spacing grid;
// rectangles fill rows near-square.
func (c Configuration) FieldPositions() [][2]float64 {
	n := c.Count
	s := c.Spacing
	out := make([][2]float64, 0, n)
	switch c.Shape {
	case LShape:
		// First half along x, rest up the y axis.
		arm := (n + 1) / 2
		for i := 0; i < arm; i++ {
			out = append(out, [2]float64{float64(i) * s, 0})
		}
		for i := 1; len(out) < n; i++ {
			out = append(out, [2]float64{0, float64(i) * s})
		}
	case UShape:
		// Two parallel arms joined by a base row. The base keeps at least
		// two bores so the arms never coincide.
		arm := n / 3
		base := n - 2*arm
		if base < 2 && n > 1 {
			base = 2
		}
		for i := 0; i < base; i++ {
			out = append(out, [2]float64{float64(i) * s, 0})
		}
		for i := 1; i <= arm; i++ {
			out = append(out, [2]float64{0, float64(i) * s})
			if len(out) < n {
				out = append(out, [2]float64{float64(base-1) * s, float64(i) * s})
			}
		}
		out = out[:n]
	case Rectangle:
		cols := int(math.Ceil(math.Sqrt(float64(n))))
		for i := 0; i < n; i++ {
			out = append(out, [2]float64{float64(i%cols) * s, float64(i/cols) * s})
		}
	default:
		for i := 0; i < n; i++ {
			out = append(out, [2]float64{float64(i) * s, 0})
		}
	}
	return out
}
