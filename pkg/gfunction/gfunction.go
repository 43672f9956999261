// Package gfunction supplies the dimensionless ground response factors the
// sizing superposition evaluates at its three characteristic times. The
// provider is a replaceable boundary: the default is an infinite-line-source
// model with neighbour superposition over the field layout, and precomputed
// tables from external borefield simulations can be dropped in instead.
package gfunction

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/3ddruck12/geosonde/pkg/errs"
	"github.com/3ddruck12/geosonde/pkg/units"
)

// Layout is the plan-view field geometry a response factor depends on.
type Layout struct {
	// Positions of the boreholes in metres.
	Positions [][2]float64
	// BoreholeRadius in metres.
	BoreholeRadius float64
}

// Fourier converts a time in seconds to the dimensionless Fourier time of the
// layout's borehole radius.
func Fourier(diffusivity, boreholeRadius, seconds float64) float64 {
	return diffusivity * seconds / (boreholeRadius * boreholeRadius)
}

// CharacteristicTimes returns the Fourier times of the three superposition
// scales: the long-term base horizon, one month, and the short-term peak.
func CharacteristicTimes(diffusivity, boreholeRadius float64) (base, periodic, peak float64) {
	base = Fourier(diffusivity, boreholeRadius, units.BaseLoadYears*units.SecondsPerYear)
	periodic = Fourier(diffusivity, boreholeRadius, units.SecondsPerMonth)
	peak = Fourier(diffusivity, boreholeRadius, units.PeakHours*units.SecondsPerHour)
	return base, periodic, peak
}

// Provider resolves the response factor of a layout at a Fourier time.
// Values are monotonically non-decreasing in time for a fixed layout.
type Provider interface {
	Value(ctx context.Context, layout Layout, fourier float64) (float64, error)
}

// LineSource is the default provider: the infinite-line-source response of
// the loaded borehole plus the superposed responses of its neighbours,
// evaluated at the most interior borehole of the layout.
type LineSource struct{}

// Value implements Provider.
func (LineSource) Value(ctx context.Context, layout Layout, fourier float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if fourier <= 0 {
		return 0, &errs.ValidationError{Field: "fourier_time", Value: fourier, Reason: "must be positive"}
	}
	if layout.BoreholeRadius <= 0 {
		return 0, &errs.ValidationError{Field: "borehole_radius", Value: layout.BoreholeRadius, Reason: "must be positive"}
	}

	g := 0.5 * expIntE1(1/(4*fourier))

	if len(layout.Positions) > 1 {
		ref := mostInterior(layout.Positions)
		rb := layout.BoreholeRadius
		for i, pos := range layout.Positions {
			if i == ref {
				continue
			}
			dx := pos[0] - layout.Positions[ref][0]
			dy := pos[1] - layout.Positions[ref][1]
			dist := math.Hypot(dx, dy) / rb
			g += 0.5 * expIntE1(dist*dist/(4*fourier))
		}
	}
	return g, nil
}

// mostInterior returns the index of the position closest to the centroid,
// the thermally most loaded borehole of the field.
func mostInterior(positions [][2]float64) int {
	var cx, cy float64
	for _, p := range positions {
		cx += p[0]
		cy += p[1]
	}
	n := float64(len(positions))
	cx /= n
	cy /= n

	best, bestDist := 0, math.Inf(1)
	for i, p := range positions {
		d := math.Hypot(p[0]-cx, p[1]-cy)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// expIntE1 evaluates the exponential integral E1(x) for x > 0 with the
// Abramowitz & Stegun 5.1.53/5.1.56 approximations (series below one,
// rational fraction above).
func expIntE1(x float64) float64 {
	if x <= 0 {
		return math.Inf(1)
	}
	if x <= 1 {
		return -math.Log(x) - 0.57721566 +
			x*(0.99999193+x*(-0.24991055+x*(0.05519968+x*(-0.00976004+x*0.00107857))))
	}
	num := x*x + 2.334733*x + 0.250621
	den := x*x + 3.330657*x + 1.681534
	return num / den * math.Exp(-x) / x
}

// Table interpolates precomputed (Fourier time, g) pairs, the exchange format
// of external borefield simulators. Lookups outside the tabulated span fail
// instead of extrapolating.
type Table struct {
	minFo, maxFo float64
	curve        interp.PiecewiseLinear
}

// NewTable builds a table provider from strictly increasing Fourier times.
func NewTable(fourier, g []float64) (*Table, error) {
	t := &Table{}
	if err := t.curve.Fit(fourier, g); err != nil {
		return nil, err
	}
	t.minFo = fourier[0]
	t.maxFo = fourier[len(fourier)-1]
	return t, nil
}

// Value implements Provider.
func (t *Table) Value(ctx context.Context, _ Layout, fourier float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if fourier < t.minFo || fourier > t.maxFo {
		return 0, &errs.OutOfRangeError{Quantity: "fourier_time", Value: fourier, Min: t.minFo, Max: t.maxFo}
	}
	return t.curve.Predict(fourier), nil
}

// WithTimeout wraps a provider with a per-call deadline, for backends that
// run a full borefield simulation. An overrun surfaces as a TimeoutError,
// distinct from a sizing convergence failure.
func WithTimeout(p Provider, d time.Duration) Provider {
	return &timeoutProvider{inner: p, limit: d}
}

type timeoutProvider struct {
	inner Provider
	limit time.Duration
}

type valueResult struct {
	g   float64
	err error
}

func (t *timeoutProvider) Value(ctx context.Context, layout Layout, fourier float64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	start := time.Now()
	done := make(chan valueResult, 1)
	go func() {
		g, err := t.inner.Value(ctx, layout, fourier)
		done <- valueResult{g, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			return 0, &errs.TimeoutError{Op: "g-function evaluation", Elapsed: time.Since(start)}
		}
		return r.g, r.err
	case <-ctx.Done():
		return 0, &errs.TimeoutError{Op: "g-function evaluation", Elapsed: time.Since(start)}
	}
}
