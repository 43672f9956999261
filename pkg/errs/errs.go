// Package errs defines the error taxonomy of the sizing core. Every failure a
// solver can surface is one of these types, so callers can discriminate with
// errors.As and decide whether a result is missing input, impossible geometry,
// or a non-convergent run. None of them is recovered inside the core.
package errs

import (
	"fmt"
	"time"
)

// ValidationError reports a malformed or out-of-range input value before any
// calculation starts.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s = %g: %s", e.Field, e.Value, e.Reason)
}

// GeometryError reports a physically impossible pipe or borehole geometry,
// such as shank spacing that would place the pipes outside the bore.
type GeometryError struct {
	Detail string
}

func (e *GeometryError) Error() string {
	return "impossible geometry: " + e.Detail
}

// OutOfRangeError reports a property lookup outside the tabulated domain.
// Callers must not clamp: near the table edges the real fluid behaviour
// (viscosity spikes close to freezing) is exactly what the tables cannot
// represent.
type OutOfRangeError struct {
	Quantity string
	Value    float64
	Min, Max float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s = %g outside tabulated range [%g, %g]",
		e.Quantity, e.Value, e.Min, e.Max)
}

// ConvergenceError reports that an iteration loop hit its cap without
// reaching the configured tolerance. Last carries the final candidate so the
// caller can judge how far off the run ended.
type ConvergenceError struct {
	Stage      string
	Iterations int
	Last       float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s did not converge after %d iterations (last candidate %.2f)",
		e.Stage, e.Iterations, e.Last)
}

// NoIntersectionError reports that the system curve never meets the pump
// curve inside the pump's valid flow range.
type NoIntersectionError struct {
	PumpMaxHead  float64
	RequiredHead float64
}

func (e *NoIntersectionError) Error() string {
	return fmt.Sprintf("pump curve does not intersect system curve (pump max head %.2f m, required %.2f m)",
		e.PumpMaxHead, e.RequiredHead)
}

// TimeoutError reports that an external evaluation, typically a borefield
// response computation, exceeded its deadline.
type TimeoutError struct {
	Op      string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s exceeded deadline after %s", e.Op, e.Elapsed)
}
