// Package units holds the physical constants and unit conversions shared by
// the thermal and hydraulic solvers. Everything is SI internally; the
// conversions exist for the user-facing units (kW, m3/h, bar) common in
// heat-pump engineering documents.
package units

import "math"

// Characteristic durations of the three superposition time scales.
const (
	SecondsPerHour  = 3600.0
	HoursPerYear    = 8760.0
	HoursPerMonth   = 730.0
	SecondsPerYear  = 365.25 * 24 * SecondsPerHour
	SecondsPerMonth = HoursPerMonth * SecondsPerHour

	// BaseLoadYears is the long-term horizon of the base-load response.
	BaseLoadYears = 10.0
	// PeakHours is the short-term peak duration.
	PeakHours = 6.0
)

const (
	// PaPerBar converts bar to pascal.
	PaPerBar = 1e5
	// HeadPerBar is the pump head equivalent of one bar, in metres of
	// water column.
	HeadPerBar = 10.2
)

// KWToW converts kilowatts to watts.
func KWToW(kw float64) float64 { return kw * 1000 }

// WToKW converts watts to kilowatts.
func WToKW(w float64) float64 { return w / 1000 }

// CubicMetersPerHourToPerSecond converts a volumetric flow from m3/h to m3/s.
func CubicMetersPerHourToPerSecond(q float64) float64 { return q / 3600 }

// CubicMetersPerSecondToPerHour converts a volumetric flow from m3/s to m3/h.
func CubicMetersPerSecondToPerHour(q float64) float64 { return q * 3600 }

// PaToBar converts a pressure from pascal to bar.
func PaToBar(p float64) float64 { return p / PaPerBar }

// BarToPa converts a pressure from bar to pascal.
func BarToPa(p float64) float64 { return p * PaPerBar }

// BarToHead converts a pressure in bar to metres of head.
func BarToHead(p float64) float64 { return p * HeadPerBar }

// CircleArea returns the cross-section area of a circle with diameter d.
func CircleArea(d float64) float64 { return math.Pi / 4 * d * d }
