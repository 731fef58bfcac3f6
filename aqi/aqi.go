// Package aqi converts PM2.5 concentrations to the US Air Quality Index
// and maps index values to display colors.
package aqi

import (
	"math"
	"strconv"
)

// MaxConcentration is the highest PM2.5 value (µg/m³) still converted.
// Above it the index is undefined.
const MaxConcentration = 1000

// Breakpoint maps a concentration range onto an index range.
type Breakpoint struct {
	Category string
	CLow     float64
	CHigh    float64
	ILow     float64
	IHigh    float64
}

// Breakpoints is the EPA PM2.5 table in ascending order.
var Breakpoints = []Breakpoint{
	{"Good", 0, 12, 0, 50},
	{"Moderate", 12.1, 35.4, 51, 100},
	{"Unhealthy for Sensitive Groups", 35.5, 55.4, 101, 150},
	{"Unhealthy", 55.5, 150.4, 151, 200},
	{"Very Unhealthy", 150.5, 250.4, 201, 300},
	{"Hazardous", 250.5, 350.4, 301, 400},
	{"Hazardous", 350.5, 500.4, 401, 500},
}

// Reading is a PM2.5 concentration as reported by a sensor.
// The zero Reading carries no data.
type Reading struct {
	PM25  float64
	Valid bool
}

// NoData marks a missing sensor value.
var NoData = Reading{}

// PM25 wraps a concentration in µg/m³.
func PM25(v float64) Reading {
	return Reading{PM25: v, Valid: true}
}

// Kind tells how a Value should be read.
type Kind uint8

const (
	// Undefined means no index could be computed. It is drawn as "-".
	Undefined Kind = iota
	// Index is a computed AQI.
	Index
	// PassThrough carries a negative concentration unchanged.
	PassThrough
)

func (k Kind) String() string {
	switch k {
	case Index:
		return "index"
	case PassThrough:
		return "passthrough"
	default:
		return "undefined"
	}
}

// Value is the result of a conversion. V is meaningless when Kind is
// Undefined.
type Value struct {
	Kind Kind
	V    float64
}

// String formats the value the way the display shows it.
func (v Value) String() string {
	if v.Kind == Undefined {
		return "-"
	}
	return strconv.Itoa(int(v.V))
}

// FromPM25 converts a PM2.5 reading to an AQI value.
//
// Checks run in a fixed order: missing or non-finite input is Undefined,
// negative input passes through unchanged, input above MaxConcentration is
// Undefined, and everything else is interpolated from Breakpoints.
func FromPM25(r Reading) Value {
	c := r.PM25
	if !r.Valid || math.IsNaN(c) || math.IsInf(c, 0) {
		return Value{Kind: Undefined}
	}
	if c < 0 {
		return Value{Kind: PassThrough, V: c}
	}
	if c > MaxConcentration {
		return Value{Kind: Undefined}
	}
	return Value{Kind: Index, V: Calculate(c, breakpointFor(c))}
}

// breakpointFor walks the table from the top and returns the first range
// whose lower bound is at or below c. Concentrations in the gaps between
// ranges (12.0-12.1 and so on) fall to the range below, and values above
// the last range extrapolate from it.
func breakpointFor(c float64) Breakpoint {
	for i := len(Breakpoints) - 1; i > 0; i-- {
		if c >= Breakpoints[i].CLow {
			return Breakpoints[i]
		}
	}
	return Breakpoints[0]
}

// Calculate interpolates c linearly inside bp and rounds half to even.
func Calculate(c float64, bp Breakpoint) float64 {
	a := bp.IHigh - bp.ILow
	b := bp.CHigh - bp.CLow
	// The conversion keeps the product from being fused into the add.
	return math.RoundToEven(float64((a/b)*(c-bp.CLow)) + bp.ILow)
}
