package aqi

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

// ErrInvalidArgument is returned for a brightness outside [0, 1].
var ErrInvalidArgument = errors.New("invalid argument")

var (
	White  = color.RGBA{255, 255, 255, 255}
	Green  = color.RGBA{0, 228, 0, 255}
	Yellow = color.RGBA{255, 255, 0, 255}
	Orange = color.RGBA{255, 126, 0, 255}
	Red    = color.RGBA{255, 0, 0, 255}
	Purple = color.RGBA{143, 63, 151, 255}
	Maroon = color.RGBA{126, 0, 35, 255}
)

type category struct {
	threshold float64
	name      string
	color     color.RGBA
}

// categories is evaluated top down; an index must be strictly above the
// threshold to match.
var categories = []category{
	{300.5, "Hazardous", Maroon},
	{201.5, "Very Unhealthy", Purple},
	{151.5, "Unhealthy", Red},
	{101.5, "Unhealthy for Sensitive Groups", Orange},
	{51.5, "Moderate", Yellow},
	{0, "Good", Green},
}

// Palette lists the category colors from best to worst, framed by White.
// It is the row order of the start-up screen test.
var Palette = []color.RGBA{White, Green, Yellow, Orange, Red, Purple, Maroon, White}

func lookupCategory(index float64) (category, bool) {
	index = math.RoundToEven(index)
	for _, c := range categories {
		if index > c.threshold {
			return c, true
		}
	}
	return category{}, false
}

// ColorForIndex maps an AQI number to its category color. Zero, negative
// and NaN values are White.
func ColorForIndex(index float64) color.RGBA {
	if c, ok := lookupCategory(index); ok {
		return c.color
	}
	return White
}

// Color maps a conversion result to its category color.
func Color(v Value) color.RGBA {
	if v.Kind == Undefined {
		return White
	}
	return ColorForIndex(v.V)
}

// Category names the band v falls in.
func Category(v Value) string {
	switch v.Kind {
	case Undefined:
		return "Undefined"
	case PassThrough:
		return "Invalid"
	}
	if c, ok := lookupCategory(v.V); ok {
		return c.name
	}
	return "Good"
}

// AdjustColor scales each channel of c by brightness, truncating.
func AdjustColor(brightness float64, c color.RGBA) (color.RGBA, error) {
	if !(brightness >= 0 && brightness <= 1) {
		return color.RGBA{}, fmt.Errorf("%w: brightness %v must be between 0 and 1", ErrInvalidArgument, brightness)
	}
	return color.RGBA{
		R: uint8(float64(c.R) * brightness),
		G: uint8(float64(c.G) * brightness),
		B: uint8(float64(c.B) * brightness),
		A: c.A,
	}, nil
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
