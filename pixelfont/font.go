// Package pixelfont draws fixed-size bitmap fonts onto small pixel displays.
//
// A Font is a set of glyphs sharing one width and height. Text is laid out
// left to right with one blank column between glyphs. Nothing in this
// package is mutated after init, so fonts may be shared between goroutines.
package pixelfont

import (
	"errors"
	"fmt"
)

// ErrUnknownGlyph is returned when a character has no entry in a font.
var ErrUnknownGlyph = errors.New("unknown glyph")

// Glyph is one character bitmap. Cells are stored row-major.
type Glyph struct {
	width  int
	height int
	cells  []bool
}

func (g Glyph) Width() int  { return g.width }
func (g Glyph) Height() int { return g.height }

// On reports whether cell (x, y) is lit. Out-of-range cells are off.
func (g Glyph) On(x, y int) bool {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return false
	}
	return g.cells[y*g.width+x]
}

// Font is an immutable glyph table.
type Font struct {
	Name   string
	Width  int
	Height int
	glyphs map[rune]Glyph
}

// Lookup returns the glyph for r.
func (f *Font) Lookup(r rune) (Glyph, error) {
	g, ok := f.glyphs[r]
	if !ok {
		return Glyph{}, fmt.Errorf("%w: %q not found in font %s", ErrUnknownGlyph, r, f.Name)
	}
	return g, nil
}

// Has reports whether every rune of s is in the font.
func (f *Font) Has(s string) bool {
	for _, r := range s {
		if _, ok := f.glyphs[r]; !ok {
			return false
		}
	}
	return true
}

// Runes returns the characters defined by the font, in no particular order.
func (f *Font) Runes() []rune {
	runes := make([]rune, 0, len(f.glyphs))
	for r := range f.glyphs {
		runes = append(runes, r)
	}
	return runes
}

// parseFont builds a font from text rows where '#' marks a lit cell.
func parseFont(name string, width, height int, rows map[rune][]string) (*Font, error) {
	f := &Font{
		Name:   name,
		Width:  width,
		Height: height,
		glyphs: make(map[rune]Glyph, len(rows)),
	}
	for r, lines := range rows {
		if len(lines) != height {
			return nil, fmt.Errorf("font %s: glyph %q has %d rows, want %d", name, r, len(lines), height)
		}
		g := Glyph{width: width, height: height, cells: make([]bool, width*height)}
		for y, line := range lines {
			if len(line) != width {
				return nil, fmt.Errorf("font %s: glyph %q row %d is %d wide, want %d", name, r, y, len(line), width)
			}
			for x := 0; x < width; x++ {
				switch line[x] {
				case '#':
					g.cells[y*width+x] = true
				case ' ':
				default:
					return nil, fmt.Errorf("font %s: glyph %q row %d has invalid cell %q", name, r, y, line[x])
				}
			}
		}
		f.glyphs[r] = g
	}
	return f, nil
}

func mustFont(name string, width, height int, rows map[rune][]string) *Font {
	f, err := parseFont(name, width, height, rows)
	if err != nil {
		panic(err)
	}
	return f
}
