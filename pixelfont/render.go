package pixelfont

// Emit receives the coordinates of one lit pixel.
type Emit func(x, y int)

// RenderGlyph emits every lit cell of g offset by (x0, y0), top to bottom
// and left to right. No bounds checking is done.
func RenderGlyph(g Glyph, x0, y0 int, emit Emit) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] {
				emit(x0+x, y0+y)
			}
		}
	}
}

// Advance is the pen movement between two glyphs of f.
func Advance(f *Font) int {
	return f.Width + 1
}

// TextWidth is the pixel width of s drawn in f. There is no trailing gap.
func TextWidth(f *Font, s string) int {
	n := 0
	for range s {
		n++
	}
	if n == 0 {
		return 0
	}
	return n*Advance(f) - 1
}

// RenderText lays s out from (x0, y0) and emits its pixels unclipped.
// It stops at the first character missing from f and returns
// ErrUnknownGlyph; glyphs before it have already been emitted.
func RenderText(f *Font, s string, x0, y0 int, emit Emit) error {
	i := 0
	for _, r := range s {
		g, err := f.Lookup(r)
		if err != nil {
			return err
		}
		RenderGlyph(g, x0+i*Advance(f), y0, emit)
		i++
	}
	return nil
}
