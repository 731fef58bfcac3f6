package pixelfont

// Viewport is the visible region [0,Width) x [0,Height) of a display.
type Viewport struct {
	Width  int
	Height int
}

// Clip wraps emit so that only pixels inside the viewport reach it.
func (v Viewport) Clip(emit Emit) Emit {
	return func(x, y int) {
		if x >= 0 && x < v.Width && y >= 0 && y < v.Height {
			emit(x, y)
		}
	}
}

// Rejects reports whether a glyph of f placed at (x, y) can be skipped
// without looking at its cells.
//
// The right and bottom edges compare against Width and Height rather than
// Width-1 and Height-1, so a glyph whose origin sits exactly on the edge is
// not rejected here. Its pixels are still dropped by Clip.
func (v Viewport) Rejects(f *Font, x, y int) bool {
	if x+f.Width < 0 || y+f.Height < 0 {
		return true
	}
	return x > v.Width || y > v.Height
}

// RenderGlyph draws g at (x0, y0), clipped to the viewport. f supplies the
// bounding box used for the early reject.
func (v Viewport) RenderGlyph(f *Font, g Glyph, x0, y0 int, emit Emit) {
	if v.Rejects(f, x0, y0) {
		return
	}
	RenderGlyph(g, x0, y0, v.Clip(emit))
}

// RenderText is RenderText with clipping. Every character is looked up
// before its bounding box is tested, so an unknown character fails the call
// even when it would be off screen.
func (v Viewport) RenderText(f *Font, s string, x0, y0 int, emit Emit) error {
	clipped := v.Clip(emit)
	i := 0
	for _, r := range s {
		g, err := f.Lookup(r)
		if err != nil {
			return err
		}
		x := x0 + i*Advance(f)
		i++
		if v.Rejects(f, x, y0) {
			continue
		}
		RenderGlyph(g, x, y0, clipped)
	}
	return nil
}
