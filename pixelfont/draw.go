package pixelfont

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Draw writes s onto d in color c. The viewport is the display size.
func Draw(d drivers.Displayer, f *Font, s string, x, y int, c color.RGBA) error {
	w, h := d.Size()
	v := Viewport{Width: int(w), Height: int(h)}
	return v.RenderText(f, s, x, y, func(px, py int) {
		d.SetPixel(int16(px), int16(py), c)
	})
}

// DrawBitmap plots rows of '#' cells at (x0, y0), clipped to d. It is used
// for icons that are not part of a font.
func DrawBitmap(d drivers.Displayer, rows []string, x0, y0 int, c color.RGBA) {
	w, h := d.Size()
	emit := Viewport{Width: int(w), Height: int(h)}.Clip(func(px, py int) {
		d.SetPixel(int16(px), int16(py), c)
	})
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			if row[x] == '#' {
				emit(x0+x, y0+y)
			}
		}
	}
}

// Scroller moves text right to left across a viewport one pixel per step
// and wraps to the right edge once the text has fully left on the left.
type Scroller struct {
	width int
	text  int
	pos   int
}

// NewScroller starts text of textWidth pixels just off the right edge of a
// viewport width pixels wide.
func NewScroller(width, textWidth int) *Scroller {
	return &Scroller{width: width, text: textWidth, pos: width}
}

// Pos is the x origin for the current frame.
func (s *Scroller) Pos() int { return s.pos }

// Step advances one frame and returns the new origin.
func (s *Scroller) Step() int {
	s.pos--
	if s.pos < -s.text {
		s.pos = s.width
	}
	return s.pos
}

// Fits reports whether text of textWidth pixels fits without scrolling.
func Fits(width, textWidth int) bool {
	return textWidth <= width
}
