package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"strings"
	"time"

	"github.com/ajstarks/svgo"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"tinygo.org/x/drivers"

	"github.com/photonicat/aqi_matrix_display/aqi"
	"github.com/photonicat/aqi_matrix_display/pixelfont"
)

const (
	PREVIEW_CELL = 24 // preview pixels per LED
	UNLIT_HEX    = "#1a1a1a"
)

var (
	BLACK = color.RGBA{0, 0, 0, 255}

	WIFI_LOGO = []string{
		"..######..",
		".########.",
		"##......##",
		"#..####..#",
		"..######..",
		"..#....#..",
		"....##....",
		"....##....",
	}
)

//---------------- Matrix Drawing ----------------

func clearDisplay(d drivers.Displayer) {
	w, h := d.Size()
	fillRect(d, 0, 0, w, h, BLACK)
}

func fillRect(d drivers.Displayer, x0, y0, width, height int16, c color.RGBA) {
	for y := y0; y < y0+height; y++ {
		for x := x0; x < x0+width; x++ {
			d.SetPixel(x, y, c)
		}
	}
}

// dimmed scales c by the current brightness.
func dimmed(b brightnessSource, c color.RGBA) color.RGBA {
	out, err := aqi.AdjustColor(clamp01(b.Brightness()), c)
	if err != nil {
		return c
	}
	return out
}

// screenTest fills the rows one at a time with the category colors.
func screenTest(d drivers.Displayer, b brightnessSource, rowDelay time.Duration) {
	w, h := d.Size()
	for y := int16(0); y < h; y++ {
		fillRect(d, 0, y, w, 1, dimmed(b, aqi.Palette[int(y)%len(aqi.Palette)]))
		if err := d.Display(); err != nil {
			log.Printf("screen test: %v", err)
			return
		}
		time.Sleep(rowDelay)
	}
}

// showWifiLogo is shown while waiting for the network.
func showWifiLogo(d drivers.Displayer, b brightnessSource) {
	w, _ := d.Size()
	clearDisplay(d)
	x := (int(w) - len(WIFI_LOGO[0])) / 2
	pixelfont.DrawBitmap(d, WIFI_LOGO, x, 0, dimmed(b, aqi.White))
	if err := d.Display(); err != nil {
		log.Printf("wifi logo: %v", err)
	}
}

// layoutText right-aligns the AQI in three cells. Fonts without a space
// glyph get the padding as an x offset instead.
func layoutText(f *pixelfont.Font, v aqi.Value) (string, int) {
	s := fmt.Sprintf("%3s", v.String())
	if f.Has(" ") {
		return s, 0
	}
	trimmed := strings.TrimLeft(s, " ")
	return trimmed, (len(s) - len(trimmed)) * pixelfont.Advance(f)
}

// renderAQI draws one frame with the text origin at x.
func renderAQI(d drivers.Displayer, f *pixelfont.Font, text string, x int, c color.RGBA) error {
	_, h := d.Size()
	clearDisplay(d)
	y := (int(h) - f.Height) / 2
	if err := pixelfont.Draw(d, f, text, x, y, c); err != nil {
		return err
	}
	return d.Display()
}

// valueSource yields the AQI to show.
type valueSource interface {
	Value() aqi.Value
}

// runDisplay redraws the AQI every interval until ctx is done. Text wider
// than the matrix scrolls right to left.
func runDisplay(ctx context.Context, d drivers.Displayer, src valueSource, b brightnessSource, f *pixelfont.Font, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w, _ := d.Size()
	var (
		text     string
		offset   int
		scroller *pixelfont.Scroller
		lastErr  string
	)
	for {
		v := src.Value()
		s, x := layoutText(f, v)
		if s != text {
			text, offset, scroller = s, x, nil
			if tw := offset + pixelfont.TextWidth(f, text); !pixelfont.Fits(int(w), tw) {
				scroller = pixelfont.NewScroller(int(w), tw)
			}
		}
		pos := offset
		if scroller != nil {
			pos = offset + scroller.Step()
		}

		if err := renderAQI(d, f, text, pos, dimmed(b, aqi.Color(v))); err != nil {
			if err.Error() != lastErr {
				log.Printf("render %q: %v", text, err)
				lastErr = err.Error()
			}
		} else {
			lastErr = ""
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

//---------------- Preview ----------------

// writeFrameSVG draws frame as a grid of round LEDs.
func writeFrameSVG(w io.Writer, frame *image.RGBA, cell int) {
	b := frame.Bounds()
	canvas := svg.New(w)
	canvas.Startview(b.Dx()*cell, b.Dy()*cell, 0, 0, b.Dx()*cell, b.Dy()*cell)
	canvas.Rect(0, 0, b.Dx()*cell, b.Dy()*cell, "fill:black")
	r := cell * 2 / 5
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := frame.RGBAAt(x, y)
			fill := UNLIT_HEX
			if c.R|c.G|c.B != 0 {
				fill = aqi.Hex(c)
			}
			canvas.Circle((x-b.Min.X)*cell+cell/2, (y-b.Min.Y)*cell+cell/2, r, "fill:"+fill)
		}
	}
	canvas.End()
}

// rasterizeSVG renders an SVG document at its intrinsic size.
func rasterizeSVG(data []byte) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	w := int(icon.ViewBox.W)
	h := int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has no size")
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return img, nil
}

// framePreview renders frame as an LED preview image.
func framePreview(frame *image.RGBA, cell int) (*image.RGBA, error) {
	var buf bytes.Buffer
	writeFrameSVG(&buf, frame, cell)
	return rasterizeSVG(buf.Bytes())
}
