package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/photonicat/aqi_matrix_display/aqi"
	"github.com/photonicat/aqi_matrix_display/pixelfont"
)

type fixedBrightness float64

func (b fixedBrightness) Brightness() float64 { return float64(b) }

type constValue aqi.Value

func (v constValue) Value() aqi.Value { return aqi.Value(v) }

func TestScreenTest(t *testing.T) {
	m := NewMatrix(4, int16(len(aqi.Palette)), false, nil)
	screenTest(m, fixedBrightness(1), 0)

	frame := m.Frame()
	for y, want := range aqi.Palette {
		for x := 0; x < 4; x++ {
			if got := frame.RGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v; want %v", x, y, got, want)
			}
		}
	}
}

func TestScreenTestDimmed(t *testing.T) {
	m := NewMatrix(1, 2, false, nil)
	screenTest(m, fixedBrightness(0.5), 0)
	if got, want := m.Frame().RGBAAt(0, 1), (color.RGBA{0, 114, 0, 255}); got != want {
		t.Errorf("dimmed green = %v; want %v", got, want)
	}
}

func TestLayoutText(t *testing.T) {
	tests := []struct {
		font   *pixelfont.Font
		v      aqi.Value
		text   string
		offset int
	}{
		{pixelfont.Font4x7, aqi.Value{Kind: aqi.Index, V: 42}, " 42", 0},
		{pixelfont.Font4x7, aqi.Value{Kind: aqi.Undefined}, "  -", 0},
		{pixelfont.Font3x5, aqi.Value{Kind: aqi.Index, V: 42}, "42", 4},
		{pixelfont.Font3x5, aqi.Value{Kind: aqi.Index, V: 151}, "151", 0},
		{pixelfont.Font3x5, aqi.Value{Kind: aqi.Undefined}, "-", 8},
		{pixelfont.Font3x5, aqi.Value{Kind: aqi.PassThrough, V: -12.5}, "-12", 0},
	}
	for _, tt := range tests {
		text, offset := layoutText(tt.font, tt.v)
		if text != tt.text || offset != tt.offset {
			t.Errorf("layoutText(%s, %v) = %q, %d; want %q, %d", tt.font.Name, tt.v, text, offset, tt.text, tt.offset)
		}
	}
}

func TestRenderAQI(t *testing.T) {
	m := NewMatrix(8, 8, false, nil)
	fillRect(m, 0, 0, 8, 8, aqi.Red)
	if err := renderAQI(m, pixelfont.Font3x5, "1", 0, aqi.Green); err != nil {
		t.Fatalf("renderAQI error: %v", err)
	}
	frame := m.Frame()
	// "1" starts with " # " and is centered vertically at y=1.
	if got := frame.RGBAAt(1, 1); got != aqi.Green {
		t.Errorf("glyph pixel = %v; want green", got)
	}
	if got := frame.RGBAAt(0, 1); got != BLACK {
		t.Errorf("background pixel = %v; want black", got)
	}
	if got := frame.RGBAAt(7, 7); got != BLACK {
		t.Errorf("old frame not cleared: %v", got)
	}
}

func TestRenderAQIUnknownGlyph(t *testing.T) {
	m := NewMatrix(8, 8, false, nil)
	err := renderAQI(m, pixelfont.Font3x5, "x", 0, aqi.Green)
	if !errors.Is(err, pixelfont.ErrUnknownGlyph) {
		t.Errorf("renderAQI error = %v; want ErrUnknownGlyph", err)
	}
}

func TestRunDisplayStopsOnCancel(t *testing.T) {
	m := NewMatrix(12, 7, false, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runDisplay(ctx, m, constValue{Kind: aqi.Index, V: 100}, fixedBrightness(1), pixelfont.Font3x5, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("runDisplay error = %v; want context.Canceled", err)
	}
	// AQI 100 is Moderate, drawn in yellow from x=0. The second row of
	// "1" lights its first column.
	if got := m.Frame().RGBAAt(0, 2); got != aqi.Yellow {
		t.Errorf("first column = %v; want yellow", got)
	}
}

func TestShowWifiLogo(t *testing.T) {
	m := NewMatrix(12, 8, false, nil)
	showWifiLogo(m, fixedBrightness(1))
	frame := m.Frame()
	// the logo is 10 wide, so it starts at x=1
	if got := frame.RGBAAt(3, 0); got != aqi.White {
		t.Errorf("logo pixel = %v; want white", got)
	}
	if got := frame.RGBAAt(0, 0); got != BLACK {
		t.Errorf("margin pixel = %v; want black", got)
	}
}

func TestWriteFrameSVG(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 3, 2))
	frame.SetRGBA(1, 0, aqi.Orange)

	var buf bytes.Buffer
	writeFrameSVG(&buf, frame, 10)
	out := buf.String()
	if n := strings.Count(out, "<circle"); n != 6 {
		t.Errorf("svg has %d circles; want 6", n)
	}
	if !strings.Contains(out, "fill:#ff7e00") {
		t.Error("lit LED missing from svg")
	}
	if n := strings.Count(out, "fill:"+UNLIT_HEX); n != 5 {
		t.Errorf("svg has %d unlit LEDs; want 5", n)
	}
	if !strings.Contains(out, `viewBox="0 0 30 20"`) {
		t.Errorf("svg has no viewBox: %s", out)
	}
}

func TestFramePreview(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 2, 1))
	frame.SetRGBA(0, 0, aqi.Red)

	img, err := framePreview(frame, 24)
	if err != nil {
		t.Fatalf("framePreview error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 24 {
		t.Fatalf("preview bounds = %v; want 48x24", b)
	}
	if got := img.RGBAAt(12, 12); got.R < 250 || got.G > 5 || got.B > 5 {
		t.Errorf("lit LED center = %v; want red", got)
	}
	if got := img.RGBAAt(36, 12); got.R != 0x1a || got.G != 0x1a || got.B != 0x1a {
		t.Errorf("unlit LED center = %v; want %s", got, UNLIT_HEX)
	}
	if got := img.RGBAAt(0, 0); got.R|got.G|got.B != 0 {
		t.Errorf("corner = %v; want black", got)
	}
}
