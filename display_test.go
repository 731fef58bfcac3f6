package main

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

type fakeBus struct {
	writes [][]byte
	err    error
}

func (b *fakeBus) Tx(w, r []byte) error {
	b.writes = append(b.writes, append([]byte(nil), w...))
	return b.err
}

func TestEncodeByte(t *testing.T) {
	tests := []struct {
		input    byte
		expected []byte
	}{
		{0x00, []byte{0x92, 0x49, 0x24}},
		{0xFF, []byte{0xDB, 0x6D, 0xB6}},
		{0x80, []byte{0xD2, 0x49, 0x24}},
		{0x01, []byte{0x92, 0x49, 0x26}},
	}
	for _, tt := range tests {
		got := make([]byte, 3)
		encodeByte(got, tt.input)
		if !bytes.Equal(got, tt.expected) {
			t.Errorf("encodeByte(%#x) = % x; want % x", tt.input, got, tt.expected)
		}
	}
}

func TestEncodeLEDOrderIsGRB(t *testing.T) {
	got := make([]byte, WS2812_BYTES_PER_LED)
	encodeLED(got, color.RGBA{R: 0xFF, G: 0x00, B: 0x01, A: 255})
	want := []byte{
		0x92, 0x49, 0x24, // G
		0xDB, 0x6D, 0xB6, // R
		0x92, 0x49, 0x26, // B
	}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeLED = % x; want % x", got, want)
	}
}

func TestMatrixSetPixelBounds(t *testing.T) {
	m := NewMatrix(4, 2, false, nil)
	red := color.RGBA{255, 0, 0, 255}
	m.SetPixel(-1, 0, red)
	m.SetPixel(4, 0, red)
	m.SetPixel(0, 2, red)
	m.SetPixel(3, 1, red)
	if err := m.Display(); err != nil {
		t.Fatal(err)
	}
	frame := m.Frame()
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			want := color.RGBA{0, 0, 0, 255}
			if x == 3 && y == 1 {
				want = red
			}
			if got := frame.RGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v; want %v", x, y, got, want)
			}
		}
	}
}

func TestMatrixFrameIsLatched(t *testing.T) {
	m := NewMatrix(2, 1, false, nil)
	m.SetPixel(0, 0, color.RGBA{0, 0, 255, 255})
	if got := m.Frame().RGBAAt(0, 0); got.B != 0 {
		t.Errorf("frame changed before Display: %v", got)
	}
	m.Display()
	if got := m.Frame().RGBAAt(0, 0); got.B != 255 {
		t.Errorf("frame after Display = %v", got)
	}
}

func TestMatrixDisplayWritesChain(t *testing.T) {
	b := &fakeBus{}
	m := NewMatrix(2, 2, true, b)
	white := color.RGBA{255, 255, 255, 255}
	// (0,1) is the last LED on a serpentine chain.
	m.SetPixel(0, 1, white)
	if err := m.Display(); err != nil {
		t.Fatal(err)
	}
	if len(b.writes) != 1 {
		t.Fatalf("got %d writes; want 1", len(b.writes))
	}
	w := b.writes[0]
	if len(w) != 4*WS2812_BYTES_PER_LED+WS2812_RESET_BYTES {
		t.Fatalf("write is %d bytes", len(w))
	}
	lit := make([]byte, WS2812_BYTES_PER_LED)
	encodeLED(lit, white)
	dark := make([]byte, WS2812_BYTES_PER_LED)
	encodeLED(dark, color.RGBA{})
	for i := 0; i < 4; i++ {
		want := dark
		if i == 3 {
			want = lit
		}
		if got := w[i*WS2812_BYTES_PER_LED : (i+1)*WS2812_BYTES_PER_LED]; !bytes.Equal(got, want) {
			t.Errorf("LED %d = % x; want % x", i, got, want)
		}
	}
	for _, v := range w[4*WS2812_BYTES_PER_LED:] {
		if v != 0 {
			t.Fatal("reset tail is not zero")
		}
	}
}

func TestMatrixLedIndex(t *testing.T) {
	tests := []struct {
		serpentine bool
		x, y       int
		expected   int
	}{
		{false, 0, 0, 0},
		{false, 15, 0, 15},
		{false, 0, 1, 16},
		{true, 0, 1, 31},
		{true, 15, 1, 16},
		{true, 3, 2, 35},
	}
	for _, tt := range tests {
		m := NewMatrix(16, 8, tt.serpentine, nil)
		if got := m.ledIndex(tt.x, tt.y); got != tt.expected {
			t.Errorf("ledIndex(%d,%d) serpentine=%v = %d; want %d", tt.x, tt.y, tt.serpentine, got, tt.expected)
		}
	}
}

func TestMatrixDisplayError(t *testing.T) {
	m := NewMatrix(1, 1, false, &fakeBus{err: errors.New("bus gone")})
	if err := m.Display(); err == nil {
		t.Error("Display should return the bus error")
	}
}
