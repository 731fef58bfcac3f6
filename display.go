package main

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// Each WS2812 data bit is sent as three SPI bits at 2.4 MHz:
	// 110 for a one, 100 for a zero.
	WS2812_BYTES_PER_LED = 9
	// 24 zero bytes hold the line low for 80 µs, past the 50 µs latch time.
	WS2812_RESET_BYTES = 24
)

// bus is the part of spi.Conn the matrix needs.
type bus interface {
	Tx(w, r []byte) error
}

// Matrix is a NeoPixel (WS2812) panel fed through an SPI MOSI line. It
// implements drivers.Displayer: SetPixel draws into a back buffer and
// Display latches it and shifts it out. A Matrix with a nil bus only
// keeps frames in memory.
type Matrix struct {
	width      int16
	height     int16
	serpentine bool
	bus        bus

	mu    sync.RWMutex
	pix   []color.RGBA
	shown []color.RGBA
	tx    []byte
}

// NewMatrix returns a blank matrix.
func NewMatrix(width, height int16, serpentine bool, b bus) *Matrix {
	n := int(width) * int(height)
	return &Matrix{
		width:      width,
		height:     height,
		serpentine: serpentine,
		bus:        b,
		pix:        make([]color.RGBA, n),
		shown:      make([]color.RGBA, n),
		tx:         make([]byte, n*WS2812_BYTES_PER_LED+WS2812_RESET_BYTES),
	}
}

// openMatrix brings up the board and connects the SPI port the panel data
// line hangs off.
func openMatrix(cfg MatrixConfig) (*Matrix, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("host init: %w", err)
	}
	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.SPIPort, err)
	}
	conn, err := port.Connect(physic.Frequency(cfg.SPISpeedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("connect %s: %w", cfg.SPIPort, err)
	}
	m := NewMatrix(int16(cfg.Width), int16(cfg.Height), cfg.Serpentine, conn)
	return m, port.Close, nil
}

func (m *Matrix) Size() (x, y int16) {
	return m.width, m.height
}

// SetPixel ignores coordinates outside the panel.
func (m *Matrix) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.mu.Lock()
	m.pix[int(y)*int(m.width)+int(x)] = c
	m.mu.Unlock()
}

// Display latches the back buffer and sends it to the LEDs.
func (m *Matrix) Display() error {
	m.mu.Lock()
	copy(m.shown, m.pix)
	if m.bus == nil {
		m.mu.Unlock()
		return nil
	}
	for y := 0; y < int(m.height); y++ {
		for x := 0; x < int(m.width); x++ {
			i := m.ledIndex(x, y)
			encodeLED(m.tx[i*WS2812_BYTES_PER_LED:], m.shown[y*int(m.width)+x])
		}
	}
	tx := m.tx
	m.mu.Unlock()
	if err := m.bus.Tx(tx, nil); err != nil {
		return fmt.Errorf("matrix write: %w", err)
	}
	return nil
}

// ledIndex maps a pixel to its position on the LED chain. Rows run left
// to right; a serpentine panel reverses every odd row.
func (m *Matrix) ledIndex(x, y int) int {
	w := int(m.width)
	if m.serpentine && y%2 == 1 {
		return y*w + (w - 1 - x)
	}
	return y*w + x
}

// Frame returns a copy of the last displayed frame.
func (m *Matrix) Frame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(m.width), int(m.height)))
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, c := range m.shown {
		img.Pix[i*4] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = 255
	}
	return img
}

// encodeLED writes one pixel in the GRB order WS2812 expects.
func encodeLED(dst []byte, c color.RGBA) {
	encodeByte(dst[0:3], c.G)
	encodeByte(dst[3:6], c.R)
	encodeByte(dst[6:9], c.B)
}

func encodeByte(dst []byte, b byte) {
	var bits uint32
	for i := 7; i >= 0; i-- {
		bits <<= 3
		if b&(1<<uint(i)) != 0 {
			bits |= 0b110
		} else {
			bits |= 0b100
		}
	}
	dst[0] = byte(bits >> 16)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits)
}
