package main

import (
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const BUTTON_DEBOUNCE_TIME = 500 * time.Millisecond

// brightnessSource yields a brightness in [0, 1].
type brightnessSource interface {
	Brightness() float64
}

// dial reads an ambient light or potentiometer value from sysfs (an IIO
// ADC channel, for example) and turns it into a brightness.
type dial struct {
	path   string
	scale  float64
	offset float64
	fixed  float64

	mu      sync.Mutex
	lastErr string
}

func newDial(cfg DialConfig) *dial {
	return &dial{
		path:   cfg.Path,
		scale:  cfg.Scale,
		offset: cfg.Offset,
		fixed:  cfg.Brightness,
	}
}

// Brightness is raw/scale + offset clamped to [0, 1], or the fixed
// brightness when there is no dial or it cannot be read.
func (d *dial) Brightness() float64 {
	if d.path == "" {
		return clamp01(d.fixed)
	}
	raw, err := readSysfsInt(d.path)
	if err != nil {
		d.logOnce(err)
		return clamp01(d.fixed)
	}
	d.logOnce(nil)
	return dialBrightness(raw, d.scale, d.offset)
}

// logOnce keeps a failing dial from flooding the log at frame rate.
func (d *dial) logOnce(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == d.lastErr {
		return
	}
	d.lastErr = msg
	if err != nil {
		log.Printf("dial read error, using fixed brightness: %v", err)
	} else {
		log.Println("dial readable again")
	}
}

func dialBrightness(raw int64, scale, offset float64) float64 {
	if scale <= 0 {
		return clamp01(offset)
	}
	return clamp01(float64(raw)/scale + offset)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func readSysfsInt(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

// formatTime renders t as YYYY-MM-DD HH:MM:SS in UTC.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// debouncer drops presses that follow the previous accepted press too
// closely.
type debouncer struct {
	window time.Duration
	last   time.Time
}

func (d *debouncer) accept(now time.Time) bool {
	if !d.last.IsZero() && now.Sub(d.last) < d.window {
		return false
	}
	d.last = now
	return true
}
