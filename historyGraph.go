package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/photonicat/aqi_matrix_display/aqi"
)

const (
	MAX_HISTORY_SAMPLES = 1440 // one day at one sample a minute
	GRAPH_WIDTH         = 320
	GRAPH_HEIGHT        = 160
	GRAPH_MARGIN        = 6
)

// Sample is one converted sensor reading.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	PM25      float64   `json:"pm25"`
	Valid     bool      `json:"valid"`
	Kind      aqi.Kind  `json:"kind"`
	AQI       float64   `json:"aqi"`
}

func newSample(at time.Time, r aqi.Reading) Sample {
	v := aqi.FromPM25(r)
	return Sample{Timestamp: at, PM25: r.PM25, Valid: r.Valid, Kind: v.Kind, AQI: v.V}
}

func (s Sample) Reading() aqi.Reading {
	if !s.Valid {
		return aqi.NoData
	}
	return aqi.PM25(s.PM25)
}

func (s Sample) Value() aqi.Value {
	return aqi.Value{Kind: s.Kind, V: s.AQI}
}

// History keeps the samples of the last TimeFrameMins minutes and mirrors
// them to a JSON file.
type History struct {
	Samples       []Sample `json:"samples"`
	TimeFrameMins int      `json:"time_frame_mins"`
	path          string
	now           func() time.Time
	mu            sync.RWMutex
}

func newHistory(path string, mins int) *History {
	if mins < 1 {
		mins = 1
	}
	return &History{
		Samples:       make([]Sample, 0, 64),
		TimeFrameMins: mins,
		path:          path,
		now:           time.Now,
	}
}

// Record appends s, drops what fell out of the time frame and saves.
func (h *History) Record(s Sample) {
	h.mu.Lock()
	h.Samples = append(h.Samples, s)
	h.prune()
	h.mu.Unlock()

	if err := h.save(); err != nil {
		log.Printf("Failed to save history: %v", err)
	}
}

// prune must be called with mu held.
func (h *History) prune() {
	cutoff := h.now().Add(-time.Duration(h.TimeFrameMins) * time.Minute)
	keep := len(h.Samples)
	for i, s := range h.Samples {
		if s.Timestamp.After(cutoff) {
			keep = i
			break
		}
	}
	h.Samples = h.Samples[keep:]
	if len(h.Samples) > MAX_HISTORY_SAMPLES {
		h.Samples = h.Samples[len(h.Samples)-MAX_HISTORY_SAMPLES:]
	}
}

// Snapshot returns a copy of the samples.
func (h *History) Snapshot() []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Sample, len(h.Samples))
	copy(out, h.Samples)
	return out
}

// load replaces the samples with the file contents. A missing file is not
// an error. The configured time frame wins over the stored one.
func (h *History) load() error {
	if h.path == "" {
		return nil
	}
	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var stored struct {
		Samples []Sample `json:"samples"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.Samples = stored.Samples
	h.prune()
	log.Printf("Loaded %d history samples from %s", len(h.Samples), h.path)
	return nil
}

// save writes the samples through a temp file so a crash never leaves a
// truncated history behind.
func (h *History) save() error {
	if h.path == "" {
		return nil
	}
	h.mu.RLock()
	data, err := json.Marshal(h)
	h.mu.RUnlock()
	if err != nil {
		return err
	}
	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, h.path)
}

// drawHistoryGraph plots the AQI of samples against time, over bands in
// the category colors. Samples without an index are skipped.
func drawHistoryGraph(samples []Sample, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetFillColor(color.RGBA{0, 0, 0, 255})
	draw2dkit.Rectangle(gc, 0, 0, float64(width), float64(height))
	gc.Fill()

	var points []Sample
	for _, s := range samples {
		if s.Kind == aqi.Index {
			points = append(points, s)
		}
	}

	top := 100.0
	for _, s := range points {
		top = math.Max(top, s.AQI)
	}
	top = math.Ceil(top/50) * 50

	x0, y0 := float64(GRAPH_MARGIN), float64(GRAPH_MARGIN+13)
	w, h := float64(width-2*GRAPH_MARGIN), float64(height-GRAPH_MARGIN)-y0
	yFor := func(v float64) float64 { return y0 + h*(1-v/top) }

	// category bands, dimmed
	lower := 0.0
	for _, bp := range aqi.Breakpoints {
		upper := math.Min(bp.IHigh, top)
		if lower >= top {
			break
		}
		band, _ := aqi.AdjustColor(0.25, aqi.ColorForIndex(bp.IHigh))
		gc.SetFillColor(band)
		draw2dkit.Rectangle(gc, x0, yFor(upper), x0+w, yFor(lower))
		gc.Fill()
		lower = upper
	}

	if len(points) < 2 {
		drawLabel(img, GRAPH_MARGIN, GRAPH_MARGIN, "waiting for data", aqi.White)
		return img
	}

	start := points[0].Timestamp
	span := points[len(points)-1].Timestamp.Sub(start)
	if span <= 0 {
		span = time.Second
	}
	xFor := func(t time.Time) float64 { return x0 + w*float64(t.Sub(start))/float64(span) }

	gc.SetStrokeColor(aqi.White)
	gc.SetLineWidth(1.5)
	gc.BeginPath()
	gc.MoveTo(xFor(points[0].Timestamp), yFor(points[0].AQI))
	for _, s := range points[1:] {
		gc.LineTo(xFor(s.Timestamp), yFor(s.AQI))
	}
	gc.Stroke()

	for _, s := range points {
		gc.SetFillColor(aqi.ColorForIndex(s.AQI))
		gc.BeginPath()
		draw2dkit.Circle(gc, xFor(s.Timestamp), yFor(s.AQI), 2.5)
		gc.Fill()
	}

	last := points[len(points)-1]
	drawLabel(img, GRAPH_MARGIN, GRAPH_MARGIN,
		fmt.Sprintf("AQI %s  %s  max %d", last.Value(), aqi.Category(last.Value()), int(top)),
		aqi.ColorForIndex(last.AQI))
	return img
}

// drawLabel writes s with its top-left corner at (x, y).
func drawLabel(img *image.RGBA, x, y int, s string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Round()),
	}
	d.DrawString(s)
}
