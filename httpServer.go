package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/photonicat/aqi_matrix_display/aqi"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>AQI matrix</title></head>
<body style="background:#111;color:#eee;font-family:sans-serif">
<h1 id="aqi">AQI</h1>
<img id="frame" src="/frame.svg" alt="matrix">
<p><img src="/history.png" alt="history"></p>
<script>
setInterval(function () {
  document.getElementById("frame").src = "/frame.svg?t=" + Date.now();
  fetch("/reading").then(function (r) { return r.json(); }).then(function (j) {
    document.getElementById("aqi").textContent = "AQI " + j.aqi + " (" + j.category + ")";
  });
}, 1000);
</script>
</body>
</html>
`

// frameSource yields the frame currently on the matrix.
type frameSource interface {
	Frame() *image.RGBA
}

type readingJSON struct {
	PM25     *float64  `json:"pm25"`
	AQI      string    `json:"aqi"`
	Kind     string    `json:"kind"`
	Category string    `json:"category"`
	Color    string    `json:"color"`
	Updated  time.Time `json:"updated"`
	Sensor   string    `json:"sensor,omitempty"`
}

type readingRequest struct {
	PM25 *float64 `json:"pm25"`
}

func newReadingJSON(s Sample, ok bool, sensor string) readingJSON {
	v := aqi.Value{Kind: aqi.Undefined}
	out := readingJSON{Sensor: sensor}
	if ok {
		v = s.Value()
		out.Updated = s.Timestamp
		if s.Valid {
			pm := s.PM25
			out.PM25 = &pm
		}
	}
	out.AQI = v.String()
	out.Kind = v.Kind.String()
	out.Category = aqi.Category(v)
	out.Color = aqi.Hex(aqi.Color(v))
	return out
}

func sendPNG(c *fiber.Ctx, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to encode image")
	}
	c.Set("Content-Type", "image/png")
	c.Set("Content-Length", strconv.Itoa(buf.Len()))
	return c.Send(buf.Bytes())
}

func newHTTPServer(frames frameSource, p *poller, history *History) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(indexPage)
	})

	app.Get("/frame.svg", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		writeFrameSVG(&buf, frames.Frame(), PREVIEW_CELL)
		c.Set("Content-Type", "image/svg+xml")
		return c.Send(buf.Bytes())
	})

	app.Get("/frame.png", func(c *fiber.Ctx) error {
		img, err := framePreview(frames.Frame(), PREVIEW_CELL)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to render frame")
		}
		return sendPNG(c, img)
	})

	app.Get("/history.png", func(c *fiber.Ctx) error {
		return sendPNG(c, drawHistoryGraph(history.Snapshot(), GRAPH_WIDTH, GRAPH_HEIGHT))
	})

	app.Get("/reading", func(c *fiber.Ctx) error {
		s, ok := p.Latest()
		return c.JSON(newReadingJSON(s, ok, p.SensorName()))
	})

	// POST /reading overrides the displayed value until the next poll.
	// {"pm25": null} shows the undefined marker.
	app.Post("/reading", func(c *fiber.Ctx) error {
		var req readingRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid JSON")
		}
		r := aqi.NoData
		if req.PM25 != nil {
			r = aqi.PM25(*req.PM25)
		}
		s := p.Set(r)
		log.Printf("reading set over HTTP: AQI %s", s.Value())
		return c.JSON(newReadingJSON(s, true, p.SensorName()))
	})

	app.Post("/refresh", func(c *fiber.Ctx) error {
		p.Refresh()
		return c.Status(fiber.StatusAccepted).SendString("Refresh requested")
	})

	return app
}

// httpServer serves app on addr until ctx is done.
func httpServer(ctx context.Context, app *fiber.App, addr string) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown: %v", err)
		}
	}()

	log.Println("Starting Fiber server on", addr)
	if err := app.Listen(addr); err != nil {
		log.Printf("HTTP server stopped: %v", err)
	}
}
