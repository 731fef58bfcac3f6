package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"sync"
	"time"

	"github.com/go-ping/ping"

	"github.com/photonicat/aqi_matrix_display/aqi"
	"github.com/photonicat/aqi_matrix_display/purpleair"
)

// sensorFetcher is satisfied by *purpleair.Client.
type sensorFetcher interface {
	FetchSensor(ctx context.Context, sensorID string, fields []string) (*purpleair.SensorResponse, error)
}

// poller refreshes the sensor reading on a jittered schedule and keeps
// the latest sample for the render loop and the HTTP server.
type poller struct {
	client   sensorFetcher
	sensorID string
	interval time.Duration
	jitter   time.Duration
	rand     func(n int64) int64
	now      func() time.Time
	refresh  chan struct{}

	mu        sync.RWMutex
	latest    Sample
	have      bool
	name      string
	listeners []func(Sample)
}

func newPoller(client sensorFetcher, sensorID string, interval, jitter time.Duration) *poller {
	return &poller{
		client:   client,
		sensorID: sensorID,
		interval: interval,
		jitter:   jitter,
		rand:     rand.Int63n,
		now:      time.Now,
		refresh:  make(chan struct{}, 1),
	}
}

// onSample registers f to be called with every new sample. Register
// before run starts.
func (p *poller) onSample(f func(Sample)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, f)
	p.mu.Unlock()
}

// Latest returns the newest sample, if any.
func (p *poller) Latest() (Sample, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.have
}

// Value is the AQI of the newest sample, Undefined before the first one.
func (p *poller) Value() aqi.Value {
	s, ok := p.Latest()
	if !ok {
		return aqi.Value{Kind: aqi.Undefined}
	}
	return s.Value()
}

// SensorName is the name reported by the metadata fetch.
func (p *poller) SensorName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// Refresh asks run to fetch now. It never blocks.
func (p *poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Set stores a reading as if it had been fetched.
func (p *poller) Set(r aqi.Reading) Sample {
	s := newSample(p.now(), r)
	p.mu.Lock()
	p.latest = s
	p.have = true
	listeners := make([]func(Sample), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, f := range listeners {
		f(s)
	}
	return s
}

// nextDelay is the interval plus a uniform random jitter.
func (p *poller) nextDelay() time.Duration {
	if p.jitter <= 0 {
		return p.interval
	}
	return p.interval + time.Duration(p.rand(int64(p.jitter)))
}

// fetchMetadata logs where the sensor is. Failures are only logged.
func (p *poller) fetchMetadata(ctx context.Context) {
	resp, err := p.client.FetchSensor(ctx, p.sensorID, purpleair.MetadataFields)
	if err != nil {
		log.Printf("sensor metadata fetch failed: %v", err)
		return
	}
	p.mu.Lock()
	p.name = resp.Sensor.Name
	p.mu.Unlock()
	logSensorMetadata(resp)
}

// poll fetches one reading. A failed fetch keeps the previous sample.
func (p *poller) poll(ctx context.Context) error {
	resp, err := p.client.FetchSensor(ctx, p.sensorID, purpleair.AirQualityFields)
	if err != nil {
		return err
	}
	s := p.Set(resp.PM25Reading())
	logSensorReading(resp, s)
	return nil
}

// run polls until ctx is done.
func (p *poller) run(ctx context.Context) {
	for {
		if err := p.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("sensor fetch failed, retrying next update: %v", err)
		}

		delay := p.nextDelay()
		log.Printf("Update in %.1f seconds", delay.Seconds())
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.refresh:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func logSensorMetadata(resp *purpleair.SensorResponse) {
	s := resp.Sensor
	log.Printf("sensor %q updated %s (UTC)", s.Name, formatTime(resp.LastSeen()))
	log.Printf("location: latitude %s, longitude %s, altitude %s meters",
		optFloat(s.Latitude), optFloat(s.Longitude), optFloat(s.Altitude))
}

func logSensorReading(resp *purpleair.SensorResponse, s Sample) {
	log.Printf("sensor updated %s (UTC), %d seconds ago", formatTime(resp.LastSeen()), int(resp.Age().Seconds()))
	log.Printf("pm2.5: %s µg/m³, AQI %s (%s)", optFloat(resp.Sensor.PM25), s.Value(), aqi.Category(s.Value()))
}

func optFloat(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}

// pingFunc returns the round trip time to host in milliseconds.
type pingFunc func(host string) (int64, error)

// pingICMP uses github.com/go-ping/ping to perform an ICMP ping.
// Note: raw ICMP ping usually requires root privileges.
func pingICMP(host string) (int64, error) {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return 0, err
	}
	pinger.SetPrivileged(true)
	pinger.Count = 1
	pinger.Timeout = 900 * time.Millisecond

	if err := pinger.Run(); err != nil {
		return 0, err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, errNoReply
	}
	return int64(stats.AvgRtt / time.Millisecond), nil
}

var errNoReply = errors.New("no reply")

// waitForNetwork pings host every interval until it answers, ctx is done
// or timeout passes.
func waitForNetwork(ctx context.Context, host string, timeout, interval time.Duration, pingHost pingFunc) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for attempt := 1; ; attempt++ {
		rtt, err := pingHost(host)
		if err == nil {
			log.Printf("network up: %s answered in %d ms", host, rtt)
			return nil
		}
		lastErr = err
		log.Printf("waiting for network (attempt %d): %s", attempt, classifyNetworkError(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s unreachable after %d attempts: %w", host, attempt, lastErr)
		case <-ticker.C:
		}
	}
}

// classifyNetworkError turns a ping failure into a hint for the log.
func classifyNetworkError(err error) string {
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr):
		return "name lookup failed: " + dnsErr.Err
	case errors.Is(err, errNoReply):
		return "no reply yet"
	case errors.Is(err, os.ErrPermission):
		return "not permitted to open an ICMP socket"
	default:
		return err.Error()
	}
}
