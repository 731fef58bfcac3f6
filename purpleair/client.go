// Package purpleair fetches sensor readings from the PurpleAir v1 API.
package purpleair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.purpleair.com/v1"

var (
	// ErrStatus is wrapped by every *StatusError.
	ErrStatus = errors.New("purpleair: unexpected status")
	// ErrNoFields is returned when a fetch names no fields.
	ErrNoFields = errors.New("purpleair: no fields requested")
)

// Field lists used by the display.
var (
	MetadataFields   = []string{"name", "latitude", "longitude", "altitude", "last_seen"}
	AirQualityFields = []string{"pm2.5", "last_seen"}
)

// StatusError reports a non-200 answer. Body holds the start of the
// response body, which usually carries the API's own error description.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("purpleair: status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Client talks to the API. The zero value is not usable; use NewClient.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient returns a client for the public API with a 15 second timeout.
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// EncodeFields percent-encodes s for the fields query parameter. ASCII
// letters and digits pass through, every other byte becomes %xx in lower
// case hex, dots and commas included.
func EncodeFields(s string) string {
	const hex = "0123456789abcdef"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// SensorURL builds the request URL for one sensor and a field list.
func (c *Client) SensorURL(sensorID string, fields []string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	return base + "/sensors/" + url.PathEscape(sensorID) + "?fields=" + EncodeFields(strings.Join(fields, ","))
}

// FetchSensor requests fields for sensorID. Transport errors, non-200
// statuses and undecodable bodies are all returned; nothing is retried.
func (c *Client) FetchSensor(ctx context.Context, sensorID string, fields []string) (*SensorResponse, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SensorURL(sensorID, fields), nil)
	if err != nil {
		return nil, fmt.Errorf("purpleair: build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("purpleair: fetch sensor %s: %w", sensorID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out SensorResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("purpleair: decode sensor %s: %w", sensorID, err)
	}
	return &out, nil
}
