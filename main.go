package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/photonicat/aqi_matrix_display/pixelfont"
	"github.com/photonicat/aqi_matrix_display/purpleair"
)

const (
	DEFAULT_MATRIX_WIDTH       = 16
	DEFAULT_MATRIX_HEIGHT      = 8
	DEFAULT_SPI_PORT           = "SPI0.0"
	DEFAULT_SPI_SPEED_HZ       = 2400000
	DEFAULT_DIAL_SCALE         = 8192
	DEFAULT_DIAL_OFFSET        = 0.05
	DEFAULT_BRIGHTNESS         = 0.2
	DEFAULT_UPDATE_SECS        = 120
	DEFAULT_JITTER_SECS        = 30
	DEFAULT_FRAME_MS           = 100
	DEFAULT_NETWORK_TIMEOUT    = 20
	DEFAULT_PING_HOST          = "api.purpleair.com"
	DEFAULT_HTTP_ADDR          = ":8081"
	DEFAULT_HISTORY_FILE       = "/tmp/aqi_history.json"
	DEFAULT_HISTORY_MINS       = 60
	DEFAULT_FONT               = "4x7"
	SCREEN_TEST_ROW_DELAY      = 100 * time.Millisecond
	NETWORK_RETRY_INTERVAL     = 1 * time.Second
	DEFAULT_MQTT_TOPIC_PATTERN = "aqi/%s"
)

// MatrixConfig describes the LED panel.
type MatrixConfig struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Serpentine bool   `json:"serpentine"`
	SPIPort    string `json:"spi_port"`
	SPISpeedHz int64  `json:"spi_speed_hz"`
	Headless   bool   `json:"headless"`
}

// DialConfig describes the ambient light dial. Without a path the fixed
// brightness is used.
type DialConfig struct {
	Path       string  `json:"path"`
	Scale      float64 `json:"scale"`
	Offset     float64 `json:"offset"`
	Brightness float64 `json:"brightness"`
}

// MQTTConfig enables publishing readings when Broker is set.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	Topic    string `json:"topic"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Config represents the overall config JSON.
type Config struct {
	APIKey             string       `json:"api_key"`
	SensorID           string       `json:"sensor_id"`
	BaseURL            string       `json:"base_url,omitempty"`
	Font               string       `json:"font"`
	Matrix             MatrixConfig `json:"matrix"`
	Dial               DialConfig   `json:"dial"`
	UpdateIntervalSecs int          `json:"update_interval_secs"`
	UpdateJitterSecs   int          `json:"update_jitter_secs"`
	FrameIntervalMs    int          `json:"frame_interval_ms"`
	PingHost           string       `json:"ping_host"`
	NetworkTimeoutSecs int          `json:"network_timeout_secs"`
	ButtonDevice       string       `json:"button_device"`
	HTTPAddr           string       `json:"http_addr"`
	HistoryFile        string       `json:"history_file"`
	HistoryMins        int          `json:"history_mins"`
	MQTT               MQTTConfig   `json:"mqtt"`
}

// loadConfig reads and unmarshals the config file, then overlays
// secrets from the environment.
func loadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadEnv loads a dotenv file if one exists. Variables already set in the
// process environment win.
func loadEnv(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("failed to load %s: %v", path, err)
		return
	}
	log.Printf("loaded environment from %s", path)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PURPLEAIR_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("PURPLEAIR_SENSOR_ID"); v != "" {
		c.SensorID = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Font == "" {
		c.Font = DEFAULT_FONT
	}
	if c.Matrix.Width == 0 {
		c.Matrix.Width = DEFAULT_MATRIX_WIDTH
	}
	if c.Matrix.Height == 0 {
		c.Matrix.Height = DEFAULT_MATRIX_HEIGHT
	}
	if c.Matrix.SPIPort == "" {
		c.Matrix.SPIPort = DEFAULT_SPI_PORT
	}
	if c.Matrix.SPISpeedHz == 0 {
		c.Matrix.SPISpeedHz = DEFAULT_SPI_SPEED_HZ
	}
	if c.Dial.Scale == 0 {
		c.Dial.Scale = DEFAULT_DIAL_SCALE
	}
	if c.Dial.Offset == 0 {
		c.Dial.Offset = DEFAULT_DIAL_OFFSET
	}
	if c.Dial.Brightness == 0 {
		c.Dial.Brightness = DEFAULT_BRIGHTNESS
	}
	if c.UpdateIntervalSecs == 0 {
		c.UpdateIntervalSecs = DEFAULT_UPDATE_SECS
	}
	if c.UpdateJitterSecs == 0 {
		c.UpdateJitterSecs = DEFAULT_JITTER_SECS
	}
	if c.FrameIntervalMs == 0 {
		c.FrameIntervalMs = DEFAULT_FRAME_MS
	}
	if c.PingHost == "" {
		c.PingHost = DEFAULT_PING_HOST
	}
	if c.NetworkTimeoutSecs == 0 {
		c.NetworkTimeoutSecs = DEFAULT_NETWORK_TIMEOUT
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = DEFAULT_HTTP_ADDR
	}
	if c.HistoryFile == "" {
		c.HistoryFile = DEFAULT_HISTORY_FILE
	}
	if c.HistoryMins == 0 {
		c.HistoryMins = DEFAULT_HISTORY_MINS
	}
	if c.MQTT.Broker != "" {
		if c.MQTT.Topic == "" {
			c.MQTT.Topic = fmt.Sprintf(DEFAULT_MQTT_TOPIC_PATTERN, c.SensorID)
		}
		if c.MQTT.ClientID == "" {
			c.MQTT.ClientID = "aqi-matrix-" + c.SensorID
		}
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("api_key is required"))
	}
	if c.SensorID == "" {
		errs = append(errs, errors.New("sensor_id is required"))
	}
	if c.Matrix.Width <= 0 || c.Matrix.Height <= 0 || c.Matrix.Width > 256 || c.Matrix.Height > 256 {
		errs = append(errs, fmt.Errorf("matrix size %dx%d out of range", c.Matrix.Width, c.Matrix.Height))
	}
	if _, ok := pixelfont.Fonts[c.Font]; !ok {
		errs = append(errs, fmt.Errorf("unknown font %q", c.Font))
	}
	if c.Dial.Scale < 0 || c.Dial.Brightness < 0 || c.Dial.Brightness > 1 {
		errs = append(errs, errors.New("dial scale must be positive and brightness within [0, 1]"))
	}
	if c.UpdateIntervalSecs < 0 || c.UpdateJitterSecs < 0 || c.FrameIntervalMs < 0 || c.HistoryMins < 0 {
		errs = append(errs, errors.New("intervals must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

//---------------- Main ----------------

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	envPath := flag.String("env", ".env", "dotenv file with secrets")
	headless := flag.Bool("headless", false, "draw into memory only, no SPI")
	window := flag.Bool("window", false, "show the matrix in a desktop window (build with -tags window)")
	skipTest := flag.Bool("skip-screen-test", false, "skip the start-up color rows")
	flag.Parse()

	loadEnv(*envPath)
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var matrix *Matrix
	if cfg.Matrix.Headless || *headless || *window {
		matrix = NewMatrix(int16(cfg.Matrix.Width), int16(cfg.Matrix.Height), cfg.Matrix.Serpentine, nil)
	} else {
		m, closeBus, err := openMatrix(cfg.Matrix)
		if err != nil {
			log.Fatalf("Failed to open matrix: %v", err)
		}
		defer closeBus()
		matrix = m
	}

	dial := newDial(cfg.Dial)
	font := pixelfont.Fonts[cfg.Font]

	history := newHistory(cfg.HistoryFile, cfg.HistoryMins)
	if err := history.load(); err != nil {
		log.Printf("No usable history in %s, starting fresh: %v", cfg.HistoryFile, err)
	}

	client := purpleair.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	poller := newPoller(client, cfg.SensorID,
		time.Duration(cfg.UpdateIntervalSecs)*time.Second,
		time.Duration(cfg.UpdateJitterSecs)*time.Second)
	poller.onSample(history.Record)

	if cfg.MQTT.Broker != "" {
		pub, err := newMQTTPublisher(cfg.MQTT)
		if err != nil {
			log.Printf("MQTT disabled: %v", err)
		} else {
			defer pub.Close()
			poller.onSample(func(s Sample) {
				if err := pub.Publish(cfg.SensorID, s); err != nil {
					log.Printf("MQTT publish failed: %v", err)
				}
			})
		}
	}

	app := newHTTPServer(matrix, poller, history)
	go httpServer(ctx, app, cfg.HTTPAddr)
	go monitorButton(ctx, cfg.ButtonDevice, poller.Refresh)

	run := func(ctx context.Context) error {
		if !*skipTest {
			screenTest(matrix, dial, SCREEN_TEST_ROW_DELAY)
		}
		showWifiLogo(matrix, dial)
		timeout := time.Duration(cfg.NetworkTimeoutSecs) * time.Second
		if err := waitForNetwork(ctx, cfg.PingHost, timeout, NETWORK_RETRY_INTERVAL, pingICMP); err != nil {
			log.Printf("Network not confirmed, polling anyway: %v", err)
		}
		poller.fetchMetadata(ctx)
		go poller.run(ctx)
		return runDisplay(ctx, matrix, poller, dial, font, time.Duration(cfg.FrameIntervalMs)*time.Millisecond)
	}

	if *window {
		err = runWindow(ctx, matrix, run)
	} else {
		err = run(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("display loop stopped: %v", err)
	}

	clearDisplay(matrix)
	if err := matrix.Display(); err != nil {
		log.Printf("failed to blank matrix: %v", err)
	}
	if err := history.save(); err != nil {
		log.Printf("Failed to save history: %v", err)
	}
	log.Println("bye")
}
