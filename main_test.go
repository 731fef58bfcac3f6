package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t, "PURPLEAIR_API_KEY", "PURPLEAIR_SENSOR_ID", "MQTT_PASSWORD")
	cfg, err := loadConfig(writeConfig(t, `{"api_key": "k", "sensor_id": "12345"}`))
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Matrix.Width != 16 || cfg.Matrix.Height != 8 {
		t.Errorf("matrix = %dx%d; want 16x8", cfg.Matrix.Width, cfg.Matrix.Height)
	}
	if cfg.UpdateIntervalSecs != 120 || cfg.UpdateJitterSecs != 30 {
		t.Errorf("update = %d+%d; want 120+30", cfg.UpdateIntervalSecs, cfg.UpdateJitterSecs)
	}
	if cfg.Dial.Scale != 8192 || cfg.Dial.Offset != 0.05 {
		t.Errorf("dial = %+v", cfg.Dial)
	}
	if cfg.Font != "4x7" || cfg.FrameIntervalMs != 100 || cfg.NetworkTimeoutSecs != 20 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MQTT.Topic != "" {
		t.Errorf("MQTT topic defaulted without a broker: %q", cfg.MQTT.Topic)
	}
}

func TestLoadConfigMQTTDefaults(t *testing.T) {
	clearEnv(t, "PURPLEAIR_API_KEY", "PURPLEAIR_SENSOR_ID", "MQTT_PASSWORD")
	cfg, err := loadConfig(writeConfig(t, `{"api_key": "k", "sensor_id": "42", "mqtt": {"broker": "tcp://localhost:1883"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MQTT.Topic != "aqi/42" || cfg.MQTT.ClientID != "aqi-matrix-42" {
		t.Errorf("mqtt = %+v", cfg.MQTT)
	}
}

func TestLoadConfigEnvOverlay(t *testing.T) {
	t.Setenv("PURPLEAIR_API_KEY", "from-env")
	t.Setenv("PURPLEAIR_SENSOR_ID", "777")
	t.Setenv("MQTT_PASSWORD", "secret")
	cfg, err := loadConfig(writeConfig(t, `{"api_key": "from-file"}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "from-env" || cfg.SensorID != "777" || cfg.MQTT.Password != "secret" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t, "PURPLEAIR_API_KEY", "PURPLEAIR_SENSOR_ID")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PURPLEAIR_API_KEY=dotenv-key\nPURPLEAIR_SENSOR_ID=31337\n"), 0644); err != nil {
		t.Fatal(err)
	}
	loadEnv(path)
	t.Cleanup(func() {
		os.Unsetenv("PURPLEAIR_API_KEY")
		os.Unsetenv("PURPLEAIR_SENSOR_ID")
	})

	cfg, err := loadConfig(writeConfig(t, `{}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "dotenv-key" || cfg.SensorID != "31337" {
		t.Errorf("dotenv not applied: key=%q sensor=%q", cfg.APIKey, cfg.SensorID)
	}

	loadEnv(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t, "PURPLEAIR_API_KEY", "PURPLEAIR_SENSOR_ID", "MQTT_PASSWORD")
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"invalid JSON", `{"api_key": `, "parse"},
		{"missing api key", `{"sensor_id": "1"}`, "api_key is required"},
		{"missing sensor", `{"api_key": "k"}`, "sensor_id is required"},
		{"bad geometry", `{"api_key": "k", "sensor_id": "1", "matrix": {"width": -2}}`, "out of range"},
		{"unknown font", `{"api_key": "k", "sensor_id": "1", "font": "9x9"}`, "unknown font"},
		{"brightness too high", `{"api_key": "k", "sensor_id": "1", "dial": {"brightness": 3}}`, "brightness"},
		{"negative interval", `{"api_key": "k", "sensor_id": "1", "update_interval_secs": -1}`, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("loadConfig should fail")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v; want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("loadConfig should fail for a missing file")
	}
}
