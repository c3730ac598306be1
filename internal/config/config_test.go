package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"APP_ENV", "LOG_LEVEL", "PORT", "WEATHER_STATION_URL",
	"FETCH_TIMEOUT", "FETCH_INTERVAL", "FETCH_RATE_LIMIT", "FETCH_RATE_BURST", "SCHEDULER_AUTOSTART",
	"STORE_DRIVER", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "STORE_MAX_HISTORY", "STORE_MAX_AGE",
	"MQTT_BROKER", "MQTT_PORT", "MQTT_CLIENT_ID", "MQTT_TOPIC",
	"INFLUX_URL", "INFLUX_TOKEN", "INFLUX_ORG", "INFLUX_BUCKET",
	"CONSOLE_MENU",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppEnv != "dev" {
		t.Errorf("AppEnv = %q; want dev", cfg.AppEnv)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v; want info", cfg.LogLevel)
	}
	if cfg.StationURL != DefaultStationURL {
		t.Errorf("StationURL = %q; want %q", cfg.StationURL, DefaultStationURL)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v; want 30s", cfg.FetchTimeout)
	}
	if cfg.FetchInterval != time.Hour {
		t.Errorf("FetchInterval = %v; want 1h", cfg.FetchInterval)
	}
	if cfg.StoreDriver != "sqlite" || cfg.SQLitePath != "data/meteo.db" {
		t.Errorf("store = %q %q; want sqlite data/meteo.db", cfg.StoreDriver, cfg.SQLitePath)
	}
	if cfg.MQTTBroker != "" || cfg.MQTTPort != 1883 || cfg.MQTTTopic != "meteo/readings" {
		t.Errorf("mqtt = %q %d %q", cfg.MQTTBroker, cfg.MQTTPort, cfg.MQTTTopic)
	}
	if cfg.SchedulerAutostart || cfg.ConsoleMenu {
		t.Errorf("SchedulerAutostart=%v ConsoleMenu=%v; want both false", cfg.SchedulerAutostart, cfg.ConsoleMenu)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("WEATHER_STATION_URL", "http://station.local/status.xml")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("FETCH_INTERVAL", "15m")
	t.Setenv("FETCH_RATE_LIMIT", "0.5")
	t.Setenv("SCHEDULER_AUTOSTART", "true")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("STORE_MAX_HISTORY", "24")
	t.Setenv("MQTT_BROKER", "mosquitto")
	t.Setenv("MQTT_PORT", "1884")
	t.Setenv("CONSOLE_MENU", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppEnv != "prod" || cfg.LogLevel != slog.LevelWarn {
		t.Errorf("env/level = %q %v", cfg.AppEnv, cfg.LogLevel)
	}
	if cfg.StationURL != "http://station.local/status.xml" {
		t.Errorf("StationURL = %q", cfg.StationURL)
	}
	if cfg.FetchTimeout != 5*time.Second || cfg.FetchInterval != 15*time.Minute {
		t.Errorf("timeout/interval = %v %v", cfg.FetchTimeout, cfg.FetchInterval)
	}
	if cfg.FetchRateLimit != 0.5 {
		t.Errorf("FetchRateLimit = %v; want 0.5", cfg.FetchRateLimit)
	}
	if !cfg.SchedulerAutostart || !cfg.ConsoleMenu {
		t.Errorf("SchedulerAutostart=%v ConsoleMenu=%v; want both true", cfg.SchedulerAutostart, cfg.ConsoleMenu)
	}
	if cfg.StoreDriver != "memory" || cfg.StoreMaxHistory != 24 {
		t.Errorf("store = %q %d", cfg.StoreDriver, cfg.StoreMaxHistory)
	}
	if cfg.MQTTBroker != "mosquitto" || cfg.MQTTPort != 1884 {
		t.Errorf("mqtt = %q %d", cfg.MQTTBroker, cfg.MQTTPort)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{"APP_ENV", "staging", "invalid APP_ENV"},
		{"LOG_LEVEL", "loud", "invalid LOG_LEVEL"},
		{"FETCH_TIMEOUT", "soon", "invalid FETCH_TIMEOUT"},
		{"FETCH_INTERVAL", "hourly", "invalid FETCH_INTERVAL"},
		{"FETCH_INTERVAL", "-1h", "invalid FETCH_INTERVAL"},
		{"FETCH_RATE_LIMIT", "fast", "invalid FETCH_RATE_LIMIT"},
		{"SCHEDULER_AUTOSTART", "maybe", "invalid SCHEDULER_AUTOSTART"},
		{"STORE_DRIVER", "postgres", "invalid STORE_DRIVER"},
		{"STORE_MAX_AGE", "forever", "invalid STORE_MAX_AGE"},
		{"MQTT_PORT", "mqtt", "invalid MQTT_PORT"},
		{"CONSOLE_MENU", "yes please", "invalid CONSOLE_MENU"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load: expected error for %s=%q", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load error = %q; want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" Info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		if err != nil {
			t.Fatalf("parseLogLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseLogLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
