package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultStationURL is used when WEATHER_STATION_URL is not set.
const DefaultStationURL = "https://pastebin.com/raw/PMQueqDV"

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// StationURL is fetched when no custom URL is supplied.
	StationURL     string
	FetchTimeout   time.Duration
	FetchRateLimit float64 // fetches per second, 0 = unlimited
	FetchRateBurst int

	// FetchInterval controls how often the schedule fires.
	FetchInterval      time.Duration
	SchedulerAutostart bool

	StoreDriver     string // sqlite or memory
	SQLitePath      string
	DBMaxOpenConns  int
	StoreMaxHistory int           // memory store only (0 = unlimited)
	StoreMaxAge     time.Duration // memory store only (0 = unlimited)

	MQTTBroker   string // empty disables the MQTT sink
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string

	InfluxURL    string // empty disables the InfluxDB sink
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	ConsoleMenu bool
}

// Load reads configuration from environment with sensible defaults.
// Variables from a .env file in the working directory fill in anything the
// environment does not set.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.StationURL = getenvDefault("WEATHER_STATION_URL", DefaultStationURL)

	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.FetchInterval <= 0 {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL %q: must be positive", os.Getenv("FETCH_INTERVAL"))
	}
	if cfg.FetchRateLimit, err = getenvFloat("FETCH_RATE_LIMIT", 1); err != nil {
		return nil, err
	}
	cfg.FetchRateBurst = getenvInt("FETCH_RATE_BURST", 2)
	if cfg.SchedulerAutostart, err = getenvBool("SCHEDULER_AUTOSTART", false); err != nil {
		return nil, err
	}

	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", "sqlite"))
	switch cfg.StoreDriver {
	case "sqlite", "memory":
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (allowed: sqlite, memory)", cfg.StoreDriver)
	}
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "data/meteo.db")
	cfg.DBMaxOpenConns = getenvInt("DB_MAX_OPEN_CONNS", 1)
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 0)
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 0); err != nil {
		return nil, err
	}

	cfg.MQTTBroker = strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	portStr := getenvDefault("MQTT_PORT", "1883")
	if cfg.MQTTPort, err = strconv.Atoi(portStr); err != nil {
		return nil, fmt.Errorf("invalid MQTT_PORT %q: %w", portStr, err)
	}
	cfg.MQTTClientID = getenvDefault("MQTT_CLIENT_ID", "meteo-station")
	cfg.MQTTTopic = getenvDefault("MQTT_TOPIC", "meteo/readings")

	cfg.InfluxURL = strings.TrimSpace(os.Getenv("INFLUX_URL"))
	cfg.InfluxToken = os.Getenv("INFLUX_TOKEN")
	cfg.InfluxOrg = os.Getenv("INFLUX_ORG")
	cfg.InfluxBucket = os.Getenv("INFLUX_BUCKET")

	if cfg.ConsoleMenu, err = getenvBool("CONSOLE_MENU", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
