package config

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Delivery modes.
const (
	DeliveryModePoll        = "poll"
	DeliveryModePreregister = "preregister"
	DeliveryModeBoth        = "both"
)

// Store backends.
const (
	StoreBackendMemory   = "memory"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
)

// Config holds all configuration for the easyremind host process.
// Values are loaded from environment variables; see printUsage() for the
// full list.
type Config struct {
	StoreBackend string `json:"store_backend"`
	RedisAddr    string `json:"redis_addr,omitempty"`
	DatabaseURL  string `json:"database_url,omitempty"`

	DeliveryMode string `json:"delivery_mode"`

	TickInterval    time.Duration `json:"-"`
	TickIntervalStr string        `json:"tick_interval"`

	ResyncInterval    time.Duration `json:"-"`
	ResyncIntervalStr string        `json:"resync_interval"`

	HorizonDays int `json:"horizon_days"`

	BridgeURL        string        `json:"bridge_url,omitempty"`
	BridgeSecret     string        `json:"bridge_secret,omitempty"`
	BridgeTimeout    time.Duration `json:"-"`
	BridgeTimeoutStr string        `json:"bridge_timeout"`

	// ActionURL is attached to notifications for the host to open on tap.
	ActionURL string `json:"action_url,omitempty"`

	HTTPAddr       string `json:"http_addr"`
	MetricsEnabled bool   `json:"metrics_enabled"`
	MetricsPath    string `json:"metrics_path"`

	EventBusBufferSize int `json:"eventbus_buffer_size"`

	// AlarmIDSpace and AlarmIDAttempts bound the planner's random alarm ID
	// allocation.
	AlarmIDSpace    int `json:"alarm_id_space"`
	AlarmIDAttempts int `json:"alarm_id_attempts"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	cfg := Config{
		StoreBackend:      os.Getenv("STORE_BACKEND"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DeliveryMode:      os.Getenv("DELIVERY_MODE"),
		TickIntervalStr:   os.Getenv("TICK_INTERVAL"),
		ResyncIntervalStr: os.Getenv("RESYNC_INTERVAL"),
		BridgeURL:         os.Getenv("BRIDGE_URL"),
		BridgeSecret:      os.Getenv("BRIDGE_SECRET"),
		BridgeTimeoutStr:  os.Getenv("BRIDGE_TIMEOUT"),
		ActionURL:         os.Getenv("ACTION_URL"),
		HTTPAddr:          os.Getenv("HTTP_ADDR"),
		MetricsEnabled:    os.Getenv("METRICS_ENABLED") == "true",
		MetricsPath:       os.Getenv("METRICS_PATH"),
	}

	if cfg.StoreBackend == "" {
		cfg.StoreBackend = StoreBackendMemory
	}
	if cfg.DeliveryMode == "" {
		cfg.DeliveryMode = DeliveryModePoll
	}
	if cfg.TickIntervalStr == "" {
		cfg.TickIntervalStr = "1m"
	}
	if cfg.ResyncIntervalStr == "" {
		cfg.ResyncIntervalStr = "15m"
	}
	if cfg.BridgeTimeoutStr == "" {
		cfg.BridgeTimeoutStr = "30s"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	cfg.HorizonDays = intEnv("HORIZON_DAYS", 7)
	cfg.EventBusBufferSize = intEnv("EVENTBUS_BUFFER_SIZE", 100)
	cfg.AlarmIDSpace = intEnv("ALARM_ID_SPACE", 9999)
	cfg.AlarmIDAttempts = intEnv("ALARM_ID_ATTEMPTS", 100)

	// Parse durations; validation is handled separately by Validate().
	if d, err := time.ParseDuration(cfg.TickIntervalStr); err == nil {
		cfg.TickInterval = d
	}
	if d, err := time.ParseDuration(cfg.ResyncIntervalStr); err == nil {
		cfg.ResyncInterval = d
	}
	if d, err := time.ParseDuration(cfg.BridgeTimeoutStr); err == nil {
		cfg.BridgeTimeout = d
	}

	return cfg
}

func intEnv(name string, fallback int) int {
	s := os.Getenv(name)
	if s == "" {
		return fallback
	}
	n, err := parseInt(s)
	if err != nil || n <= 0 {
		log.Printf("config: invalid %s %q (must be a positive integer), using default %d", name, s, fallback)
		return fallback
	}
	return n
}

// parseInt parses a string as a non-negative integer.
func parseInt(s string) (int, error) {
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, os.ErrInvalid
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

// MaskedJSON returns the configuration as JSON with secrets masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := struct {
		StoreBackend       string `json:"store_backend"`
		RedisAddr          string `json:"redis_addr,omitempty"`
		DatabaseURL        string `json:"database_url,omitempty"`
		DeliveryMode       string `json:"delivery_mode"`
		TickInterval       string `json:"tick_interval"`
		ResyncInterval     string `json:"resync_interval"`
		HorizonDays        int    `json:"horizon_days"`
		BridgeURL          string `json:"bridge_url,omitempty"`
		BridgeSecret       string `json:"bridge_secret,omitempty"`
		BridgeTimeout      string `json:"bridge_timeout"`
		ActionURL          string `json:"action_url,omitempty"`
		HTTPAddr           string `json:"http_addr"`
		MetricsEnabled     bool   `json:"metrics_enabled"`
		MetricsPath        string `json:"metrics_path"`
		EventBusBufferSize int    `json:"eventbus_buffer_size"`
		AlarmIDSpace       int    `json:"alarm_id_space"`
		AlarmIDAttempts    int    `json:"alarm_id_attempts"`
	}{
		StoreBackend:       c.StoreBackend,
		RedisAddr:          c.RedisAddr,
		DatabaseURL:        maskSecret(c.DatabaseURL),
		DeliveryMode:       c.DeliveryMode,
		TickInterval:       c.TickIntervalStr,
		ResyncInterval:     c.ResyncIntervalStr,
		HorizonDays:        c.HorizonDays,
		BridgeURL:          c.BridgeURL,
		BridgeSecret:       maskSecret(c.BridgeSecret),
		BridgeTimeout:      c.BridgeTimeoutStr,
		ActionURL:          c.ActionURL,
		HTTPAddr:           c.HTTPAddr,
		MetricsEnabled:     c.MetricsEnabled,
		MetricsPath:        c.MetricsPath,
		EventBusBufferSize: c.EventBusBufferSize,
		AlarmIDSpace:       c.AlarmIDSpace,
		AlarmIDAttempts:    c.AlarmIDAttempts,
	}
	return json.MarshalIndent(masked, "", "  ")
}

// maskSecret masks a secret value, preserving only the URI scheme if present.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if len(s) >= len(scheme) && s[:len(scheme)] == scheme {
			return scheme + "***"
		}
	}
	return "***"
}
