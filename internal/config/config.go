// Package config provides persistent configuration for the prayer-tracker CLI.
//
// Configuration is stored as JSON at ~/.config/prayer-tracker/config.json
// (XDG-compliant). The merge priority is: CLI flags > config file > defaults.
// Secrets are never written to this file; see LoadSecrets.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/prayer-tracker/internal/logging"
	"github.com/smokyabdulrahman/prayer-tracker/internal/notify"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/storage"
)

const (
	configDirName  = "prayer-tracker"
	configFileName = "config.json"
)

// DefaultPollInterval is how often the reminder scheduler polls.
const DefaultPollInterval = 10 * time.Second

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"latitude", "longitude",
	"timezone",
	"time_format",
	"storage", "storage_dsn",
	"cache_dir",
	"redis_addr",
	"notifiers",
	"twilio_to",
	"mqtt_broker", "mqtt_topic",
	"poll_interval",
	"suppress_completed",
	"log_level",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	Latitude          *float64 `json:"latitude,omitempty"`  // pointer so 0 is a valid coordinate
	Longitude         *float64 `json:"longitude,omitempty"` // pointer so 0 is a valid coordinate
	Timezone          string   `json:"timezone,omitempty"`  // IANA name
	TimeFormat        string   `json:"time_format,omitempty"`
	Storage           string   `json:"storage,omitempty"`
	StorageDSN        string   `json:"storage_dsn,omitempty"`
	CacheDir          string   `json:"cache_dir,omitempty"`
	RedisAddr         string   `json:"redis_addr,omitempty"`
	Notifiers         string   `json:"notifiers,omitempty"` // comma-separated list
	TwilioTo          string   `json:"twilio_to,omitempty"`
	MQTTBroker        string   `json:"mqtt_broker,omitempty"`
	MQTTTopic         string   `json:"mqtt_topic,omitempty"`
	PollInterval      string   `json:"poll_interval,omitempty"` // Go duration, e.g. "10s"
	SuppressCompleted *bool    `json:"suppress_completed,omitempty"`
	LogLevel          string   `json:"log_level,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	suppress := false
	return Config{
		TimeFormat:        "24h",
		Storage:           storage.BackendFile,
		Notifiers:         notify.SinkConsole,
		MQTTTopic:         notify.DefaultMQTTTopic,
		PollInterval:      DefaultPollInterval.String(),
		SuppressCompleted: &suppress,
		LogLevel:          logging.DefaultLevel,
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "latitude":
		v, err := parseDegrees(value, 90)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: %w", value, err)
		}
		c.Latitude = &v
	case "longitude":
		v, err := parseDegrees(value, 180)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: %w", value, err)
		}
		c.Longitude = &v
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
		c.Timezone = value
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "storage":
		if !slices.Contains(storage.Backends, value) {
			return fmt.Errorf("invalid storage %q: must be one of %s", value, strings.Join(storage.Backends, ", "))
		}
		c.Storage = value
	case "storage_dsn":
		c.StorageDSN = value
	case "cache_dir":
		c.CacheDir = value
	case "redis_addr":
		c.RedisAddr = value
	case "notifiers":
		names := splitList(value)
		for _, n := range names {
			if !slices.Contains(notify.Sinks, n) {
				return fmt.Errorf("invalid notifier %q in notifiers list; valid: %s", n, strings.Join(notify.Sinks, ", "))
			}
		}
		c.Notifiers = strings.Join(names, ",")
	case "twilio_to":
		c.TwilioTo = value
	case "mqtt_broker":
		c.MQTTBroker = value
	case "mqtt_topic":
		c.MQTTTopic = value
	case "poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid poll_interval %q: must be a duration like 10s", value)
		}
		if d < time.Second {
			return fmt.Errorf("invalid poll_interval %q: must be at least 1s", value)
		}
		c.PollInterval = value
	case "suppress_completed":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid suppress_completed %q: must be true or false", value)
		}
		c.SuppressCompleted = &v
	case "log_level":
		if _, err := logging.ParseLevel(value); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "latitude":
		return formatFloat(c.Latitude), nil
	case "longitude":
		return formatFloat(c.Longitude), nil
	case "timezone":
		return c.Timezone, nil
	case "time_format":
		return c.TimeFormat, nil
	case "storage":
		return c.Storage, nil
	case "storage_dsn":
		return c.StorageDSN, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "redis_addr":
		return c.RedisAddr, nil
	case "notifiers":
		return c.Notifiers, nil
	case "twilio_to":
		return c.TwilioTo, nil
	case "mqtt_broker":
		return c.MQTTBroker, nil
	case "mqtt_topic":
		return c.MQTTTopic, nil
	case "poll_interval":
		return c.PollInterval, nil
	case "suppress_completed":
		if c.SuppressCompleted == nil {
			return "", nil
		}
		return strconv.FormatBool(*c.SuppressCompleted), nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Coordinate returns the configured coordinate, or nil unless both
// latitude and longitude are set.
func (c *Config) Coordinate() *prayer.Coordinate {
	if c.Latitude == nil || c.Longitude == nil {
		return nil
	}
	return &prayer.Coordinate{Latitude: *c.Latitude, Longitude: *c.Longitude}
}

// NotifierList returns the configured sink names, or just the console sink.
func (c *Config) NotifierList() []string {
	if names := splitList(c.Notifiers); len(names) > 0 {
		return names
	}
	return []string{notify.SinkConsole}
}

// PollIntervalOrDefault returns the poll interval, falling back to
// DefaultPollInterval when unset or invalid.
func (c *Config) PollIntervalOrDefault() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d < time.Second {
		return DefaultPollInterval
	}
	return d
}

// SuppressCompletedOrDefault returns the suppress_completed value, falling back to the given default.
func (c *Config) SuppressCompletedOrDefault(def bool) bool {
	if c.SuppressCompleted != nil {
		return *c.SuppressCompleted
	}
	return def
}

// LoadLocation resolves the configured timezone. An empty timezone yields
// fallback, or time.Local when fallback is empty too.
func (c *Config) LoadLocation(fallback string) (*time.Location, error) {
	tz := c.Timezone
	if tz == "" {
		tz = fallback
	}
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

func parseDegrees(value string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a number")
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("must be between %v and %v", -limit, limit)
	}
	return v, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
