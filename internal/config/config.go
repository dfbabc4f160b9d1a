// Package config provides persistent configuration for the fasters CLI.
//
// Configuration is stored as JSON at ~/.config/fasters/config.json
// (XDG-compliant). Every key can be overridden with a FASTERS_<KEY>
// environment variable, and a .env file in the working directory is read
// first. The merge priority is: CLI flags > environment > config file >
// defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/generic19/FastersApp/internal/method"
	"github.com/generic19/FastersApp/internal/prayer"
)

const (
	configDirName  = "fasters"
	configFileName = "config.json"

	// EnvPrefix is prepended to upper-cased keys to form environment names.
	EnvPrefix = "FASTERS"
)

// Method values besides registry slugs.
const (
	MethodAuto   = "auto"
	MethodCustom = "custom"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"country", "admin", "city",
	"latitude", "longitude", "timezone",
	"method", "shafai",
	"fajr_angle", "isha_angle", "isha_offset", "ramadan_isha_offset",
	"time_format",
	"prayers",
	"cache_dir",
	"locations_file",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
//
// The custom method fields are kept as text and only parsed when the method
// setting is built, so a malformed override is reported as invalid settings
// instead of failing at load time.
type Config struct {
	Country           string  `json:"country,omitempty" mapstructure:"country"`
	Admin             string  `json:"admin,omitempty" mapstructure:"admin"`
	City              string  `json:"city,omitempty" mapstructure:"city"`
	Latitude          float64 `json:"latitude,omitempty" mapstructure:"latitude"`
	Longitude         float64 `json:"longitude,omitempty" mapstructure:"longitude"`
	Timezone          string  `json:"timezone,omitempty" mapstructure:"timezone"`
	Method            string  `json:"method,omitempty" mapstructure:"method"` // "auto", "custom" or a method slug
	Shafai            string  `json:"shafai,omitempty" mapstructure:"shafai"`
	FajrAngle         string  `json:"fajr_angle,omitempty" mapstructure:"fajr_angle"`
	IshaAngle         string  `json:"isha_angle,omitempty" mapstructure:"isha_angle"`
	IshaOffset        string  `json:"isha_offset,omitempty" mapstructure:"isha_offset"`
	RamadanIshaOffset string  `json:"ramadan_isha_offset,omitempty" mapstructure:"ramadan_isha_offset"`
	TimeFormat        string  `json:"time_format,omitempty" mapstructure:"time_format"` // "12h" or "24h"
	Prayers           string  `json:"prayers,omitempty" mapstructure:"prayers"`         // comma-separated list
	CacheDir          string  `json:"cache_dir,omitempty" mapstructure:"cache_dir"`
	LocationsFile     string  `json:"locations_file,omitempty" mapstructure:"locations_file"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Method:     MethodAuto,
		TimeFormat: "24h",
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

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
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

// LoadFrom reads the config from a specific file path, without environment
// overrides. This is what `config set` edits.
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

// LoadEffective reads the config file at path and applies FASTERS_*
// environment overrides on top.
func LoadEffective(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}

	for _, key := range ValidKeys {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", EnvName(key), err)
		}
	}

	var cfg Config
	for _, key := range ValidKeys {
		value := strings.TrimSpace(v.GetString(key))
		if value == "" {
			continue
		}
		if err := cfg.assign(key, value); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvName(key), err)
		}
	}
	return &cfg, nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
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
// It validates the key name and the value before storing it.
func (c *Config) Set(key, value string) error {
	if err := validate(key, value); err != nil {
		return err
	}
	return c.assign(key, value)
}

// Unset clears a key.
func (c *Config) Unset(key string) error {
	if !isValidKey(key) {
		return unknownKey(key)
	}
	if key == "latitude" {
		c.Latitude = 0
		return nil
	}
	if key == "longitude" {
		c.Longitude = 0
		return nil
	}
	return c.assign(key, "")
}

func validate(key, value string) error {
	switch key {
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: must be a number", value)
		}
		if v < -90 || v > 90 {
			return fmt.Errorf("invalid latitude %q: must be between -90 and 90", value)
		}
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: must be a number", value)
		}
		if v < -180 || v > 180 {
			return fmt.Errorf("invalid longitude %q: must be between -180 and 180", value)
		}
	case "method":
		if value == MethodAuto || value == MethodCustom {
			return nil
		}
		if _, err := method.Parse(value); err != nil {
			return fmt.Errorf("invalid method %q: use %q, %q or a slug from `fasters methods`", value, MethodAuto, MethodCustom)
		}
	case "shafai":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid shafai %q: must be true or false", value)
		}
	case "fajr_angle", "isha_angle":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be a number of degrees", key, value)
		}
		if v <= 0 || v >= 90 {
			return fmt.Errorf("invalid %s %q: must be between 0 and 90", key, value)
		}
	case "isha_offset", "ramadan_isha_offset":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be whole minutes", key, value)
		}
		if v < 0 || v > prayer.MaxIshaOffset {
			return fmt.Errorf("invalid %s %q: must be between 0 and %d minutes", key, value, prayer.MaxIshaOffset)
		}
	case "timezone":
		if _, err := loadZone(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
	case "prayers":
		for _, n := range strings.Split(value, ",") {
			if _, ok := prayer.LookupName(strings.TrimSpace(n)); !ok {
				return fmt.Errorf("invalid prayer name %q in prayers list", strings.TrimSpace(n))
			}
		}
	case "country", "admin", "city", "cache_dir", "locations_file":
	default:
		return unknownKey(key)
	}
	return nil
}

// assign stores value without range checks.
func (c *Config) assign(key, value string) error {
	switch key {
	case "country":
		c.Country = value
	case "admin":
		c.Admin = value
	case "city":
		c.City = value
	case "latitude", "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be a number", key, value)
		}
		if key == "latitude" {
			c.Latitude = v
		} else {
			c.Longitude = v
		}
	case "timezone":
		c.Timezone = value
	case "method":
		c.Method = strings.ToLower(value)
	case "shafai":
		c.Shafai = value
	case "fajr_angle":
		c.FajrAngle = value
	case "isha_angle":
		c.IshaAngle = value
	case "isha_offset":
		c.IshaOffset = value
	case "ramadan_isha_offset":
		c.RamadanIshaOffset = value
	case "time_format":
		c.TimeFormat = value
	case "prayers":
		c.Prayers = value
	case "cache_dir":
		c.CacheDir = value
	case "locations_file":
		c.LocationsFile = value
	default:
		return unknownKey(key)
	}
	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "country":
		return c.Country, nil
	case "admin":
		return c.Admin, nil
	case "city":
		return c.City, nil
	case "latitude":
		if c.Latitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Latitude, 'f', -1, 64), nil
	case "longitude":
		if c.Longitude == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Longitude, 'f', -1, 64), nil
	case "timezone":
		return c.Timezone, nil
	case "method":
		return c.Method, nil
	case "shafai":
		return c.Shafai, nil
	case "fajr_angle":
		return c.FajrAngle, nil
	case "isha_angle":
		return c.IshaAngle, nil
	case "isha_offset":
		return c.IshaOffset, nil
	case "ramadan_isha_offset":
		return c.RamadanIshaOffset, nil
	case "time_format":
		return c.TimeFormat, nil
	case "prayers":
		return c.Prayers, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "locations_file":
		return c.LocationsFile, nil
	default:
		return "", unknownKey(key)
	}
}

// Merge returns c with every empty field taken from base.
func (c Config) Merge(base Config) Config {
	for _, key := range ValidKeys {
		if v, _ := c.Get(key); v != "" {
			continue
		}
		switch key {
		case "latitude":
			c.Latitude = base.Latitude
		case "longitude":
			c.Longitude = base.Longitude
		default:
			v, _ := base.Get(key)
			_ = c.assign(key, v)
		}
	}
	return c
}

// HasCoordinates reports whether fixed coordinates are configured.
func (c *Config) HasCoordinates() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

// PrayerList returns the canonical names in Prayers, or nil when unset.
func (c *Config) PrayerList() []string {
	if c.Prayers == "" {
		return nil
	}
	var names []string
	for _, n := range strings.Split(c.Prayers, ",") {
		if name, ok := prayer.LookupName(strings.TrimSpace(n)); ok {
			names = append(names, name)
		}
	}
	return names
}

func isValidKey(key string) bool {
	for _, k := range ValidKeys {
		if k == key {
			return true
		}
	}
	return false
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
}
