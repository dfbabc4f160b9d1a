package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/generic19/FastersApp/internal/method"
	"github.com/generic19/FastersApp/internal/prayer"
)

// MethodSetting builds the calculation setting described by the config.
// Malformed values yield prayer.ErrInvalidSettings.
func (c *Config) MethodSetting() (prayer.MethodSetting, error) {
	shafai, err := parseBool(c.Shafai)
	if err != nil {
		return nil, invalid("shafai", c.Shafai)
	}

	switch c.Method {
	case "", MethodAuto:
		return prayer.Automatic{}, nil
	case MethodCustom:
		return c.manualSetting(shafai)
	default:
		m, err := method.Parse(c.Method)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", prayer.ErrInvalidSettings, err)
		}
		return prayer.Fixed{Method: m, Shafai: shafai}, nil
	}
}

func (c *Config) manualSetting(shafai bool) (prayer.MethodSetting, error) {
	if c.FajrAngle == "" {
		return nil, fmt.Errorf("%w: custom method needs fajr_angle", prayer.ErrInvalidSettings)
	}
	fajr, err := strconv.ParseFloat(c.FajrAngle, 64)
	if err != nil {
		return nil, invalid("fajr_angle", c.FajrAngle)
	}

	m := prayer.Manual{FajrAngle: fajr, Shafai: shafai}

	switch {
	case c.IshaOffset != "":
		minutes, err := strconv.Atoi(c.IshaOffset)
		if err != nil {
			return nil, invalid("isha_offset", c.IshaOffset)
		}
		m.Isha = prayer.IshaOffset{Minutes: minutes}
	case c.IshaAngle != "":
		angle, err := strconv.ParseFloat(c.IshaAngle, 64)
		if err != nil {
			return nil, invalid("isha_angle", c.IshaAngle)
		}
		m.Isha = prayer.IshaAngle{Degrees: angle}
	default:
		return nil, fmt.Errorf("%w: custom method needs isha_angle or isha_offset", prayer.ErrInvalidSettings)
	}

	if c.RamadanIshaOffset != "" {
		minutes, err := strconv.Atoi(c.RamadanIshaOffset)
		if err != nil {
			return nil, invalid("ramadan_isha_offset", c.RamadanIshaOffset)
		}
		m.RamadanOffset = &minutes
	}

	return m, nil
}

// TimeLayout returns the Go time layout for TimeFormat.
func (c *Config) TimeLayout() string {
	if c.TimeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// Zone loads the configured IANA timezone, or returns fallback when unset.
func (c *Config) Zone(fallback *time.Location) (*time.Location, error) {
	if c.Timezone == "" {
		return fallback, nil
	}
	tz, err := loadZone(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return tz, nil
}

func loadZone(name string) (*time.Location, error) {
	return time.LoadLocation(name)
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func invalid(key, value string) error {
	return fmt.Errorf("%w: %s %q is not valid", prayer.ErrInvalidSettings, key, value)
}
