package prayer

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/generic19/FastersApp/internal/api"
	"github.com/generic19/FastersApp/internal/astro"
	"github.com/generic19/FastersApp/internal/method"
)

// Positions within DailyTimings.
const (
	Fajr = iota
	Duhr
	Asr
	Maghrib
	Isha
)

// ErrNoSolarEvent is returned when a timing does not exist on the given day,
// typically at high latitudes around the solstices.
var ErrNoSolarEvent = errors.New("no solar event at this latitude and date")

// Prayer represents a single prayer with its name and time.
type Prayer struct {
	Name string
	Time time.Time
}

// AllPrayerNames lists the five daily prayers in chronological order.
var AllPrayerNames = []string{"Fajr", "Duhr", "Asr", "Maghrib", "Isha"}

// ShortNames maps full prayer names to single-character abbreviations.
var ShortNames = map[string]string{
	"Fajr":    "F",
	"Duhr":    "D",
	"Asr":     "A",
	"Maghrib": "M",
	"Isha":    "I",
}

// DailyTimings holds Fajr, Duhr, Asr, Maghrib and Isha as decimal hours after
// local midnight. Values may fall outside [0, 24) and are NaN when the event
// does not occur.
type DailyTimings [5]float64

// Valid reports whether timing i exists.
func (d DailyTimings) Valid(i int) bool {
	return !astro.IsNoSolarEvent(d[i])
}

// IshaSpec selects how Isha is placed: IshaAngle or IshaOffset.
type IshaSpec interface {
	isIshaSpec()
}

// IshaAngle places Isha when the sun is Degrees below the horizon.
type IshaAngle struct {
	Degrees float64
}

// IshaOffset places Isha a fixed number of minutes after Maghrib.
type IshaOffset struct {
	Minutes int
}

func (IshaAngle) isIshaSpec()  {}
func (IshaOffset) isIshaSpec() {}

// Parameters are the resolved inputs of a daily computation.
type Parameters struct {
	FajrAngle float64
	Shafai    bool
	Isha      IshaSpec
}

// String renders the parameters compactly, e.g. "fajr 18.5°, isha +90m".
func (p Parameters) String() string {
	var isha string
	switch s := p.Isha.(type) {
	case IshaAngle:
		isha = fmt.Sprintf("isha %g°", s.Degrees)
	case IshaOffset:
		isha = fmt.Sprintf("isha +%dm", s.Minutes)
	default:
		isha = "isha ?"
	}
	asr := "standard"
	if p.Shafai {
		asr = "shafai"
	}
	return fmt.Sprintf("fajr %g°, %s, asr %s", p.FajrAngle, isha, asr)
}

// ParametersForMethod returns the registry parameters for m.
func ParametersForMethod(m method.Method, isRamadan, shafai bool) Parameters {
	p := Parameters{FajrAngle: method.FajrAngle(m), Shafai: shafai}
	if minutes, ok := method.IshaFixedOffset(m, isRamadan); ok {
		p.Isha = IshaOffset{Minutes: minutes}
	} else {
		angle, _ := method.IshaAngle(m)
		p.Isha = IshaAngle{Degrees: angle}
	}
	return p
}

// Compute returns the five timings for the day identified by daysSinceEpoch.
func Compute(p Parameters, daysSinceEpoch float64, utcOffsetHours int, longitude, latitude float64) DailyTimings {
	noon := astro.LocalSolarNoon(daysSinceEpoch, utcOffsetHours, longitude)

	fajr := noon - astro.NoonOffsetFromSunAngle(p.FajrAngle, daysSinceEpoch, latitude)
	asr := noon + astro.NoonOffsetFromShadowLength(shadowRatio(p.Shafai), daysSinceEpoch, latitude)
	maghrib := noon + astro.NoonOffsetFromSunAngle(astro.SunsetAngle, daysSinceEpoch, latitude)

	return DailyTimings{fajr, noon, asr, maghrib, isha(p.Isha, noon, maghrib, daysSinceEpoch, latitude)}
}

// ComputeForMethod is Compute with parameters taken from the registry.
func ComputeForMethod(m method.Method, daysSinceEpoch float64, utcOffsetHours int, longitude, latitude float64, isRamadan, shafai bool) DailyTimings {
	return Compute(ParametersForMethod(m, isRamadan, shafai), daysSinceEpoch, utcOffsetHours, longitude, latitude)
}

// FajrOnly returns just the Fajr timing.
func FajrOnly(fajrAngle, daysSinceEpoch float64, utcOffsetHours int, longitude, latitude float64) float64 {
	return DuhrOnly(daysSinceEpoch, utcOffsetHours, longitude) -
		astro.NoonOffsetFromSunAngle(fajrAngle, daysSinceEpoch, latitude)
}

// DuhrOnly returns just the Duhr timing, which is local solar noon.
func DuhrOnly(daysSinceEpoch float64, utcOffsetHours int, longitude float64) float64 {
	return astro.LocalSolarNoon(daysSinceEpoch, utcOffsetHours, longitude)
}

// AsrOnly returns just the Asr timing.
func AsrOnly(shafai bool, daysSinceEpoch float64, utcOffsetHours int, longitude, latitude float64) float64 {
	return DuhrOnly(daysSinceEpoch, utcOffsetHours, longitude) +
		astro.NoonOffsetFromShadowLength(shadowRatio(shafai), daysSinceEpoch, latitude)
}

// MaghribOnly returns just the Maghrib timing.
func MaghribOnly(daysSinceEpoch float64, utcOffsetHours int, longitude, latitude float64) float64 {
	return DuhrOnly(daysSinceEpoch, utcOffsetHours, longitude) +
		astro.NoonOffsetFromSunAngle(astro.SunsetAngle, daysSinceEpoch, latitude)
}

// IshaOnly returns just the Isha timing.
func IshaOnly(spec IshaSpec, daysSinceEpoch float64, utcOffsetHours int, longitude, latitude float64) float64 {
	noon := DuhrOnly(daysSinceEpoch, utcOffsetHours, longitude)
	return isha(spec, noon, MaghribOnly(daysSinceEpoch, utcOffsetHours, longitude, latitude), daysSinceEpoch, latitude)
}

func isha(spec IshaSpec, noon, maghrib, daysSinceEpoch, latitude float64) float64 {
	switch s := spec.(type) {
	case IshaOffset:
		return maghrib + float64(s.Minutes)/60
	case IshaAngle:
		return noon + astro.NoonOffsetFromSunAngle(s.Degrees, daysSinceEpoch, latitude)
	default:
		return math.NaN()
	}
}

func shadowRatio(shafai bool) float64 {
	if shafai {
		return 2
	}
	return 1
}

// DatetimeFromTiming places a decimal-hour timing on the calendar date of day,
// in day's location. The timing is first brought into [0, 24), shifting the
// date by the number of whole days removed, and daysOffset is then added on
// top. Seconds are truncated.
func DatetimeFromTiming(day time.Time, timing float64, daysOffset int) (time.Time, error) {
	if astro.IsNoSolarEvent(timing) {
		return time.Time{}, ErrNoSolarEvent
	}

	shift := int(math.Floor(timing / 24))
	timing -= float64(shift) * 24

	hour := int(timing)
	minute := int((timing - float64(hour)) * 60)
	second := int((timing - float64(hour) - float64(minute)/60) * 3600)

	y, m, d := day.Date()
	return time.Date(y, m, d+shift+daysOffset, hour, minute, second, 0, day.Location()), nil
}

// Prayers converts the timings of a day into absolute times. Timings that do
// not occur are skipped.
func (d DailyTimings) Prayers(day time.Time) []Prayer {
	prayers := make([]Prayer, 0, len(d))
	for i, name := range AllPrayerNames {
		t, err := DatetimeFromTiming(day, d[i], 0)
		if err != nil {
			continue
		}
		prayers = append(prayers, Prayer{Name: name, Time: t})
	}
	return prayers
}

// ParseTimings converts Al Adhan API timings into a slice of Prayer structs for
// the given date, in the order of AllPrayerNames.
func ParseTimings(timings api.Timings, date time.Time, loc *time.Location) ([]Prayer, error) {
	raw := []string{timings.Fajr, timings.Dhuhr, timings.Asr, timings.Maghrib, timings.Isha}

	prayers := make([]Prayer, 0, len(raw))
	for i, name := range AllPrayerNames {
		t, err := parseTimeStr(raw[i], date, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s (%q): %w", name, raw[i], err)
		}
		prayers = append(prayers, Prayer{Name: name, Time: t})
	}

	return prayers, nil
}

// NextPrayer finds the next upcoming prayer from the given slice, relative to now.
// If all prayers for today have passed, it returns nil (caller should compute tomorrow's Fajr).
func NextPrayer(prayers []Prayer, now time.Time) *Prayer {
	for i := range prayers {
		if prayers[i].Time.After(now) {
			return &prayers[i]
		}
	}
	return nil
}

// CurrentPrayer returns the most recent prayer at or before now, or nil before Fajr.
func CurrentPrayer(prayers []Prayer, now time.Time) *Prayer {
	var current *Prayer
	for i := range prayers {
		if prayers[i].Time.After(now) {
			break
		}
		current = &prayers[i]
	}
	return current
}

// TimeRemaining returns the duration until the given prayer time.
func TimeRemaining(prayer Prayer, now time.Time) time.Duration {
	return prayer.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// LookupName returns the canonical prayer name for name, ignoring case.
// "Dhuhr" and "Zuhr" are accepted for Duhr.
func LookupName(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "dhuhr", "zuhr":
		return "Duhr", true
	}
	for _, n := range AllPrayerNames {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// Index returns the DailyTimings position of a canonical prayer name.
func Index(name string) int {
	for i, n := range AllPrayerNames {
		if n == name {
			return i
		}
	}
	return -1
}

// parseTimeStr parses a time string like "15:02" or "15:02 (BST)" into a time.Time
// on the given date in the given location.
func parseTimeStr(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	// Strip timezone suffix like " (BST)" that the API sometimes appends.
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time format: %q", raw)
	}

	var hour, min int
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return time.Time{}, fmt.Errorf("invalid hour in %q: %w", raw, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &min); err != nil {
		return time.Time{}, fmt.Errorf("invalid minute in %q: %w", raw, err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, loc), nil
}
