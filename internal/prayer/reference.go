package prayer

import (
	"fmt"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// ReferenceSunset computes sunset for the calendar date of day with the NOAA
// algorithm from astral. It is independent of the formulas above and serves
// as a cross-check for Maghrib. The result is in day's location.
func ReferenceSunset(day time.Time, latitude, longitude float64) (time.Time, error) {
	observer := astral.Observer{Latitude: latitude, Longitude: longitude}
	y, m, d := day.Date()

	sunset, err := astral.Sunset(observer, time.Date(y, m, d, 12, 0, 0, 0, time.UTC))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to calculate reference sunset: %w", err)
	}
	return sunset.In(day.Location()), nil
}

// ReferenceSunrise is the sunrise counterpart of ReferenceSunset.
func ReferenceSunrise(day time.Time, latitude, longitude float64) (time.Time, error) {
	observer := astral.Observer{Latitude: latitude, Longitude: longitude}
	y, m, d := day.Date()

	sunrise, err := astral.Sunrise(observer, time.Date(y, m, d, 12, 0, 0, 0, time.UTC))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to calculate reference sunrise: %w", err)
	}
	return sunrise.In(day.Location()), nil
}
