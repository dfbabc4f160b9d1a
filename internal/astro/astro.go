// Package astro provides the solar-position primitives used to derive prayer
// timings: a continuous day count, the equation of time, solar declination,
// local solar noon, and hour-angle offsets from noon.
//
// All functions are pure. Invalid input is not validated; NaN propagates.
// Offsets that have no solution (the sun never reaches the requested angle at
// the given latitude and date) come back as NaN, see IsNoSolarEvent.
//
// The equation of time follows the Fourier fit published at
// https://equation-of-time.info/calculating-the-equation-of-time, valid for
// 2000-2050 and accurate to about +/- 3 seconds.
package astro

import (
	"math"
	"time"
)

// SunsetAngle is the apparent depression of the sun's centre at sunset,
// accounting for refraction and the solar disc radius.
const SunsetAngle = 0.833

// DaysSinceEpoch returns the fractional number of days since 2000-01-01 12:00
// UTC for a local wall-clock date and time at the given whole-hour UTC offset.
func DaysSinceEpoch(year, month, day, hour, minute, utcOffsetHours int) float64 {
	y := float64(year)
	m := float64(month)

	days := 367*y - 730531.5
	days -= math.Floor(7 * (y + math.Floor((m+9)/12)) / 4)
	days += math.Floor(275*m/9) + float64(day)
	days += (float64(hour) + float64(minute)/60 - float64(utcOffsetHours)) / 24

	return days
}

// DaysSinceEpochAt is DaysSinceEpoch for the wall clock of t in its own zone.
// Seconds are ignored.
func DaysSinceEpochAt(t time.Time) float64 {
	return DaysSinceEpoch(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), UTCOffsetHours(t))
}

// UTCOffsetHours returns the zone offset of t in whole hours, truncated toward
// zero. Half-hour zones lose their fraction (UTC+5:30 yields 5).
func UTCOffsetHours(t time.Time) int {
	_, offset := t.Zone()
	return offset / 3600
}

// EquationOfTime returns apparent minus mean solar time, in minutes.
func EquationOfTime(daysSinceEpoch float64) float64 {
	cycle := math.Floor(daysSinceEpoch / 365.25)

	theta := 0.0172024 * (daysSinceEpoch - 365.25*cycle)

	amp1 := 7.36303 - cycle*0.00009
	amp2 := 9.92465 - cycle*0.00014

	phi1 := 3.07892 - cycle*0.00019
	phi2 := -1.38995 + cycle*0.00013

	eot1 := amp1 * math.Sin(theta+phi1)
	eot2 := amp2 * math.Sin(2*(theta+phi2))
	eot3 := 0.31730 * math.Sin(3*(theta-0.94686))
	eot4 := 0.21922 * math.Sin(4*(theta-0.60716))

	return 0.00526 + eot1 + eot2 + eot3 + eot4
}

// SolarDeclination returns the declination of the sun in radians (Cooper, 1969).
func SolarDeclination(daysSinceEpoch float64) float64 {
	return -0.4092797 * math.Cos(2*math.Pi/365*(daysSinceEpoch+10))
}

// LocalSolarNoon returns the local clock time of solar noon in decimal hours.
func LocalSolarNoon(daysSinceEpoch float64, utcOffsetHours int, longitude float64) float64 {
	return 12 + float64(utcOffsetHours) - longitude/15 - EquationOfTime(daysSinceEpoch)/60
}

// NoonOffsetFromSunAngle returns how many hours before or after solar noon the
// sun sits angleDegrees below the horizon. The result is NaN when the sun never
// reaches that depression on the given day.
func NoonOffsetFromSunAngle(angleDegrees, daysSinceEpoch, latitudeDegrees float64) float64 {
	return hourAngle(-math.Sin(radians(angleDegrees)), daysSinceEpoch, latitudeDegrees)
}

// NoonOffsetFromShadowLength returns how many hours after solar noon an
// object's shadow reaches shadowRatio times its length plus its noon shadow.
// Ratio 1 is the standard Asr, ratio 2 the Hanafi-style later Asr.
func NoonOffsetFromShadowLength(shadowRatio, daysSinceEpoch, latitudeDegrees float64) float64 {
	declination := SolarDeclination(daysSinceEpoch)
	altitude := acot(shadowRatio + math.Tan(math.Abs(radians(latitudeDegrees)-declination)))

	return hourAngle(math.Sin(altitude), daysSinceEpoch, latitudeDegrees)
}

// IsNoSolarEvent reports whether v is not a usable timing.
func IsNoSolarEvent(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// hourAngle solves the sunrise equation for the given sine of the sun's
// altitude and converts the hour angle to hours.
func hourAngle(sinAltitude, daysSinceEpoch, latitudeDegrees float64) float64 {
	declination := SolarDeclination(daysSinceEpoch)
	latitude := radians(latitudeDegrees)

	numerator := sinAltitude - math.Sin(latitude)*math.Sin(declination)
	denominator := math.Cos(latitude) * math.Cos(declination)

	// math.Acos already yields NaN outside [-1, 1].
	return degrees(math.Acos(numerator/denominator)) / 15
}

func acot(x float64) float64 {
	return math.Pi/2 - math.Atan(x)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
