// Package hijri converts Gregorian dates to the tabular (arithmetic) Islamic
// calendar. The tabular calendar can differ from sighting-based calendars by
// a day at month boundaries.
package hijri

import (
	"fmt"
	"time"

	"github.com/soniakeys/meeus/v3/jm"
)

// Ramadan is the ninth month of the Hijri year.
const Ramadan = 9

// ToHijri returns the Hijri year, month and day for the calendar date of t in
// its own location. The time of day is ignored.
func ToHijri(t time.Time) (year, month, day int) {
	gy, gm, gd := t.Date()
	return jm.JulianToMoslem(jm.GregorianToJulian(gy, int(gm), gd))
}

// IsRamadan reports whether the date of t falls in Ramadan.
func IsRamadan(t time.Time) bool {
	_, month, _ := ToHijri(t)
	return month == Ramadan
}

// monthNames are plain ASCII so they line up in tables; jm.MMonth carries the
// diacritic romanization.
var monthNames = [...]string{
	"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani",
	"Jumada al-Ula", "Jumada al-Akhirah", "Rajab", "Shaban",
	"Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah",
}

// MonthName returns the transliterated name of Hijri month m (1-12).
func MonthName(m int) string {
	if m < 1 || m > len(monthNames) {
		return ""
	}
	return monthNames[m-1]
}

// Format renders the Hijri date of t as "20 Shaban 1445 AH".
func Format(t time.Time) string {
	y, m, d := ToHijri(t)
	return fmt.Sprintf("%d %s %d AH", d, MonthName(m), y)
}
