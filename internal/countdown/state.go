// Package countdown maps "now" onto the fasting or non-fasting interval of a
// day and tracks the next prayer. A State is computed once and stays valid
// until its Expiry; callers reload after that.
package countdown

import (
	"errors"
	"fmt"
	"time"

	"github.com/generic19/FastersApp/internal/astro"
	"github.com/generic19/FastersApp/internal/geo"
	"github.com/generic19/FastersApp/internal/prayer"
)

// NextDayFajr is the NextPrayerIndex used once Isha has passed.
const NextDayFajr = 5

var (
	// ErrNoLocation is returned when no coordinate could be resolved.
	ErrNoLocation = errors.New("no location set")

	// ErrNoSolarEvent is returned when an interval boundary does not occur
	// at this latitude and date.
	ErrNoSolarEvent = prayer.ErrNoSolarEvent
)

// Request carries everything Load needs. Now must be in the place's zone.
type Request struct {
	Now        time.Time
	Coordinate *geo.Coordinate
	Country    string
	Method     prayer.MethodSetting
	IsRamadan  bool
}

// State is the result of one load.
type State struct {
	IntervalStart time.Time
	IntervalEnd   time.Time
	Expiry        time.Time
	ComputedAt    time.Time

	NextPrayerIndex int
	IsEvening       bool
	IsRamadan       bool

	// PrayerTimes holds today's five timings followed by tomorrow's Fajr.
	PrayerTimes [6]float64
	Parameters  prayer.Parameters
	Coordinate  geo.Coordinate
}

// Load computes the countdown state for req.
func Load(req Request) (*State, error) {
	if req.Coordinate == nil {
		return nil, ErrNoLocation
	}
	params, err := prayer.Resolve(req.Method, req.Country, req.IsRamadan)
	if err != nil {
		return nil, err
	}

	now := req.Now
	lat, lon := req.Coordinate.Latitude, req.Coordinate.Longitude
	days := astro.DaysSinceEpochAt(now)
	tz := astro.UTCOffsetHours(now)

	timings := prayer.Compute(params, days, tz, lon, lat)
	nextDayFajr := prayer.FajrOnly(params.FajrAngle, days+1, tz, lon, lat)
	prevDayMaghrib := prayer.MaghribOnly(days-1, tz, lon, lat)

	fajr, maghrib := timings[prayer.Fajr], timings[prayer.Maghrib]

	// Timings are compared as the whole-second instants they become, so the
	// chosen interval always ends after now.
	before := func(timing float64) bool {
		t, err := prayer.DatetimeFromTiming(now, timing, 0)
		return err == nil && now.Before(t)
	}
	reached := func(timing float64) bool {
		t, err := prayer.DatetimeFromTiming(now, timing, 0)
		return err == nil && !now.Before(t)
	}
	beforeFajr, beforeMaghrib := before(fajr), before(maghrib)

	s := &State{
		ComputedAt:      now,
		IsEvening:       beforeFajr || reached(maghrib),
		IsRamadan:       req.IsRamadan,
		NextPrayerIndex: NextDayFajr,
		Parameters:      params,
		Coordinate:      *req.Coordinate,
	}
	copy(s.PrayerTimes[:], timings[:])
	s.PrayerTimes[NextDayFajr] = nextDayFajr

	for i, t := range timings {
		if before(t) {
			s.NextPrayerIndex = i
			break
		}
	}

	var startTiming, endTiming float64
	var startOffset, endOffset int
	switch {
	case beforeFajr:
		startTiming, startOffset = prevDayMaghrib, -1
		endTiming = fajr
	case beforeMaghrib:
		startTiming = fajr
		endTiming = maghrib
	default:
		startTiming = maghrib
		endTiming, endOffset = nextDayFajr, 1
	}

	if s.IntervalStart, err = prayer.DatetimeFromTiming(now, startTiming, startOffset); err != nil {
		return nil, fmt.Errorf("interval start: %w", err)
	}
	if s.IntervalEnd, err = prayer.DatetimeFromTiming(now, endTiming, endOffset); err != nil {
		return nil, fmt.Errorf("interval end: %w", err)
	}

	if s.NextPrayerIndex == NextDayFajr {
		s.Expiry, err = prayer.DatetimeFromTiming(now, nextDayFajr, 1)
	} else {
		s.Expiry, err = prayer.DatetimeFromTiming(now, timings[s.NextPrayerIndex], 0)
	}
	if err != nil {
		return nil, fmt.Errorf("expiry: %w", err)
	}

	return s, nil
}

// Timings returns today's five timings.
func (s *State) Timings() prayer.DailyTimings {
	var d prayer.DailyTimings
	copy(d[:], s.PrayerTimes[:5])
	return d
}

// NextPrayerName names the prayer the countdown is heading to.
func (s *State) NextPrayerName() string {
	if s.NextPrayerIndex == NextDayFajr {
		return prayer.AllPrayerNames[prayer.Fajr]
	}
	return prayer.AllPrayerNames[s.NextPrayerIndex]
}

// Fasting reports whether the state lies between Fajr and Maghrib.
func (s *State) Fasting() bool {
	return !s.IsEvening
}

// IsExpired reports whether the state must be recomputed.
func (s *State) IsExpired(now time.Time) bool {
	return !now.Before(s.Expiry)
}

// TimeTillNextPrayer returns the time left until the next prayer.
func (s *State) TimeTillNextPrayer(now time.Time) time.Duration {
	return s.Expiry.Sub(now)
}

// TimeTillIntervalEnd returns the time left until the current interval ends,
// i.e. until iftar while fasting and until Fajr otherwise.
func (s *State) TimeTillIntervalEnd(now time.Time) time.Duration {
	return s.IntervalEnd.Sub(now)
}

// Progress returns how far now is through the current interval, 0 at its
// start and 1 at its end. It is not clamped.
func (s *State) Progress(now time.Time) float64 {
	total := s.IntervalEnd.Sub(s.IntervalStart)
	if total <= 0 {
		return 0
	}
	return float64(now.Sub(s.IntervalStart)) / float64(total)
}

// Display is a zero-padded hours/minutes/seconds countdown.
type Display struct {
	Hours   string
	Minutes string
	Seconds string
}

func (d Display) String() string {
	return d.Hours + ":" + d.Minutes + ":" + d.Seconds
}

// CountdownDisplay renders the time left in the current interval.
func (s *State) CountdownDisplay(now time.Time) Display {
	left := s.TimeTillIntervalEnd(now)
	if left < 0 {
		left = 0
	}
	secs := int(left / time.Second)
	return Display{
		Hours:   fmt.Sprintf("%02d", secs/3600),
		Minutes: fmt.Sprintf("%02d", secs/60%60),
		Seconds: fmt.Sprintf("%02d", secs%60),
	}
}

// FormattedTimings renders today's five timings with a time layout.
func (s *State) FormattedTimings(layout string) []string {
	out := make([]string, 0, 5)
	for _, t := range s.PrayerTimes[:5] {
		out = append(out, prayer.FormatTiming(t, layout))
	}
	return out
}

// Prayers returns today's timings as absolute times, followed by tomorrow's
// Fajr. Timings that do not occur are skipped.
func (s *State) Prayers() []prayer.Prayer {
	day := s.ComputedAt
	prayers := s.Timings().Prayers(day)
	if t, err := prayer.DatetimeFromTiming(day, s.PrayerTimes[NextDayFajr], 1); err == nil {
		prayers = append(prayers, prayer.Prayer{Name: prayer.AllPrayerNames[prayer.Fajr], Time: t})
	}
	return prayers
}
