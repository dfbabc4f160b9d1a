package countdown

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/generic19/FastersApp/internal/astro"
	"github.com/generic19/FastersApp/internal/geo"
	"github.com/generic19/FastersApp/internal/hijri"
	"github.com/generic19/FastersApp/internal/log"
	"github.com/generic19/FastersApp/internal/prayer"
)

// Source produces countdown states.
type Source interface {
	Load(ctx context.Context) (*State, error)
}

// SettingsFunc returns the current calculation setting.
type SettingsFunc func() (prayer.MethodSetting, error)

// Loader resolves the place and setting, then computes a State for the
// clock's current instant. States are memoized until they expire.
type Loader struct {
	Resolver  geo.Resolver
	Query     geo.Query
	Settings  SettingsFunc
	Clock     Clock
	IsRamadan func(time.Time) bool
	// Zone is used when the resolved location carries no timezone.
	Zone *time.Location

	memo *gocache.Cache
}

// NewLoader returns a Loader with system defaults.
func NewLoader(r geo.Resolver, settings SettingsFunc) *Loader {
	return &Loader{
		Resolver:  r,
		Settings:  settings,
		Clock:     SystemClock{},
		IsRamadan: hijri.IsRamadan,
		Zone:      time.Local,
		memo:      gocache.New(gocache.NoExpiration, 0),
	}
}

// Day is one calendar day of timings at a place.
type Day struct {
	Date       time.Time
	Timings    prayer.DailyTimings
	Parameters prayer.Parameters
	IsRamadan  bool
}

// Prayers returns the day's timings as absolute times.
func (d Day) Prayers() []prayer.Prayer {
	return d.Timings.Prayers(d.Date)
}

// Place resolves the configured location and its zone.
func (l *Loader) Place(ctx context.Context) (*geo.Location, *time.Location, error) {
	if l.Resolver == nil {
		return nil, nil, ErrNoLocation
	}
	loc, err := l.Resolver.Resolve(ctx, l.Query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		if errors.Is(err, geo.ErrNotFound) {
			return nil, nil, ErrNoLocation
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrNoLocation, err)
	}
	if !loc.Valid() {
		return nil, nil, fmt.Errorf("%w: coordinate %s out of range", ErrNoLocation, loc.Coordinate)
	}

	fallback := l.Zone
	if fallback == nil {
		fallback = time.Local
	}
	tz, err := loc.TimeLocation(fallback)
	if err != nil {
		return nil, nil, err
	}
	return loc, tz, nil
}

// Now returns the clock's instant in the place's zone.
func (l *Loader) Now(ctx context.Context) (time.Time, error) {
	_, tz, err := l.Place(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return l.clock().Now().In(tz), nil
}

// Load implements Source.
func (l *Loader) Load(ctx context.Context) (*State, error) {
	loc, tz, err := l.Place(ctx)
	if err != nil {
		return nil, err
	}
	setting, err := l.setting()
	if err != nil {
		return nil, err
	}

	now := l.clock().Now().In(tz)
	isRamadan := l.isRamadan(now)

	params, err := prayer.Resolve(setting, loc.Country, isRamadan)
	if err != nil {
		return nil, err
	}
	key := memoKey(loc, params, isRamadan, tz)
	if l.memo != nil {
		if v, ok := l.memo.Get(key); ok {
			s := v.(*State)
			if !now.Before(s.ComputedAt) && !s.IsExpired(now) {
				log.Debugw("countdown memo hit", "key", key, "expiry", s.Expiry)
				return s, nil
			}
		}
	}

	coord := loc.Coordinate
	s, err := Load(Request{
		Now:        now,
		Coordinate: &coord,
		Country:    loc.Country,
		Method:     setting,
		IsRamadan:  isRamadan,
	})
	if err != nil {
		return nil, err
	}

	log.Debugw("countdown loaded",
		"place", loc.Label(),
		"next", s.NextPrayerName(),
		"expiry", s.Expiry,
		"params", s.Parameters.String(),
	)
	if l.memo != nil {
		l.memo.Set(key, s, s.Expiry.Sub(now))
	}
	return s, nil
}

// Daily computes the timings of the calendar day of date at the place.
// Timings are taken at local noon of that day.
func (l *Loader) Daily(ctx context.Context, date time.Time) (*Day, error) {
	loc, tz, err := l.Place(ctx)
	if err != nil {
		return nil, err
	}
	setting, err := l.setting()
	if err != nil {
		return nil, err
	}

	local := date.In(tz)
	noon := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, tz)
	isRamadan := l.isRamadan(noon)

	params, err := prayer.Resolve(setting, loc.Country, isRamadan)
	if err != nil {
		return nil, err
	}
	timings := prayer.Compute(params, astro.DaysSinceEpochAt(noon), astro.UTCOffsetHours(noon), loc.Longitude, loc.Latitude)

	return &Day{
		Date:       noon,
		Timings:    timings,
		Parameters: params,
		IsRamadan:  isRamadan,
	}, nil
}

// Invalidate drops memoized states.
func (l *Loader) Invalidate() {
	if l.memo != nil {
		l.memo.Flush()
	}
}

func (l *Loader) setting() (prayer.MethodSetting, error) {
	if l.Settings == nil {
		return prayer.Automatic{}, nil
	}
	return l.Settings()
}

func (l *Loader) clock() Clock {
	if l.Clock == nil {
		return SystemClock{}
	}
	return l.Clock
}

func (l *Loader) isRamadan(t time.Time) bool {
	if l.IsRamadan == nil {
		return false
	}
	return l.IsRamadan(t)
}

func memoKey(loc *geo.Location, params prayer.Parameters, isRamadan bool, tz *time.Location) string {
	return fmt.Sprintf("%s|%s|%t|%s", loc.Coordinate, params, isRamadan, tz)
}
