package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/generic19/FastersApp/internal/cache"
	"github.com/generic19/FastersApp/internal/config"
	"github.com/generic19/FastersApp/internal/countdown"
	"github.com/generic19/FastersApp/internal/geo"
	"github.com/generic19/FastersApp/internal/log"
)

// session wires one command invocation: place resolution, settings, clock.
type session struct {
	cfg    config.Config
	cache  *cache.Cache // nil when the cache directory is unusable
	clock  *countdown.OffsetClock
	loader *countdown.Loader
	layout string
}

// newSession builds the resolver chain and loader for cfg. at, when set,
// moves the clock to that instant in the place's timezone.
func newSession(ctx context.Context, cfg config.Config, at string) (*session, error) {
	s := &session{
		cfg:    cfg,
		clock:  countdown.NewOffsetClock(countdown.SystemClock{}),
		layout: cfg.TimeLayout(),
	}

	c, err := cache.New(cfg.CacheDir)
	if err != nil {
		log.Warnw("cache disabled", "error", err)
	} else {
		s.cache = c
	}

	resolver, err := s.resolver()
	if err != nil {
		return nil, err
	}

	zone, err := cfg.Zone(time.Local)
	if err != nil {
		return nil, err
	}

	s.loader = countdown.NewLoader(resolver, cfg.MethodSetting)
	if cfg.City != "" {
		s.loader.Query = geo.Query{Country: cfg.Country, Admin: cfg.Admin, City: cfg.City}
	}
	s.loader.Clock = s.clock
	s.loader.Zone = zone

	if at != "" {
		_, tz, err := s.loader.Place(ctx)
		if err != nil {
			return nil, err
		}
		t, err := parseAt(at, s.clock.Now().In(tz))
		if err != nil {
			return nil, err
		}
		s.clock.SetNow(t)
	}

	return s, nil
}

// resolver returns, in priority order: configured coordinates, the locations
// file, then IP detection backed by the file cache. Answers are memoized for
// the life of the process.
func (s *session) resolver() (geo.Resolver, error) {
	var chain geo.Chain

	if s.cfg.HasCoordinates() {
		chain = append(chain, geo.Static{Location: geo.Location{
			Coordinate: geo.Coordinate{Latitude: s.cfg.Latitude, Longitude: s.cfg.Longitude},
			City:       s.cfg.City,
			Admin:      s.cfg.Admin,
			Country:    s.cfg.Country,
			Timezone:   s.cfg.Timezone,
		}})
	}

	if s.cfg.LocationsFile != "" {
		g, err := geo.LoadGazetteer(s.cfg.LocationsFile)
		if err != nil {
			return nil, err
		}
		chain = append(chain, g)
	}

	var detector geo.Resolver = geo.NewIPDetector()
	if s.cache != nil {
		detector = geo.Cached{Resolver: detector, Store: s.cache}
	}
	chain = append(chain, detector)

	return geo.Cached{Resolver: chain, Store: newMemoryStore()}, nil
}

func (s *session) now() time.Time {
	return s.clock.Now()
}

// memoryStore keeps resolved places for one process run.
type memoryStore struct {
	c *gocache.Cache
}

func newMemoryStore() memoryStore {
	return memoryStore{c: gocache.New(gocache.NoExpiration, 0)}
}

func (m memoryStore) LoadGeo(key string) *geo.Location {
	if v, ok := m.c.Get(key); ok {
		loc := v.(geo.Location)
		return &loc
	}
	return nil
}

func (m memoryStore) SaveGeo(key string, loc *geo.Location) error {
	m.c.SetDefault(key, *loc)
	return nil
}

// atLayouts are accepted by --at, tried in order.
var atLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseAt reads an --at value. Times without a date fall on ref's date and
// values without an offset are taken in ref's location.
func parseAt(value string, ref time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	loc := ref.Location()

	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
	}
	for _, layout := range atLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --at value %q: use 'YYYY-MM-DD HH:MM', 'HH:MM' or RFC 3339", value)
}
