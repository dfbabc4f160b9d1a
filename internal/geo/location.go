// Package geo resolves the user's place into coordinates for the timing
// engine. Places come from fixed configuration, a local YAML gazetteer or
// IP geolocation, combined with Chain and Cached.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a resolver has no answer for a query.
var ErrNotFound = errors.New("location not found")

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether c lies within the usual latitude/longitude ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// Location is a resolved place.
type Location struct {
	Coordinate `yaml:",inline"`
	City       string `json:"city" yaml:"city"`
	Admin      string `json:"admin,omitempty" yaml:"admin,omitempty"`
	Country    string `json:"country" yaml:"country"`
	Timezone   string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

// TimeLocation loads the IANA zone of l, falling back to fallback when the
// location carries none.
func (l *Location) TimeLocation(fallback *time.Location) (*time.Location, error) {
	if l.Timezone == "" {
		return fallback, nil
	}
	tz, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", l.Timezone, err)
	}
	return tz, nil
}

// Label renders "City, Admin, Country" skipping empty parts.
func (l *Location) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.Admin, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return l.Coordinate.String()
	}
	return strings.Join(parts, ", ")
}

// Query names a place. An empty query asks for the current location.
type Query struct {
	Country string
	Admin   string
	City    string
}

// Empty reports whether q names no place.
func (q Query) Empty() bool {
	return q.Country == "" && q.Admin == "" && q.City == ""
}

// Key is a stable identifier for q, used as a cache key.
func (q Query) Key() string {
	if q.Empty() {
		return "ip"
	}
	return strings.ToLower(q.Country + "|" + q.Admin + "|" + q.City)
}

// Resolver turns a query into a location.
type Resolver interface {
	Resolve(ctx context.Context, q Query) (*Location, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, q Query) (*Location, error)

func (f ResolverFunc) Resolve(ctx context.Context, q Query) (*Location, error) {
	return f(ctx, q)
}

// Static always resolves to the same location.
type Static struct {
	Location Location
}

func (s Static) Resolve(ctx context.Context, q Query) (*Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc := s.Location
	return &loc, nil
}
