package geo

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Gazetteer resolves named places from a user-maintained YAML file:
//
//	places:
//	  - country: Saudi Arabia
//	    admin: Makkah
//	    city: Mecca
//	    lat: 21.4225
//	    lon: 39.8262
//	    timezone: Asia/Riyadh
type Gazetteer struct {
	Places []Location `yaml:"places"`
}

// LoadGazetteer reads a gazetteer file. A missing file yields an empty
// gazetteer.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Gazetteer{}, nil
		}
		return nil, fmt.Errorf("failed to read gazetteer: %w", err)
	}
	return ParseGazetteer(data)
}

// ParseGazetteer decodes gazetteer YAML and validates every entry.
func ParseGazetteer(data []byte) (*Gazetteer, error) {
	var g Gazetteer
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse gazetteer: %w", err)
	}
	for i, p := range g.Places {
		if p.City == "" || p.Country == "" {
			return nil, fmt.Errorf("gazetteer entry %d: city and country are required", i+1)
		}
		if !p.Coordinate.Valid() {
			return nil, fmt.Errorf("gazetteer entry %d (%s): coordinates out of range", i+1, p.City)
		}
	}
	return &g, nil
}

// Resolve finds the place matching the query's country and city exactly.
// The admin area only narrows the match when both sides name one.
func (g *Gazetteer) Resolve(ctx context.Context, q Query) (*Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.City == "" {
		return nil, ErrNotFound
	}
	for i := range g.Places {
		p := &g.Places[i]
		if p.City != q.City || p.Country != q.Country {
			continue
		}
		if q.Admin != "" && p.Admin != "" && !strings.EqualFold(p.Admin, q.Admin) {
			continue
		}
		loc := *p
		return &loc, nil
	}
	return nil, ErrNotFound
}
