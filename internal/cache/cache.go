package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/generic19/FastersApp/internal/api"
	"github.com/generic19/FastersApp/internal/geo"
)

const (
	responseCacheFile = "aladhan_%s.json" // keyed by hash
	geoCacheFile      = "geo_%s.json"
	geoTTL            = 24 * time.Hour
)

// Cache provides file-based caching for geolocation results and Al Adhan
// responses used by the comparison command.
type Cache struct {
	dir string
	now func() time.Time
}

// ResponseCacheEntry stores one day's API response along with the request
// parameters for validation.
type ResponseCacheEntry struct {
	Date    string      `json:"date"` // YYYY-MM-DD
	Method  int         `json:"method"`
	School  int         `json:"school"`
	Timings api.Timings   `json:"timings"`
	Hijri   api.HijriDate `json:"hijri"`
	Meta    api.Meta      `json:"meta"`
}

// GeoCacheEntry stores a cached geolocation result with a timestamp.
type GeoCacheEntry struct {
	Key      string       `json:"key"`
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// New creates a Cache rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/fasters/.
func New(dir string) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "fasters")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// hashKey builds a short deterministic file-name-safe hash.
func hashKey(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8]) // 16 hex chars is plenty for uniqueness
}

func responseKey(date string, lat, lon float64, method, school int) string {
	return hashKey(fmt.Sprintf("%s|%.6f|%.6f|%d|%d", date, lat, lon, method, school))
}

// LoadResponse attempts to read a cached API response for the given parameters.
// Returns nil if the cache is missing or stale (wrong date).
func (c *Cache) LoadResponse(date time.Time, lat, lon float64, method, school int) *ResponseCacheEntry {
	dateStr := date.Format("2006-01-02")
	path := filepath.Join(c.dir, fmt.Sprintf(responseCacheFile, responseKey(dateStr, lat, lon, method, school)))

	var entry ResponseCacheEntry
	if !readJSON(path, &entry) {
		return nil
	}

	if entry.Date != dateStr || entry.Method != method || entry.School != school {
		return nil
	}

	return &entry
}

// SaveResponse writes an API response to the cache.
func (c *Cache) SaveResponse(date time.Time, lat, lon float64, method, school int, resp *api.Response) error {
	dateStr := date.Format("2006-01-02")
	path := filepath.Join(c.dir, fmt.Sprintf(responseCacheFile, responseKey(dateStr, lat, lon, method, school)))

	entry := ResponseCacheEntry{
		Date:    dateStr,
		Method:  method,
		School:  school,
		Timings: resp.Data.Timings,
		Hijri:   resp.Data.Date.Hijri,
		Meta:    resp.Data.Meta,
	}

	if err := writeJSON(path, entry); err != nil {
		return fmt.Errorf("failed to write response cache: %w", err)
	}
	return nil
}

// LoadGeo attempts to read a cached location for key.
// Returns nil if the cache is missing or older than the TTL (24 hours).
func (c *Cache) LoadGeo(key string) *geo.Location {
	path := filepath.Join(c.dir, fmt.Sprintf(geoCacheFile, hashKey(key)))

	var entry GeoCacheEntry
	if !readJSON(path, &entry) {
		return nil
	}

	if entry.Key != key || c.now().Sub(entry.CachedAt) > geoTTL {
		return nil
	}

	return &entry.Location
}

// SaveGeo writes a location to the cache under key.
func (c *Cache) SaveGeo(key string, loc *geo.Location) error {
	path := filepath.Join(c.dir, fmt.Sprintf(geoCacheFile, hashKey(key)))

	entry := GeoCacheEntry{
		Key:      key,
		Location: *loc,
		CachedAt: c.now(),
	}

	if err := writeJSON(path, entry); err != nil {
		return fmt.Errorf("failed to write geo cache: %w", err)
	}
	return nil
}

// Clear removes every cache file.
func (c *Cache) Clear() error {
	for _, pattern := range []string{responseCacheFile, geoCacheFile} {
		matches, err := filepath.Glob(filepath.Join(c.dir, fmt.Sprintf(pattern, "*")))
		if err != nil {
			return err
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove %s: %w", m, err)
			}
		}
	}
	return nil
}

func readJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
