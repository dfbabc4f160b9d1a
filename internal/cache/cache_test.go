package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/generic19/FastersApp/internal/api"
	"github.com/generic19/FastersApp/internal/geo"
)

func sampleAPIResponse() *api.Response {
	return &api.Response{
		Code:   200,
		Status: "OK",
		Data: api.Data{
			Timings: api.Timings{
				Fajr:    "05:23",
				Sunrise: "06:39",
				Dhuhr:   "12:33",
				Asr:     "15:55",
				Sunset:  "18:27",
				Maghrib: "18:27",
				Isha:    "19:57",
			},
			Date: api.DateInfo{
				Hijri: api.HijriDate{Day: "20", Month: api.HijriMonth{Number: 8, En: "Shaʿbān"}, Year: "1445"},
			},
			Meta: api.Meta{
				Latitude:  21.4225,
				Longitude: 39.8262,
				Timezone:  "Asia/Riyadh",
				Method:    api.MethodInfo{ID: 4, Name: "Umm Al-Qura University, Makkah"},
				School:    "STANDARD",
			},
		},
	}
}

func sampleLocation() *geo.Location {
	return &geo.Location{
		Coordinate: geo.Coordinate{Latitude: 21.4225, Longitude: 39.8262},
		City:       "Mecca",
		Country:    "Saudi Arabia",
		Timezone:   "Asia/Riyadh",
	}
}

// ---------------------------------------------------------------------------
// New
// ---------------------------------------------------------------------------

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir", "cache")
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New(%q) error: %v", dir, err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Errorf("directory %q was not created", dir)
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}
}

// ---------------------------------------------------------------------------
// SaveResponse / LoadResponse
// ---------------------------------------------------------------------------

func TestResponse_RoundTrip(t *testing.T) {
	c, _ := New(t.TempDir())

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := c.SaveResponse(date, 21.4225, 39.8262, 4, 0, sampleAPIResponse()); err != nil {
		t.Fatalf("SaveResponse error: %v", err)
	}

	entry := c.LoadResponse(date, 21.4225, 39.8262, 4, 0)
	if entry == nil {
		t.Fatal("LoadResponse returned nil after save")
	}
	if entry.Timings.Fajr != "05:23" {
		t.Errorf("Fajr = %q, want %q", entry.Timings.Fajr, "05:23")
	}
	if entry.Hijri.Month.Number != 8 || entry.Hijri.Day != "20" {
		t.Errorf("Hijri = %+v, want 20 of month 8", entry.Hijri)
	}
	if entry.Meta.Timezone != "Asia/Riyadh" {
		t.Errorf("Timezone = %q, want %q", entry.Meta.Timezone, "Asia/Riyadh")
	}
}

func TestResponse_Misses(t *testing.T) {
	c, _ := New(t.TempDir())

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_ = c.SaveResponse(date, 21.4225, 39.8262, 4, 0, sampleAPIResponse())

	tests := []struct {
		name     string
		date     time.Time
		lat, lon float64
		method   int
		school   int
	}{
		{"next day", date.AddDate(0, 0, 1), 21.4225, 39.8262, 4, 0},
		{"other method", date, 21.4225, 39.8262, 3, 0},
		{"other school", date, 21.4225, 39.8262, 4, 1},
		{"other place", date, 30.0444, 31.2357, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if entry := c.LoadResponse(tt.date, tt.lat, tt.lon, tt.method, tt.school); entry != nil {
				t.Error("expected cache miss, got entry")
			}
		})
	}
}

func TestResponse_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	c, _ := New(dir)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_ = c.SaveResponse(date, 1, 2, 4, 0, sampleAPIResponse())

	matches, _ := filepath.Glob(filepath.Join(dir, "aladhan_*.json"))
	if len(matches) != 1 {
		t.Fatalf("expected 1 cache file, got %d", len(matches))
	}
	os.WriteFile(matches[0], []byte("{not json"), 0o644)

	if entry := c.LoadResponse(date, 1, 2, 4, 0); entry != nil {
		t.Error("expected nil for corrupt cache file")
	}
}

// ---------------------------------------------------------------------------
// SaveGeo / LoadGeo
// ---------------------------------------------------------------------------

func TestGeo_RoundTrip(t *testing.T) {
	c, _ := New(t.TempDir())

	if err := c.SaveGeo("ip", sampleLocation()); err != nil {
		t.Fatalf("SaveGeo error: %v", err)
	}

	loc := c.LoadGeo("ip")
	if loc == nil {
		t.Fatal("LoadGeo returned nil after save")
	}
	if loc.City != "Mecca" || loc.Latitude != 21.4225 {
		t.Errorf("LoadGeo = %+v", loc)
	}
	if c.LoadGeo("saudi arabia||mecca") != nil {
		t.Error("different key should miss")
	}
}

func TestGeo_Expired(t *testing.T) {
	c, _ := New(t.TempDir())

	saved := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return saved }
	_ = c.SaveGeo("ip", sampleLocation())

	c.now = func() time.Time { return saved.Add(23 * time.Hour) }
	if c.LoadGeo("ip") == nil {
		t.Error("entry within TTL should hit")
	}

	c.now = func() time.Time { return saved.Add(25 * time.Hour) }
	if c.LoadGeo("ip") != nil {
		t.Error("entry older than TTL should miss")
	}
}

func TestCache_ImplementsGeoStore(t *testing.T) {
	var _ geo.Store = (*Cache)(nil)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	c, _ := New(dir)

	_ = c.SaveGeo("ip", sampleLocation())
	_ = c.SaveResponse(time.Now(), 1, 2, 4, 0, sampleAPIResponse())
	os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "keep.txt" {
		t.Errorf("unexpected files after Clear: %v", entries)
	}
}
