package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/generic19/FastersApp/internal/method"
	"github.com/generic19/FastersApp/internal/prayer"
)

// tempConfigPath returns a path to a config file inside a temp directory.
func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

// clearEnv unsets every FASTERS_* override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range ValidKeys {
		t.Setenv(EnvName(key), "")
		os.Unsetenv(EnvName(key))
	}
}

// --- Defaults ---

func TestDefaults(t *testing.T) {
	d := Defaults()

	if d.Method != MethodAuto {
		t.Errorf("Defaults().Method = %q, want %q", d.Method, MethodAuto)
	}
	if d.TimeFormat != "24h" {
		t.Errorf("Defaults().TimeFormat = %q, want %q", d.TimeFormat, "24h")
	}
	if d.City != "" || d.Country != "" || d.HasCoordinates() {
		t.Errorf("Defaults() should not name a place, got %+v", d)
	}
}

// --- Dir and Path with XDG ---

func TestDir_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	want := filepath.Join("/tmp/xdg-test", "fasters")
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestDir_FallbackToHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".config", "fasters")
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestPath_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	p, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}

	want := filepath.Join("/tmp/xdg-test", "fasters", "config.json")
	if p != want {
		t.Errorf("Path() = %q, want %q", p, want)
	}
}

// --- LoadFrom / SaveTo ---

func TestLoadFrom_NonExistentFile(t *testing.T) {
	cfg, err := LoadFrom("/no/such/file.json")
	if err != nil {
		t.Fatalf("LoadFrom non-existent should not error, got: %v", err)
	}
	if cfg.City != "" || cfg.Country != "" || cfg.Method != "" {
		t.Error("LoadFrom non-existent should return empty config")
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := tempConfigPath(t)
	if err := os.WriteFile(path, []byte("{bad json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom with invalid JSON should error")
	}
}

func TestSaveTo_CreatesDirectoryAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "config.json")

	cfg := &Config{City: "Mecca", Method: "umm-al-qura"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Error("saved file should end with a newline")
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("saved file has invalid JSON: %v", err)
	}
	if loaded.City != "Mecca" || loaded.Method != "umm-al-qura" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := tempConfigPath(t)

	original := &Config{
		Country:           "Saudi Arabia",
		Admin:             "Makkah",
		City:              "Mecca",
		Latitude:          21.4225,
		Longitude:         39.8262,
		Timezone:          "Asia/Riyadh",
		Method:            MethodCustom,
		Shafai:            "true",
		FajrAngle:         "18.5",
		IshaOffset:        "90",
		RamadanIshaOffset: "120",
		TimeFormat:        "12h",
		Prayers:           "Fajr,Maghrib",
		CacheDir:          "/tmp/cache",
		LocationsFile:     "/tmp/places.yaml",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if *loaded != *original {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *original)
	}
}

// --- LoadEffective ---

func TestLoadEffective_FileOnly(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)
	(&Config{City: "Cairo", Country: "Egypt", Latitude: 30.0444}).SaveTo(path)

	cfg, err := LoadEffective(path)
	if err != nil {
		t.Fatalf("LoadEffective error: %v", err)
	}
	if cfg.City != "Cairo" || cfg.Country != "Egypt" || cfg.Latitude != 30.0444 {
		t.Errorf("LoadEffective = %+v", cfg)
	}
}

func TestLoadEffective_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := tempConfigPath(t)
	(&Config{City: "Cairo", Country: "Egypt", Method: "egypt"}).SaveTo(path)

	t.Setenv("FASTERS_CITY", "Alexandria")
	t.Setenv("FASTERS_LATITUDE", "31.2001")
	t.Setenv("FASTERS_FAJR_ANGLE", "not-a-number")

	cfg, err := LoadEffective(path)
	if err != nil {
		t.Fatalf("LoadEffective error: %v", err)
	}
	if cfg.City != "Alexandria" {
		t.Errorf("City = %q, want env override", cfg.City)
	}
	if cfg.Country != "Egypt" || cfg.Method != "egypt" {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Latitude != 31.2001 {
		t.Errorf("Latitude = %v, want 31.2001", cfg.Latitude)
	}
	// Custom fields are carried as text; they fail later, as invalid settings.
	if cfg.FajrAngle != "not-a-number" {
		t.Errorf("FajrAngle = %q", cfg.FajrAngle)
	}
}

func TestLoadEffective_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("FASTERS_COUNTRY", "Qatar")

	cfg, err := LoadEffective(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadEffective error: %v", err)
	}
	if cfg.Country != "Qatar" {
		t.Errorf("Country = %q, want Qatar", cfg.Country)
	}
}

func TestLoadEffective_BadCoordinateEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FASTERS_LONGITUDE", "east")

	_, err := LoadEffective(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for non-numeric longitude")
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "FASTERS_DOTENV_TEST_VALUE"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env should not error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(path, []byte(key+"=from-dotenv\n"), 0o644)
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv error: %v", err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("%s = %q, want from-dotenv", key, got)
	}
}

// --- ResetAt ---

func TestResetAt(t *testing.T) {
	path := tempConfigPath(t)
	if err := (&Config{City: "Mecca"}).SaveTo(path); err != nil {
		t.Fatal(err)
	}

	if err := ResetAt(path); err != nil {
		t.Fatalf("ResetAt error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("ResetAt should have deleted the file")
	}
	if err := ResetAt(path); err != nil {
		t.Errorf("ResetAt on non-existent file should not error, got: %v", err)
	}
}

// --- Set ---

func TestSet_Validation(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"latitude", "21.4225", false},
		{"latitude", "-90", false},
		{"latitude", "91", true},
		{"latitude", "abc", true},
		{"longitude", "180", false},
		{"longitude", "-181", true},
		{"method", "auto", false},
		{"method", "custom", false},
		{"method", "umm-al-qura", false},
		{"method", "MWL", false},
		{"method", "jafari", true},
		{"method", "4", true},
		{"shafai", "true", false},
		{"shafai", "0", false},
		{"shafai", "maybe", true},
		{"fajr_angle", "18.5", false},
		{"fajr_angle", "0", true},
		{"fajr_angle", "x", true},
		{"isha_angle", "17", false},
		{"isha_angle", "95", true},
		{"isha_offset", "90", false},
		{"isha_offset", "-5", true},
		{"isha_offset", "1.5", true},
		{"isha_offset", "1440", false},
		{"isha_offset", "1441", true},
		{"ramadan_isha_offset", "120", false},
		{"ramadan_isha_offset", "1125899906842624", true},
		{"timezone", "Asia/Riyadh", false},
		{"timezone", "Mars/Olympus", true},
		{"time_format", "12h", false},
		{"time_format", "", true},
		{"prayers", "Fajr,Maghrib", false},
		{"prayers", "fajr, dhuhr", false},
		{"prayers", "Fajr,,Isha", true},
		{"prayers", "Tahajjud", true},
		{"city", "Mecca", false},
		{"cache_dir", "/tmp/c", false},
		{"locations_file", "/tmp/places.yaml", false},
		{"unknown_key", "value", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := &Config{}
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%s, %q) error = %v, wantErr = %v", tt.key, tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got, _ := cfg.Get(tt.key)
			if tt.key == "method" {
				return // stored lower-cased
			}
			if got != tt.value {
				t.Errorf("Get(%s) = %q after Set(%q)", tt.key, got, tt.value)
			}
		})
	}
}

func TestSet_MethodLowercased(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Set("method", "MWL"); err != nil {
		t.Fatal(err)
	}
	if cfg.Method != "mwl" {
		t.Errorf("Method = %q, want mwl", cfg.Method)
	}
}

func TestUnset(t *testing.T) {
	cfg := &Config{City: "Mecca", Latitude: 21.4, Method: "mwl"}
	for _, key := range []string{"city", "latitude", "method"} {
		if err := cfg.Unset(key); err != nil {
			t.Fatalf("Unset(%s) error: %v", key, err)
		}
	}
	if cfg.City != "" || cfg.Latitude != 0 || cfg.Method != "" {
		t.Errorf("Unset left values: %+v", cfg)
	}
	if err := cfg.Unset("nope"); err == nil {
		t.Error("Unset with unknown key should error")
	}
}

// --- Get ---

func TestGet_UnsetCoordinatesAreEmpty(t *testing.T) {
	cfg := &Config{}
	for _, key := range []string{"latitude", "longitude"} {
		got, err := cfg.Get(key)
		if err != nil || got != "" {
			t.Errorf("Get(%s) = %q, %v; want empty", key, got, err)
		}
	}
	if _, err := cfg.Get("nope"); err == nil {
		t.Error("Get with unknown key should error")
	}
}

func TestGet_AllKeysCovered(t *testing.T) {
	cfg := &Config{}
	for _, key := range ValidKeys {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error: %v", key, err)
		}
	}
}

// --- Merge ---

func TestMerge(t *testing.T) {
	base := Defaults()
	cfg := Config{City: "Mecca", Latitude: 21.4225}

	merged := cfg.Merge(base)
	if merged.City != "Mecca" || merged.Latitude != 21.4225 {
		t.Errorf("Merge lost values: %+v", merged)
	}
	if merged.Method != MethodAuto || merged.TimeFormat != "24h" {
		t.Errorf("Merge did not fill defaults: %+v", merged)
	}

	cfg.TimeFormat = "12h"
	if got := cfg.Merge(base).TimeFormat; got != "12h" {
		t.Errorf("Merge overrode TimeFormat = %q", got)
	}
}

func TestPrayerList(t *testing.T) {
	cfg := &Config{}
	if cfg.PrayerList() != nil {
		t.Error("empty Prayers should give nil list")
	}
	cfg.Prayers = "fajr, Dhuhr ,Isha"
	got := cfg.PrayerList()
	want := []string{"Fajr", "Duhr", "Isha"}
	if len(got) != len(want) {
		t.Fatalf("PrayerList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PrayerList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// --- MethodSetting ---

func TestMethodSetting(t *testing.T) {
	ramadan := 120

	tests := []struct {
		name string
		cfg  Config
		want prayer.MethodSetting
	}{
		{"empty is automatic", Config{}, prayer.Automatic{}},
		{"auto", Config{Method: "auto", FajrAngle: "ignored"}, prayer.Automatic{}},
		{"registry slug", Config{Method: "kuwait"}, prayer.Fixed{Method: method.Kuwait}},
		{"registry slug shafai", Config{Method: "isna", Shafai: "true"}, prayer.Fixed{Method: method.IslamicSocietyOfNorthAmerica, Shafai: true}},
		{
			"custom offset",
			Config{Method: "custom", FajrAngle: "18.5", IshaOffset: "90", RamadanIshaOffset: "120"},
			prayer.Manual{FajrAngle: 18.5, Isha: prayer.IshaOffset{Minutes: 90}, RamadanOffset: &ramadan},
		},
		{
			"custom angle",
			Config{Method: "custom", FajrAngle: "16", IshaAngle: "14", Shafai: "1"},
			prayer.Manual{FajrAngle: 16, Shafai: true, Isha: prayer.IshaAngle{Degrees: 14}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.MethodSetting()
			if err != nil {
				t.Fatalf("MethodSetting error: %v", err)
			}
			gm, gotManual := got.(prayer.Manual)
			wm, wantManual := tt.want.(prayer.Manual)
			if gotManual && wantManual {
				if gm.FajrAngle != wm.FajrAngle || gm.Shafai != wm.Shafai || gm.Isha != wm.Isha {
					t.Errorf("MethodSetting = %+v, want %+v", gm, wm)
				}
				if (gm.RamadanOffset == nil) != (wm.RamadanOffset == nil) ||
					(gm.RamadanOffset != nil && *gm.RamadanOffset != *wm.RamadanOffset) {
					t.Errorf("RamadanOffset = %v, want %v", gm.RamadanOffset, wm.RamadanOffset)
				}
				return
			}
			if got != tt.want {
				t.Errorf("MethodSetting = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestMethodSetting_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown slug", Config{Method: "jafari"}},
		{"bad shafai", Config{Method: "auto", Shafai: "perhaps"}},
		{"custom without fajr", Config{Method: "custom", IshaAngle: "17"}},
		{"custom bad fajr", Config{Method: "custom", FajrAngle: "x", IshaAngle: "17"}},
		{"custom without isha", Config{Method: "custom", FajrAngle: "18"}},
		{"custom bad offset", Config{Method: "custom", FajrAngle: "18", IshaOffset: "1h"}},
		{"custom bad ramadan", Config{Method: "custom", FajrAngle: "18", IshaOffset: "90", RamadanIshaOffset: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.MethodSetting()
			if !errors.Is(err, prayer.ErrInvalidSettings) {
				t.Errorf("MethodSetting error = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestTimeLayout(t *testing.T) {
	if got := (&Config{TimeFormat: "12h"}).TimeLayout(); got != "3:04 PM" {
		t.Errorf("12h layout = %q", got)
	}
	if got := (&Config{}).TimeLayout(); got != "15:04" {
		t.Errorf("default layout = %q", got)
	}
}
