package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/generic19/FastersApp/internal/config"
	"github.com/generic19/FastersApp/internal/method"
)

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func TestConfig_SetAndShow(t *testing.T) {
	isolate(t)

	out, err := execute(t, "config", "set", "method", "umm-al-qura")
	require.NoError(t, err)
	assert.Equal(t, "Set method = umm-al-qura\n", out)

	_, err = execute(t, "config", "set", "country", "Saudi Arabia")
	require.NoError(t, err)

	out, err = execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "umm-al-qura (Umm Al-Qura University, Makkah)")
	assert.Contains(t, out, "Saudi Arabia")
	assert.Contains(t, out, "(not set)")

	path, err := config.Path()
	require.NoError(t, err)
	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "umm-al-qura", cfg.Method)
	assert.Equal(t, "Saudi Arabia", cfg.Country)
}

func TestConfig_SetInvalid(t *testing.T) {
	isolate(t)

	_, err := execute(t, "config", "set", "latitude", "120")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between -90 and 90")

	_, err = execute(t, "config", "set", "colour", "blue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")

	path, _ := config.Path()
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "a failed set must not create the file")
}

func TestConfig_ShowMarksEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("FASTERS_CITY", "Jeddah")

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Jeddah (from FASTERS_CITY)")
}

func TestConfig_SetIgnoresEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("FASTERS_CITY", "Jeddah")

	_, err := execute(t, "config", "set", "time_format", "12h")
	require.NoError(t, err)

	path, _ := config.Path()
	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "12h", cfg.TimeFormat)
	assert.Empty(t, cfg.City)
}

func TestConfig_Unset(t *testing.T) {
	isolate(t)

	_, err := execute(t, "config", "set", "latitude", "21.4225")
	require.NoError(t, err)

	out, err := execute(t, "config", "unset", "latitude")
	require.NoError(t, err)
	assert.Equal(t, "Unset latitude\n", out)

	path, _ := config.Path()
	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Latitude)
}

func TestConfig_ResetAndPath(t *testing.T) {
	isolate(t)

	out, err := execute(t, "config", "path")
	require.NoError(t, err)
	path, _ := config.Path()
	assert.Equal(t, path+"\n", out)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "fasters", "config.json"), path)

	_, err = execute(t, "config", "set", "city", "Mecca")
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	out, err = execute(t, "config", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "reset to defaults")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFormatMethodValue(t *testing.T) {
	assert.Equal(t, "auto (by country)", formatMethodValue("auto"))
	assert.Equal(t, "kuwait (Kuwait)", formatMethodValue("kuwait"))
	assert.Equal(t, "bogus", formatMethodValue("bogus"))
}

// ---------------------------------------------------------------------------
// methods
// ---------------------------------------------------------------------------

func TestMethods(t *testing.T) {
	isolate(t)

	out, err := execute(t, "methods")
	require.NoError(t, err)

	for _, m := range method.All() {
		assert.Contains(t, out, m.Slug())
		assert.Contains(t, out, m.String())
	}
	assert.Contains(t, out, "+90m (Ramadan +120m)")
	assert.Contains(t, out, "18.5°")
	assert.NotContains(t, out, "Other countries use")
}

func TestMethods_Countries(t *testing.T) {
	isolate(t)

	out, err := execute(t, "methods", "--countries")
	require.NoError(t, err)
	assert.Contains(t, out, "Saudi Arabia")
	assert.Contains(t, out, "Other countries use mwl.")
}

func TestIshaRule(t *testing.T) {
	assert.Equal(t, "17°", ishaRule(method.MuslimWorldLeague))
	assert.Equal(t, "+90m", ishaRule(method.Qatar))
	assert.Equal(t, "+90m (Ramadan +120m)", ishaRule(method.UmmAlQuraUniversityMakkah))
}
