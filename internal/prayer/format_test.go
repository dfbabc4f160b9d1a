package prayer

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meccaAsr is Asr in Mecca on 2024-03-01, seen from 13:40 local time.
func meccaAsr() (Prayer, time.Time) {
	zone := time.FixedZone("UTC+3", 3*3600)
	return Prayer{Name: "Asr", Time: time.Date(2024, 3, 1, 15, 55, 0, 0, zone)},
		time.Date(2024, 3, 1, 13, 40, 0, 0, zone)
}

// ---------------------------------------------------------------------------
// FormatOutput
// ---------------------------------------------------------------------------

func TestFormatOutput_NamedModes(t *testing.T) {
	p, now := meccaAsr()

	tests := map[string]string{
		FormatTimeRemaining:      "2h 15m",
		FormatNextPrayerTime:     "15:55",
		FormatNameAndTime:        "Asr 15:55",
		FormatNameAndRemaining:   "Asr 2h 15m",
		FormatShortNameAndTime:   "A 15:55",
		FormatShortNameAndRemain: "A 2h 15m",
		FormatFull:               "Asr 15:55 (2h 15m)",
		FormatCountdown:          "A 02:15:00",
		"no-such-mode":           "Asr 15:55",
	}
	for mode, want := range tests {
		t.Run(mode, func(t *testing.T) {
			assert.Equal(t, want, FormatOutput(p, now, mode, "15:04"))
		})
	}
}

func TestFormatOutput_EveryNamedModeIsATemplate(t *testing.T) {
	p, now := meccaAsr()
	for mode, tmpl := range builtinFormats {
		assert.Equal(t, FormatOutput(p, now, tmpl, "15:04"), FormatOutput(p, now, mode, "15:04"), mode)
	}
}

func TestFormatOutput_12Hour(t *testing.T) {
	p, now := meccaAsr()
	assert.Equal(t, "Asr 3:55 PM", FormatOutput(p, now, FormatNameAndTime, "3:04 PM"))
}

func TestFormatOutput_Templates(t *testing.T) {
	p, now := meccaAsr()

	tests := []struct {
		tmpl string
		want string
	}{
		{"{{.Name}} in {{.Remaining}}", "Asr in 2h 15m"},
		{"{{.ShortName}}@{{.Time}}", "A@15:55"},
		{"{{.Hours}}:{{printf \"%02d\" .Minutes}}", "2:15"},
		{"{{.Countdown}}", "02:15:00"},
		{"{{if .Tomorrow}}tomorrow{{else}}today{{end}}", "today"},
	}
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOutput(p, now, tt.tmpl, "15:04"))
		})
	}
}

func TestFormatOutput_BrokenTemplates(t *testing.T) {
	p, now := meccaAsr()
	for _, tmpl := range []string{"{{.Name", "{{.Sunrise}}"} {
		got := FormatOutput(p, now, tmpl, "15:04")
		assert.True(t, strings.HasPrefix(got, "template-err:"), "%q rendered %q", tmpl, got)
	}
}

// ---------------------------------------------------------------------------
// NewFormatData
// ---------------------------------------------------------------------------

func TestNewFormatData_TomorrowsFajr(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*3600)
	fajr := Prayer{Name: "Fajr", Time: time.Date(2024, 3, 2, 5, 21, 0, 0, zone)}
	now := time.Date(2024, 3, 1, 23, 0, 0, 0, zone)

	d := NewFormatData(fajr, now, "15:04")
	assert.True(t, d.Tomorrow)
	assert.Equal(t, "F", d.ShortName)
	assert.Equal(t, 6, d.Hours)
	assert.Equal(t, 21, d.Minutes)
	assert.Equal(t, "06:21:00", d.Countdown)
}

func TestNewFormatData_NowInAnotherZone(t *testing.T) {
	p, now := meccaAsr()
	d := NewFormatData(p, now.UTC(), "15:04")
	assert.False(t, d.Tomorrow)
	assert.Equal(t, "15:55", d.Time)
}

func TestNewFormatData_Passed(t *testing.T) {
	p, now := meccaAsr()
	d := NewFormatData(p, now.Add(3*time.Hour), "15:04")
	require.Zero(t, d.Hours)
	assert.Equal(t, "0m", d.Remaining)
	assert.Equal(t, "00:00:00", d.Countdown)
}

// ---------------------------------------------------------------------------
// FormatTiming / FormatClock
// ---------------------------------------------------------------------------

func TestFormatTiming(t *testing.T) {
	tests := []struct {
		name   string
		timing float64
		layout string
		want   string
	}{
		{"mecca fajr truncates seconds", 5.382397933715413, "15:04", "05:22"},
		{"12 hour", 18.447753799293984, "3:04 PM", "6:26 PM"},
		{"negative wraps", -1.5, "15:04", "22:30"},
		{"past midnight wraps", 25.25, "3:04 PM", "1:15 AM"},
		{"no event", math.NaN(), "15:04", NoTiming},
		{"infinite", math.Inf(-1), "15:04", NoTiming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTiming(tt.timing, tt.layout); got != tt.want {
				t.Errorf("FormatTiming(%v, %q) = %q, want %q", tt.timing, tt.layout, got, tt.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Minute, "00:00:00"},
		{time.Hour + 2*time.Minute + 3*time.Second + 900*time.Millisecond, "01:02:03"},
		{30 * time.Hour, "30:00:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.d); got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
