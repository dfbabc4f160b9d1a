package prayer

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/generic19/FastersApp/internal/astro"
)

// Named display modes of the next command and the status line.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
	FormatCountdown          = "countdown"
)

// NoTiming is shown in place of a timing that does not occur.
const NoTiming = "--:--"

// FormatData is what a display format is rendered from. Custom formats see
// the same fields as the built-in ones.
type FormatData struct {
	Name      string // "Asr"
	ShortName string // "A"
	Time      string // "15:02" or "3:02 PM"
	Remaining string // "2h 15m"
	Countdown string // "02:15:00"
	Hours     int
	Minutes   int
	Tomorrow  bool // the prayer falls on the day after now
}

// builtinFormats maps each named mode to the template it stands for.
var builtinFormats = map[string]string{
	FormatTimeRemaining:      "{{.Remaining}}",
	FormatNextPrayerTime:     "{{.Time}}",
	FormatNameAndTime:        "{{.Name}} {{.Time}}",
	FormatNameAndRemaining:   "{{.Name}} {{.Remaining}}",
	FormatShortNameAndTime:   "{{.ShortName}} {{.Time}}",
	FormatShortNameAndRemain: "{{.ShortName}} {{.Remaining}}",
	FormatFull:               "{{.Name}} {{.Time}} ({{.Remaining}})",
	FormatCountdown:          "{{.ShortName}} {{.Countdown}}",
}

// NewFormatData collects the fields of p as seen at now. layout is a time
// layout such as "15:04" or "3:04 PM".
func NewFormatData(p Prayer, now time.Time, layout string) FormatData {
	d := max(TimeRemaining(p, now), 0)
	py, pm, pd := p.Time.Date()
	ny, nm, nd := now.In(p.Time.Location()).Date()
	return FormatData{
		Name:      p.Name,
		ShortName: ShortNames[p.Name],
		Time:      p.Time.Format(layout),
		Remaining: FormatRemaining(d),
		Countdown: FormatClock(d),
		Hours:     int(d.Hours()),
		Minutes:   int(d.Minutes()) % 60,
		Tomorrow:  time.Date(py, pm, pd, 0, 0, 0, 0, time.UTC).After(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)),
	}
}

// FormatOutput renders p with a named mode or, when mode contains "{{", a
// custom Go template over FormatData. Unknown names fall back to
// name-and-time.
//
// Example: "{{.Name}} in {{.Remaining}}" -> "Asr in 2h 15m"
func FormatOutput(p Prayer, now time.Time, mode string, layout string) string {
	tmpl := mode
	if !strings.Contains(mode, "{{") {
		var ok bool
		if tmpl, ok = builtinFormats[mode]; !ok {
			tmpl = builtinFormats[FormatNameAndTime]
		}
	}
	return render(tmpl, NewFormatData(p, now, layout))
}

// render executes tmpl. Errors are returned in-band so a status line shows
// what is wrong with the template.
func render(tmpl string, data FormatData) string {
	t, err := template.New("format").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}
	return sb.String()
}

// FormatTiming renders a decimal-hour timing with a time layout such as "15:04"
// or "3:04 PM". The timing is wrapped into a single day first.
func FormatTiming(timing float64, layout string) string {
	if astro.IsNoSolarEvent(timing) {
		return NoTiming
	}
	timing = math.Mod(timing, 24)
	if timing < 0 {
		timing += 24
	}
	secs := int(timing * 3600)
	t := time.Date(2000, 1, 1, secs/3600, secs/60%60, secs%60, 0, time.UTC)
	return t.Format(layout)
}

// FormatClock renders a duration as zero-padded "HH:MM:SS". Negative
// durations render as zero.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
