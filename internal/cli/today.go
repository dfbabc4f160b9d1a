package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/generic19/FastersApp/internal/countdown"
	"github.com/generic19/FastersApp/internal/display"
	"github.com/generic19/FastersApp/internal/geo"
	"github.com/generic19/FastersApp/internal/hijri"
	"github.com/generic19/FastersApp/internal/prayer"
)

const barWidth = 30

func runToday(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := effectiveConfig(cmd)

	sess, err := newSession(ctx, cfg, FlagAt)
	if err != nil {
		return err
	}

	place, tz, err := sess.loader.Place(ctx)
	if err != nil {
		return err
	}
	state, err := sess.loader.Load(ctx)
	if err != nil {
		return err
	}
	now := state.ComputedAt

	selected := selectedPrayers(cfg.PrayerList(), nil)

	if FlagJSON {
		return printTodayJSON(cmd.OutOrStdout(), state, place, tz, now, selected, sess.layout)
	}
	printTodayRich(cmd.OutOrStdout(), state, place, tz, now, selected, sess.layout)
	return nil
}

// selectedPrayers returns override, else configured, else all five names.
func selectedPrayers(configured, override []string) []string {
	if len(override) > 0 {
		return override
	}
	if len(configured) > 0 {
		return configured
	}
	return prayer.AllPrayerNames
}

// parsePrayerList reads a comma-separated list of prayer names.
func parsePrayerList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var names []string
	for _, n := range strings.Split(raw, ",") {
		name, ok := prayer.LookupName(strings.TrimSpace(n))
		if !ok {
			return nil, fmt.Errorf("unknown prayer %q; valid names: %s", n, strings.Join(prayer.AllPrayerNames, ", "))
		}
		names = append(names, name)
	}
	return names, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// intervalLabel names the running interval and the event it ends with.
func intervalLabel(s *countdown.State) (phase, until string) {
	if s.Fasting() {
		return "Fasting", "iftar"
	}
	return "Evening", "Fajr"
}

// printTodayRich renders the colored terminal output for today's schedule.
func printTodayRich(w io.Writer, s *countdown.State, place *geo.Location, tz *time.Location, now time.Time, selected []string, layout string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", place.Label())
	fmt.Fprintf(w, "  %s\n", tz)
	fmt.Fprintf(w, "  %s\n", now.Format("Mon 02 Jan 2006 15:04"))

	hijriStr := hijri.Format(now)
	if s.IsRamadan {
		hijriStr += "  " + display.Yellow("Ramadan")
	}
	fmt.Fprintf(w, "  %s\n", hijriStr)
	fmt.Fprintf(w, "  %s\n", display.Gray(s.Parameters.String()))
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Prayer", "Time"})
	for i, name := range prayer.AllPrayerNames {
		if !contains(selected, name) {
			continue
		}
		row := tbl.Len()
		tbl.AddRow([]string{name, prayer.FormatTiming(s.PrayerTimes[i], layout)})
		switch {
		case i == s.NextPrayerIndex:
			tbl.SetHighlightRow(row)
		case i < s.NextPrayerIndex:
			tbl.DimRow(row)
		}
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)

	phase, until := intervalLabel(s)
	progress := s.Progress(now)
	fmt.Fprintf(w, "  %s  %s %s\n",
		display.Phase(fmt.Sprintf("%-8s", phase), s.Fasting()),
		display.ProgressBar(progress, barWidth),
		display.Percent(progress),
	)
	fmt.Fprintf(w, "  %s in %s  (%s)\n", until, display.Bold(s.CountdownDisplay(now).String()), s.IntervalEnd.Format(layout))

	next := s.NextPrayerName()
	if s.NextPrayerIndex == countdown.NextDayFajr {
		next += " tomorrow"
	}
	fmt.Fprintf(w, "  Next: %s at %s, in %s\n",
		display.Accent(next), s.Expiry.Format(layout), prayer.FormatRemaining(s.TimeTillNextPrayer(now)))
	fmt.Fprintln(w)
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location todayJSONLocation `json:"location"`
	Date     todayJSONDate     `json:"date"`
	Method   string            `json:"method"`
	Timings  map[string]string `json:"timings"`
	Next     todayJSONNext     `json:"next"`
	Interval todayJSONInterval `json:"interval"`
}

type todayJSONLocation struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type todayJSONDate struct {
	Gregorian string `json:"gregorian"`
	Hijri     string `json:"hijri"`
	Ramadan   bool   `json:"ramadan"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
	Tomorrow  bool   `json:"tomorrow"`
}

type todayJSONInterval struct {
	Fasting   bool    `json:"fasting"`
	Start     string  `json:"start"`
	End       string  `json:"end"`
	Progress  float64 `json:"progress"`
	Countdown string  `json:"countdown"`
}

func printTodayJSON(w io.Writer, s *countdown.State, place *geo.Location, tz *time.Location, now time.Time, selected []string, layout string) error {
	timings := make(map[string]string)
	for i, name := range prayer.AllPrayerNames {
		if contains(selected, name) {
			timings[strings.ToLower(name)] = prayer.FormatTiming(s.PrayerTimes[i], layout)
		}
	}

	out := todayJSON{
		Location: todayJSONLocation{
			City:      place.City,
			Country:   place.Country,
			Timezone:  tz.String(),
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
		},
		Date: todayJSONDate{
			Gregorian: now.Format("02 Jan 2006"),
			Hijri:     hijri.Format(now),
			Ramadan:   s.IsRamadan,
		},
		Method:  s.Parameters.String(),
		Timings: timings,
		Next: todayJSONNext{
			Prayer:    strings.ToLower(s.NextPrayerName()),
			Time:      s.Expiry.Format(layout),
			Remaining: prayer.FormatRemaining(s.TimeTillNextPrayer(now)),
			Tomorrow:  s.NextPrayerIndex == countdown.NextDayFajr,
		},
		Interval: todayJSONInterval{
			Fasting:   s.Fasting(),
			Start:     s.IntervalStart.Format(time.RFC3339),
			End:       s.IntervalEnd.Format(time.RFC3339),
			Progress:  s.Progress(now),
			Countdown: s.CountdownDisplay(now).String(),
		},
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
