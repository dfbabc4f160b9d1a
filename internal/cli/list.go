package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/generic19/FastersApp/internal/countdown"
	"github.com/generic19/FastersApp/internal/display"
	"github.com/generic19/FastersApp/internal/geo"
	"github.com/generic19/FastersApp/internal/hijri"
	"github.com/generic19/FastersApp/internal/prayer"
)

const maxListDays = 366

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days starting today (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, 7)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 30)
		},
	}
}

// parseDays reads a day count: a positive integer, "week" or "month".
func parseDays(raw string) (int, error) {
	switch strings.ToLower(raw) {
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxListDays {
		return 0, fmt.Errorf("invalid number of days: %q (must be 1-%d, 'week' or 'month')", raw, maxListDays)
	}
	return n, nil
}

// runList is the handler for the list subcommand.
func runList(cmd *cobra.Command, args []string, defaultDays int) error {
	days := defaultDays
	if len(args) > 0 {
		n, err := parseDays(args[0])
		if err != nil {
			return err
		}
		days = n
	}

	ctx := cmd.Context()
	cfg := effectiveConfig(cmd)
	sess, err := newSession(ctx, cfg, FlagAt)
	if err != nil {
		return err
	}

	place, _, err := sess.loader.Place(ctx)
	if err != nil {
		return err
	}
	list, err := loadDays(ctx, sess, days)
	if err != nil {
		return err
	}
	selected := selectedPrayers(cfg.PrayerList(), nil)

	if FlagJSON {
		return printListJSON(cmd.OutOrStdout(), list, place, selected, sess.layout)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Boldf("Prayer Times, %d Days", days))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", place.Label())
	fmt.Fprintf(w, "  %s\n", display.Gray(list[0].Parameters.String()))
	fmt.Fprintln(w)

	headers := append([]string{"Date", "Hijri"}, selected...)
	tbl := display.NewTable(headers)
	for i, day := range list {
		row := []string{day.Date.Format("Mon 02 Jan"), hijriShort(day)}
		for _, name := range selected {
			row = append(row, prayer.FormatTiming(day.Timings[prayer.Index(name)], sess.layout))
		}
		tbl.AddRow(row)
		if i == 0 {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	return nil
}

// loadDays computes n consecutive days starting with the clock's today.
func loadDays(ctx context.Context, sess *session, n int) ([]*countdown.Day, error) {
	now, err := sess.loader.Now(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*countdown.Day, 0, n)
	for i := 0; i < n; i++ {
		day, err := sess.loader.Daily(ctx, now.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, nil
}

func hijriShort(day *countdown.Day) string {
	_, m, d := hijri.ToHijri(day.Date)
	s := fmt.Sprintf("%d %s", d, hijri.MonthName(m))
	if day.IsRamadan {
		s += " *"
	}
	return s
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location todayJSONLocation `json:"location"`
	Method   string            `json:"method"`
	Days     []listJSONDay     `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri"`
	Ramadan bool              `json:"ramadan"`
	Timings map[string]string `json:"timings"`
}

func printListJSON(w io.Writer, list []*countdown.Day, place *geo.Location, selected []string, layout string) error {
	out := listJSONOutput{
		Location: todayJSONLocation{
			City:      place.City,
			Country:   place.Country,
			Timezone:  list[0].Date.Location().String(),
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
		},
		Method: list[0].Parameters.String(),
	}

	for _, day := range list {
		timings := make(map[string]string)
		for _, name := range selected {
			timings[strings.ToLower(name)] = prayer.FormatTiming(day.Timings[prayer.Index(name)], layout)
		}
		out.Days = append(out.Days, listJSONDay{
			Date:    day.Date.Format("2006-01-02"),
			Hijri:   hijri.Format(day.Date),
			Ramadan: day.IsRamadan,
			Timings: timings,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
