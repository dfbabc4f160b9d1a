package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/generic19/FastersApp/internal/countdown"
	"github.com/generic19/FastersApp/internal/display"
	"github.com/generic19/FastersApp/internal/geo"
	"github.com/generic19/FastersApp/internal/hijri"
	"github.com/generic19/FastersApp/internal/prayer"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long: "Query a specific prayer time for today, or across multiple days with --days.\n\n" +
			"Valid prayer names: " + strings.Join(prayer.AllPrayerNames, ", ") + " (Dhuhr is accepted for Duhr)",
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, ok := prayer.LookupName(args[0])
	if !ok {
		return fmt.Errorf("unknown prayer %q; valid names: %s", args[0], strings.Join(prayer.AllPrayerNames, ", "))
	}

	days := 1
	if flagQueryDays != "" {
		n, err := parseDays(flagQueryDays)
		if err != nil {
			return fmt.Errorf("invalid --days value %q: must be a positive integer, 'week', or 'month'", flagQueryDays)
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

	w := cmd.OutOrStdout()
	idx := prayer.Index(name)

	if days == 1 {
		day := list[0]
		timeStr := prayer.FormatTiming(day.Timings[idx], sess.layout)
		if FlagJSON {
			return writeJSON(w, queryJSONSingle{
				Prayer: strings.ToLower(name),
				Time:   timeStr,
				Date:   day.Date.Format("02 Jan 2006"),
				Hijri:  hijri.Format(day.Date),
			})
		}
		fmt.Fprintf(w, "%s %s\n", name, timeStr)
		return nil
	}

	if FlagJSON {
		return printQueryJSON(w, list, place, name, sess.layout)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Boldf("%s Times, %d Days", name, days))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", place.Label())
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Date", name})
	for i, day := range list {
		tbl.AddRow([]string{day.Date.Format("Mon 02 Jan"), prayer.FormatTiming(day.Timings[idx], sess.layout)})
		if i == 0 {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	return nil
}

type queryJSONSingle struct {
	Prayer string `json:"prayer"`
	Time   string `json:"time"`
	Date   string `json:"date"`
	Hijri  string `json:"hijri"`
}

type queryJSONMulti struct {
	Location todayJSONLocation `json:"location"`
	Prayer   string            `json:"prayer"`
	Days     []queryJSONDay    `json:"days"`
}

type queryJSONDay struct {
	Date  string `json:"date"`
	Hijri string `json:"hijri"`
	Time  string `json:"time"`
}

func printQueryJSON(w io.Writer, list []*countdown.Day, place *geo.Location, name, layout string) error {
	out := queryJSONMulti{
		Location: todayJSONLocation{
			City:      place.City,
			Country:   place.Country,
			Timezone:  list[0].Date.Location().String(),
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
		},
		Prayer: strings.ToLower(name),
	}

	idx := prayer.Index(name)
	for _, day := range list {
		out.Days = append(out.Days, queryJSONDay{
			Date:  day.Date.Format("02 Jan 2006"),
			Hijri: hijri.Format(day.Date),
			Time:  prayer.FormatTiming(day.Timings[idx], layout),
		})
	}

	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
