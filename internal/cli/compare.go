package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/generic19/FastersApp/internal/api"
	"github.com/generic19/FastersApp/internal/cache"
	"github.com/generic19/FastersApp/internal/countdown"
	"github.com/generic19/FastersApp/internal/display"
	"github.com/generic19/FastersApp/internal/geo"
	"github.com/generic19/FastersApp/internal/hijri"
	"github.com/generic19/FastersApp/internal/log"
	"github.com/generic19/FastersApp/internal/method"
	"github.com/generic19/FastersApp/internal/prayer"
)

var (
	flagCompareRefresh bool
	flagCompareAPIURL  string
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare local timings with the Al Adhan API",
		Long: "Fetch the same day from the public Al Adhan API and show the difference\n" +
			"to the locally computed timings, plus an independent NOAA sunset.",
		Args: cobra.NoArgs,
		RunE: runCompare,
	}

	cmd.Flags().BoolVar(&flagCompareRefresh, "refresh", false, "Ignore the cached API response")
	cmd.Flags().StringVar(&flagCompareAPIURL, "api-url", "", "Al Adhan API base URL")
	_ = cmd.Flags().MarkHidden("api-url")

	return cmd
}

// comparison is one row of the compare output.
type comparison struct {
	Name      string `json:"prayer"`
	Local     string `json:"local"`
	Reference string `json:"reference"`
	DiffMin   *int   `json:"diff_minutes,omitempty"`
}

type compareJSON struct {
	Location   todayJSONLocation `json:"location"`
	Date       string            `json:"date"`
	Method     string            `json:"method"`
	APIMethod  int               `json:"api_method"`
	Timings    []comparison      `json:"timings"`
	Sunset     comparison        `json:"reference_sunset"`
	Hijri      string            `json:"hijri"`
	APIHijri   string            `json:"api_hijri"`
	HijriMatch bool              `json:"hijri_match"`
}

func runCompare(cmd *cobra.Command, args []string) error {
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
	now, err := sess.loader.Now(ctx)
	if err != nil {
		return err
	}
	day, err := sess.loader.Daily(ctx, now)
	if err != nil {
		return err
	}

	setting, err := cfg.MethodSetting()
	if err != nil {
		return err
	}
	apiMethod, school := apiParameters(setting, place.Country)
	if apiMethod < 0 {
		log.Warnw("custom method has no Al Adhan equivalent, the API picks its default")
	}

	client := api.NewClient()
	if flagCompareAPIURL != "" {
		client.BaseURL = flagCompareAPIURL
	}
	req := api.Request{
		Date:      day.Date,
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
		Method:    apiMethod,
		School:    school,
		Timezone:  zoneName(tz),
	}
	ref, err := fetchReference(ctx, client, sess.cache, req, flagCompareRefresh)
	if err != nil {
		return err
	}

	out, err := buildComparison(day, ref, place, tz, sess.layout)
	if err != nil {
		return err
	}
	out.APIMethod = apiMethod

	if FlagJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	printComparison(cmd.OutOrStdout(), out, place)
	return nil
}

// apiParameters maps a method setting to the API's method and school
// parameters. A method of -1 leaves the choice to the API.
func apiParameters(setting prayer.MethodSetting, country string) (apiMethod, school int) {
	school = api.SchoolStandard
	switch s := setting.(type) {
	case prayer.Fixed:
		if s.Shafai {
			school = api.SchoolHanafi
		}
		return s.Method.AlAdhanID(), school
	case prayer.Manual:
		if s.Shafai {
			school = api.SchoolHanafi
		}
		return -1, school
	default:
		return method.ForCountry(country).AlAdhanID(), school
	}
}

// zoneName returns tz's IANA name, or "" when the API could not resolve it.
func zoneName(tz *time.Location) string {
	name := tz.String()
	if name == "Local" || name == "" {
		return ""
	}
	if _, err := time.LoadLocation(name); err != nil {
		return ""
	}
	return name
}

// fetchReference returns the API answer for req, from the file cache when
// possible.
func fetchReference(ctx context.Context, client *api.Client, c *cache.Cache, req api.Request, refresh bool) (*cache.ResponseCacheEntry, error) {
	if c != nil && !refresh {
		if entry := c.LoadResponse(req.Date, req.Latitude, req.Longitude, req.Method, req.School); entry != nil {
			log.Debugw("using cached Al Adhan response", "date", entry.Date)
			return entry, nil
		}
	}

	resp, err := client.FetchByCoordinates(ctx, req)
	if err != nil {
		return nil, err
	}
	if c != nil {
		if err := c.SaveResponse(req.Date, req.Latitude, req.Longitude, req.Method, req.School, resp); err != nil {
			log.Warnw("failed to cache Al Adhan response", "error", err)
		}
	}
	return &cache.ResponseCacheEntry{
		Date:    req.Date.Format("2006-01-02"),
		Method:  req.Method,
		School:  req.School,
		Timings: resp.Data.Timings,
		Hijri:   resp.Data.Date.Hijri,
		Meta:    resp.Data.Meta,
	}, nil
}

func buildComparison(day *countdown.Day, ref *cache.ResponseCacheEntry, place *geo.Location, tz *time.Location, layout string) (*compareJSON, error) {
	refPrayers, err := prayer.ParseTimings(ref.Timings, day.Date, tz)
	if err != nil {
		return nil, err
	}

	out := &compareJSON{
		Location: todayJSONLocation{
			City:      place.City,
			Country:   place.Country,
			Timezone:  tz.String(),
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
		},
		Date:   day.Date.Format("2006-01-02"),
		Method: day.Parameters.String(),
	}

	for i, name := range prayer.AllPrayerNames {
		local, err := prayer.DatetimeFromTiming(day.Date, day.Timings[i], 0)
		out.Timings = append(out.Timings, compareRow(name, local, err == nil, refPrayers[i].Time, layout))
	}

	maghrib, err := prayer.DatetimeFromTiming(day.Date, day.Timings[prayer.Index("Maghrib")], 0)
	sunset, sunErr := prayer.ReferenceSunset(day.Date, place.Latitude, place.Longitude)
	if sunErr != nil {
		out.Sunset = comparison{Name: "Sunset", Local: prayer.NoTiming, Reference: prayer.NoTiming}
		if err == nil {
			out.Sunset.Local = maghrib.Format(layout)
		}
	} else {
		out.Sunset = compareRow("Sunset", maghrib, err == nil, sunset, layout)
	}

	y, m, d := hijri.ToHijri(day.Date)
	out.Hijri = hijri.Format(day.Date)
	out.APIHijri = ref.Hijri.Format()
	if ry, rm, rd, err := ref.Hijri.Numbers(); err == nil {
		out.HijriMatch = ry == y && rm == m && rd == d
	}

	return out, nil
}

func compareRow(name string, local time.Time, ok bool, ref time.Time, layout string) comparison {
	row := comparison{Name: name, Local: prayer.NoTiming, Reference: ref.Format(layout)}
	if !ok {
		return row
	}
	row.Local = local.Format(layout)
	diff := int(math.Round(local.Sub(ref).Minutes()))
	row.DiffMin = &diff
	return row
}

func formatDiff(d *int) string {
	if d == nil {
		return ""
	}
	s := fmt.Sprintf("%+dm", *d)
	if *d == 0 {
		s = "0m"
	}
	if *d > 2 || *d < -2 {
		return display.Yellow(s)
	}
	return display.Green(s)
}

func printComparison(w io.Writer, out *compareJSON, place *geo.Location) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Local vs Al Adhan"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", place.Label())
	fmt.Fprintf(w, "  %s\n", out.Date)
	fmt.Fprintf(w, "  %s\n", display.Gray(out.Method))
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Prayer", "Local", "Al Adhan", "Diff"})
	for _, row := range out.Timings {
		tbl.AddRow([]string{row.Name, row.Local, row.Reference, formatDiff(row.DiffMin)})
	}
	tbl.AddRow([]string{"Sunset (NOAA)", out.Sunset.Local, out.Sunset.Reference, formatDiff(out.Sunset.DiffMin)})
	tbl.DimRow(tbl.Len() - 1)
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)

	hijriLine := fmt.Sprintf("  Hijri: %s", out.Hijri)
	if out.APIHijri != "" {
		mark := display.Green("match")
		if !out.HijriMatch {
			mark = display.Yellow("differs")
		}
		hijriLine += fmt.Sprintf("  (Al Adhan: %s, %s)", strings.TrimSpace(out.APIHijri), mark)
	}
	fmt.Fprintln(w, hijriLine)
	fmt.Fprintln(w)
}
