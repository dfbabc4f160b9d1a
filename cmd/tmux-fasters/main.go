// Command tmux-fasters prints the next prayer on one line for tmux status
// bars. It reads the same config file and FASTERS_* variables as fasters.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/generic19/FastersApp/internal/cli"
	"github.com/generic19/FastersApp/internal/config"
	"github.com/generic19/FastersApp/internal/log"
	"github.com/generic19/FastersApp/internal/method"
	"github.com/generic19/FastersApp/internal/prayer"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// options are the parsed command line.
type options struct {
	overrides   map[string]string
	format      string
	prayers     string
	at          string
	showVersion bool
	listMethods bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := pflag.NewFlagSet("tmux-fasters", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{overrides: make(map[string]string)}

	// Location and calculation flags map one to one onto config keys.
	keys := map[string]string{
		"latitude":       "Latitude in degrees, north positive",
		"longitude":      "Longitude in degrees, east positive",
		"city":           "City looked up in the locations file",
		"admin":          "State or province, to disambiguate --city",
		"country":        "Country, exact name (selects the automatic method)",
		"timezone":       "IANA timezone, e.g. Asia/Riyadh",
		"method":         "Calculation method: auto, custom, or a slug from --list-methods",
		"shafai":         "Use a shadow ratio of 2 for Asr (true/false)",
		"time-format":    "Time format: 12h or 24h",
		"cache-dir":      "Cache directory (default: ~/.cache/fasters/)",
		"locations-file": "YAML file of named places",
	}
	values := make(map[string]*string, len(keys))
	for name, usage := range keys {
		values[name] = fs.String(name, "", usage)
	}

	fs.StringVar(&opts.format, "format", prayer.FormatNameAndTime, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, countdown, or a custom Go template (e.g. '{{.Name}} in {{.Remaining}}'). Template fields: .Name, .ShortName, .Time, .Remaining, .Countdown, .Hours, .Minutes, .Tomorrow")
	fs.StringVar(&opts.prayers, "prayers", "", "Comma-separated list of prayers to track (default: all five)")
	fs.StringVar(&opts.at, "at", "", "Pretend the current time is this, e.g. '2024-03-01 14:00'")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&opts.listMethods, "list-methods", false, "Print supported calculation methods and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	for name, v := range values {
		if fs.Changed(name) {
			opts.overrides[configKey(name)] = *v
		}
	}
	return opts, nil
}

// configKey turns a flag name into its config key.
func configKey(flag string) string {
	out := []byte(flag)
	for i, c := range out {
		if c == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return cli.ExitError
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "tmux-fasters %s\n", version)
		return 0
	}
	if opts.listMethods {
		printMethods(stdout)
		return 0
	}

	if err := log.Init(false); err == nil {
		defer log.Sync()
	}

	cfg, err := loadConfig(opts.overrides)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return cli.ExitCode(err)
	}

	var names []string
	if opts.prayers != "" {
		cfgNames := config.Config{}
		if err := cfgNames.Set("prayers", opts.prayers); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return cli.ExitError
		}
		names = cfgNames.PrayerList()
	}

	err = cli.RunNext(ctx, *cfg, cli.NextOptions{Format: opts.format, Prayers: names, At: opts.at}, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", cli.Describe(err))
		return cli.ExitCode(err)
	}
	return 0
}

// loadConfig reads the effective config and applies flag overrides.
func loadConfig(overrides map[string]string) (*config.Config, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadEffective(path)
	if err != nil {
		return nil, err
	}
	for key, value := range overrides {
		if err := cfg.Set(key, value); err != nil {
			return nil, err
		}
	}
	merged := cfg.Merge(config.Defaults())
	return &merged, nil
}

// printMethods prints the supported calculation methods.
func printMethods(w io.Writer) {
	fmt.Fprintln(w, "Supported calculation methods:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-12s %s\n", "Slug", "Name")
	fmt.Fprintf(w, "  %-12s %s\n", "────", "────")
	for _, m := range method.All() {
		fmt.Fprintf(w, "  %-12s %s\n", m.Slug(), m.String())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use --method <slug> to select a calculation method.")
	fmt.Fprintln(w, "If omitted, the method is picked from --country (default "+strconv.Quote(method.Default.Slug())+").")
}
