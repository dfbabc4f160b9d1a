package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/generic19/FastersApp/internal/config"
	"github.com/generic19/FastersApp/internal/log"
)

// Global flags shared across all subcommands.
var (
	FlagCountry    string
	FlagAdmin      string
	FlagCity       string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagTimezone   string
	FlagMethod     string
	FlagShafai     bool
	FlagJSON       bool
	FlagCacheDir   string
	FlagTimeFormat string
	FlagAt         string
	FlagDebug      bool
)

// DotEnvFile is read into the environment before the config is loaded.
var DotEnvFile = ".env"

// loadedConfig holds the config loaded during PersistentPreRunE, with
// environment overrides applied.
var loadedConfig *config.Config

// NewRootCmd creates the root command for the fasters CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fasters",
		Short: "Prayer times and fasting countdown",
		Long: "Computes the five daily prayer times locally from the sun's position and\n" +
			"counts down to iftar while fasting and to Fajr in the evening.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.Init(FlagDebug); err != nil {
				return err
			}
			if err := config.LoadDotEnv(DotEnvFile); err != nil {
				log.Warnw("ignoring .env file", "error", err)
			}
			path, err := config.Path()
			if err != nil {
				return err
			}
			cfg, err := config.LoadEffective(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
		// Default action: show today's schedule and countdown.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCountry, "country", "", "Country, exact name (selects the automatic method)")
	pf.StringVar(&FlagAdmin, "admin", "", "State or province, to disambiguate --city")
	pf.StringVar(&FlagCity, "city", "", "City looked up in the locations file")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Latitude in degrees, north positive")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Longitude in degrees, east positive")
	pf.StringVar(&FlagTimezone, "timezone", "", "IANA timezone, e.g. Asia/Riyadh")
	pf.StringVar(&FlagMethod, "method", "", "Calculation method: auto, custom, or a slug from 'fasters methods'")
	pf.BoolVar(&FlagShafai, "shafai", false, "Use a shadow ratio of 2 for Asr")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/fasters/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagAt, "at", "", "Pretend the current time is this, e.g. '2024-03-01 14:00' or '21:30'")
	pf.BoolVar(&FlagDebug, "debug", false, "Verbose logging to stderr")

	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("fasters %s\n", version)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > environment > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) config.Config {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}
	cfg = cfg.Merge(config.Defaults())

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(flags, root, "country") {
		cfg.Country = FlagCountry
	}
	if flagWasSet(flags, root, "admin") {
		cfg.Admin = FlagAdmin
	}
	if flagWasSet(flags, root, "city") {
		cfg.City = FlagCity
	}
	if flagWasSet(flags, root, "latitude") {
		cfg.Latitude = FlagLatitude
	}
	if flagWasSet(flags, root, "longitude") {
		cfg.Longitude = FlagLongitude
	}
	if flagWasSet(flags, root, "timezone") {
		cfg.Timezone = FlagTimezone
	}
	if flagWasSet(flags, root, "method") {
		cfg.Method = FlagMethod
	}
	if flagWasSet(flags, root, "shafai") {
		cfg.Shafai = strconv.FormatBool(FlagShafai)
	}
	if flagWasSet(flags, root, "cache-dir") {
		cfg.CacheDir = FlagCacheDir
	}
	if flagWasSet(flags, root, "time-format") {
		cfg.TimeFormat = FlagTimeFormat
	}

	return cfg
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
