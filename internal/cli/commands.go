package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/generic19/FastersApp/internal/config"
	"github.com/generic19/FastersApp/internal/display"
	"github.com/generic19/FastersApp/internal/method"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n"+
			"  fasters config set latitude 21.4225\n"+
			"  fasters config set country \"Saudi Arabia\"\n"+
			"  fasters config set method umm-al-qura\n"+
			"  fasters config set time_format 12h\n"+
			"  fasters config set prayers Fajr,Maghrib",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unset <key>",
		Short: "Clear a config value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigUnset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		Args:  cobra.NoArgs,
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the effective configuration. Values that come from
// the environment rather than the file are marked.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	file, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	var effective config.Config
	if loadedConfig != nil {
		effective = *loadedConfig
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  Configuration (%s)\n\n", path)

	for _, key := range config.ValidKeys {
		val, _ := effective.Get(key)
		fromFile, _ := file.Get(key)

		shown := val
		switch {
		case val == "":
			shown = display.Gray("(not set)")
		case key == "method":
			shown = formatMethodValue(val)
		}
		if val != "" && val != fromFile {
			shown += display.Gray(" (from " + config.EnvName(key) + ")")
		}
		fmt.Fprintf(w, "  %-20s %s\n", key, shown)
	}
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	return editConfig(func(cfg *config.Config) error {
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	})
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	return editConfig(func(cfg *config.Config) error {
		if err := cfg.Unset(key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)
		return nil
	})
}

// editConfig applies fn to the config file, without environment overrides,
// and writes it back.
func editConfig(fn func(*config.Config) error) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return cfg.SaveTo(path)
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method name to a method slug.
func formatMethodValue(val string) string {
	switch val {
	case config.MethodAuto:
		return val + " (by country)"
	case config.MethodCustom:
		return val + " (fajr_angle, isha_angle or isha_offset)"
	}
	if m, err := method.Parse(val); err == nil {
		return fmt.Sprintf("%s (%s)", val, m)
	}
	return val
}

// ishaRule describes how a method places Isha.
func ishaRule(m method.Method) string {
	if angle, ok := method.IshaAngle(m); ok {
		return fmt.Sprintf("%g°", angle)
	}
	normal, _ := method.IshaFixedOffset(m, false)
	ramadan, _ := method.IshaFixedOffset(m, true)
	if normal == ramadan {
		return fmt.Sprintf("+%dm", normal)
	}
	return fmt.Sprintf("+%dm (Ramadan +%dm)", normal, ramadan)
}

var flagMethodsCountries bool

func newMethodsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the table of supported calculation methods and, with --countries, the default method per country.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "Supported calculation methods:")
			fmt.Fprintln(w)
			tbl := display.NewTable([]string{"Slug", "Name", "Fajr", "Isha", "Al Adhan"})
			for _, m := range method.All() {
				tbl.AddRow([]string{
					m.Slug(),
					m.String(),
					fmt.Sprintf("%g°", method.FajrAngle(m)),
					ishaRule(m),
					fmt.Sprintf("%d", m.AlAdhanID()),
				})
			}
			fmt.Fprint(w, tbl.Render())
			fmt.Fprintln(w)

			if flagMethodsCountries {
				countries := display.NewTable([]string{"Country", "Method"})
				for _, c := range method.Countries() {
					countries.AddRow([]string{c.Country, c.Method.Slug()})
				}
				fmt.Fprint(w, countries.Render())
				fmt.Fprintf(w, "  Other countries use %s.\n\n", method.Default.Slug())
			}

			fmt.Fprintln(w, "Use --method <slug> to select a method, or --method auto to pick one by country.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagMethodsCountries, "countries", false, "Also list the default method per country")

	return cmd
}
