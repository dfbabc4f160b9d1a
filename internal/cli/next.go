package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/generic19/FastersApp/internal/config"
	"github.com/generic19/FastersApp/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Print the next prayer on one line, suitable for status bars.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := effectiveConfig(cmd)
			override, err := parsePrayerList(flagPrayers)
			if err != nil {
				return err
			}
			return RunNext(cmd.Context(), cfg, NextOptions{
				Format:  flagFormat,
				Prayers: override,
				At:      FlagAt,
			}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, countdown, or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

// NextOptions selects what RunNext prints.
type NextOptions struct {
	Format  string
	Prayers []string // nil means the configured list
	At      string
}

// RunNext writes the next tracked prayer, formatted, without a newline.
func RunNext(ctx context.Context, cfg config.Config, opts NextOptions, w io.Writer) error {
	sess, err := newSession(ctx, cfg, opts.At)
	if err != nil {
		return err
	}

	state, err := sess.loader.Load(ctx)
	if err != nil {
		return err
	}
	now := state.ComputedAt
	selected := selectedPrayers(cfg.PrayerList(), opts.Prayers)

	var tracked []prayer.Prayer
	for _, p := range state.Prayers() {
		if contains(selected, p.Name) {
			tracked = append(tracked, p)
		}
	}
	next := prayer.NextPrayer(tracked, now)

	// Today's tracked prayers are over and Fajr is not tracked: take the
	// first tracked prayer of tomorrow.
	if next == nil {
		day, err := sess.loader.Daily(ctx, now.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		for _, p := range day.Prayers() {
			if contains(selected, p.Name) {
				next = &p
				break
			}
		}
	}
	if next == nil {
		return fmt.Errorf("could not determine next prayer")
	}

	fmt.Fprint(w, prayer.FormatOutput(*next, now, opts.Format, sess.layout))
	return nil
}
