package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/generic19/FastersApp/internal/countdown"
	"github.com/generic19/FastersApp/internal/display"
	"github.com/generic19/FastersApp/internal/log"
	"github.com/generic19/FastersApp/internal/prayer"
)

var (
	flagWatchInterval time.Duration
	flagWatchCount    int
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show a live fasting countdown",
		Long: "Redraw the current interval, its progress and the countdown every second.\n" +
			"The state is recomputed when the interval ends. Send SIGHUP to recompute now.",
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&flagWatchInterval, "interval", time.Second, "Redraw period")
	cmd.Flags().IntVar(&flagWatchCount, "count", 0, "Stop after this many redraws (0 runs until interrupted)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	if flagWatchInterval <= 0 {
		return fmt.Errorf("invalid --interval %s: must be positive", flagWatchInterval)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := effectiveConfig(cmd)
	sess, err := newSession(ctx, cfg, FlagAt)
	if err != nil {
		return err
	}

	loaded := make(chan struct{}, 1)
	worker := countdown.NewWorker(sess.loader,
		countdown.WithClock(sess.clock),
		countdown.WithLogger(log.GetZapLogger()),
		countdown.WithOnUpdate(func(*countdown.State, error) {
			select {
			case loaded <- struct{}{}:
			default:
			}
		}),
	)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := cmd.OutOrStdout()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(gctx) })
	g.Go(func() error {
		// The worker only stops once the loop is done.
		defer cancel()
		return watchLoop(gctx, w, worker, sess, loaded, hup)
	})
	err = g.Wait()
	if display.Enabled() {
		fmt.Fprintln(w)
	}
	return err
}

// watchLoop redraws until ctx ends or the redraw budget is spent. It returns
// the load error when the very first load fails.
func watchLoop(ctx context.Context, w io.Writer, worker *countdown.Worker, sess *session, loaded <-chan struct{}, hup <-chan os.Signal) error {
	select {
	case <-ctx.Done():
		return nil
	case <-loaded:
	}
	if s, err := worker.Current(); s == nil && err != nil {
		return err
	}

	ticker := time.NewTicker(flagWatchInterval)
	defer ticker.Stop()

	renders := 0
	for {
		s, err := worker.Current()
		renderWatchLine(w, s, err, sess.now(), sess.layout)
		renders++
		if flagWatchCount > 0 && renders >= flagWatchCount {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			sess.loader.Invalidate()
			if err := worker.Reload(); err != nil {
				log.Warnw("reload skipped", "error", err)
			}
		case <-ticker.C:
		}
	}
}

// renderWatchLine draws one status line. On a terminal the line is redrawn
// in place.
func renderWatchLine(w io.Writer, s *countdown.State, err error, now time.Time, layout string) {
	prefix, suffix := "", "\n"
	if display.Enabled() {
		prefix, suffix = "\r\033[K", ""
	}

	if s == nil {
		fmt.Fprintf(w, "%s%s%s", prefix, display.Red(Describe(err)), suffix)
		return
	}

	phase, until := intervalLabel(s)
	progress := s.Progress(now)
	line := fmt.Sprintf("%s %s %s  %s in %s  next %s %s (%s)",
		display.Phase(fmt.Sprintf("%-8s", phase), s.Fasting()),
		display.ProgressBar(progress, barWidth),
		display.Percent(progress),
		until,
		display.Bold(s.CountdownDisplay(now).String()),
		s.NextPrayerName(),
		s.Expiry.Format(layout),
		prayer.FormatRemaining(s.TimeTillNextPrayer(now)),
	)
	if err != nil {
		line += " " + display.Gray("(stale)")
	}
	fmt.Fprintf(w, "%s%s%s", prefix, line, suffix)
}
