package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/study-time-tracker/internal/apperrors"
	"github.com/Tiliavir/study-time-tracker/internal/stopwatch"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

var stopDiscard bool

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running timer and save the session",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().BoolVar(&stopDiscard, "discard", false, "Stop without saving a record")
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}

	active, err := app.records.ActiveTimer(ctx, sess)
	if err != nil {
		return err
	}
	if active == nil {
		return fmt.Errorf("%w: no active timer to stop", apperrors.ErrInvalidInput)
	}

	now := app.clock.Now()
	elapsed := now.Sub(active.StartedAt)
	out := cmd.OutOrStdout()

	if stopDiscard {
		if err := app.records.ClearActiveTimer(ctx, sess); err != nil {
			return err
		}
		fmt.Fprintf(out, "Discarded timer for %q after %s.\n", active.Subject, formatElapsed(int64(elapsed.Seconds())))
		return nil
	}

	// Validation failures leave the timer running so nothing is lost.
	rec, err := stopwatch.RecordFrom(active.Subject, elapsed, now)
	if err != nil {
		return err
	}
	if _, err := app.records.Add(ctx, sess, rec); err != nil {
		return err
	}
	if err := app.records.ClearActiveTimer(ctx, sess); err != nil {
		app.logger.Warn("Record saved but timer not cleared", zap.Error(err))
		return err
	}

	fmt.Fprintf(out, "Stopped timer for %q. Elapsed: %s (saved %s)\n",
		active.Subject, formatElapsed(int64(elapsed.Seconds())), timecalc.FormatHours(rec.Hours))
	return nil
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
