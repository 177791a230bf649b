package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/study-time-tracker/internal/stats"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current timer status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}
	now := app.clock.Now()
	out := cmd.OutOrStdout()

	active, err := app.records.ActiveTimer(ctx, sess)
	if err != nil {
		return err
	}
	if active != nil {
		fmt.Fprintln(out, "Running:")
		fmt.Fprintf(out, "  Subject: %s\n", active.Subject)
		fmt.Fprintf(out, "  Since: %s\n", active.StartedAt.Local().Format("15:04"))
		fmt.Fprintf(out, "  Elapsed: %s\n", timecalc.FormatClock(now.Sub(active.StartedAt)))
		return nil
	}

	// Idle: show today's total.
	records, err := app.records.Records(ctx, sess)
	if err != nil {
		return err
	}
	today := stats.TotalHoursOn(records, timecalc.DateKey(now))
	fmt.Fprintln(out, "No active timer.")
	fmt.Fprintf(out, "Today: %s studied.\n", timecalc.FormatHours(today))
	return nil
}
