package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/stopwatch"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

var timerCmd = &cobra.Command{
	Use:   "timer [subject]",
	Short: "Open the interactive stopwatch",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTimer,
}

func runTimer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}
	subject, err := subjectArg(cmd, args)
	if err != nil {
		return err
	}

	save := func(rec model.StudyRecord) error {
		_, err := app.records.Add(ctx, sess, rec)
		return err
	}
	saved, err := stopwatch.Run(subject, app.clock, save)
	if err != nil {
		return err
	}

	var total float64
	for _, r := range saved {
		total += r.Hours
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d session(s), %s in total.\n", len(saved), timecalc.FormatHours(total))
	return nil
}
