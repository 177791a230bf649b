package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [subject]",
	Short: "Start the study timer",
	Long: `Start the study timer for a subject. The timer keeps running between
invocations; finish it with 'stt stop'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}
	subject, err := subjectArg(cmd, args)
	if err != nil {
		return err
	}

	active, err := app.records.StartTimer(ctx, sess, subject)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Started timer for %q at %s\n",
		active.Subject, active.StartedAt.Format("15:04:05"))
	return nil
}
