package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/study-time-tracker/internal/apperrors"
	"github.com/Tiliavir/study-time-tracker/internal/render"
	"github.com/Tiliavir/study-time-tracker/internal/stats"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

var (
	listLimit int
	deleteYes bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List study records, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete the record shown at <index> in 'stt list'",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Show at most this many records (0 = all)")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}
	records, err := app.records.Records(ctx, sess)
	if err != nil {
		return err
	}

	view := stats.SortedView(records)
	if listLimit > 0 && len(view) > listLimit {
		view = view[:listLimit]
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Records(view))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: index must be a number, got %q", apperrors.ErrInvalidInput, args[0])
	}

	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}
	records, err := app.records.Records(ctx, sess)
	if err != nil {
		return err
	}
	view := stats.SortedView(records)
	if index < 0 || index >= len(view) {
		return fmt.Errorf("%w: no record at index %d", apperrors.ErrNotFound, index)
	}

	out := cmd.OutOrStdout()
	target := view[index].Record
	if !deleteYes {
		ok, err := confirm(out, fmt.Sprintf("Delete %s %s %s?",
			target.Date, target.Subject, timecalc.FormatHours(target.Hours)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Nothing deleted.")
			return nil
		}
	}

	removed, err := app.records.DeleteAt(ctx, sess, index)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %s record from %s.\n", removed.Subject, removed.Date)
	return nil
}
