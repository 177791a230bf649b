package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/render"
	"github.com/Tiliavir/study-time-tracker/internal/stats"
)

var (
	chartDays     int
	chartSubjects int
	chartWidth    int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's, recent and total study time",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Chart study time per day and per subject",
	Args:  cobra.NoArgs,
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().IntVar(&chartDays, "days", 0, "Number of days to chart (default from config)")
	chartCmd.Flags().IntVar(&chartSubjects, "subjects", 0, "Number of subjects to chart (default from config)")
	chartCmd.Flags().IntVar(&chartWidth, "width", render.DefaultBarWidth, "Width of the longest bar")
}

// countInvalidHours counts records whose hours cannot be summed.
func countInvalidHours(records []model.StudyRecord) int {
	n := 0
	for _, r := range records {
		if math.IsNaN(r.Hours) || math.IsInf(r.Hours, 0) {
			n++
		}
	}
	return n
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}
	records, err := app.records.Records(ctx, sess)
	if err != nil {
		return err
	}

	window := app.cfg.Stats.WindowDays
	summary := stats.Summarize(records, app.clock.Now(), window)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Summary(summary, window))
	if n := countInvalidHours(records); n > 0 {
		fmt.Fprintln(out, render.Muted.Render(fmt.Sprintf(
			"%d record(s) have unreadable hours; totals including them show NaN.", n)))
	}
	return nil
}

func runChart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}
	records, err := app.records.Records(ctx, sess)
	if err != nil {
		return err
	}

	days := chartDays
	if days <= 0 {
		days = app.cfg.Stats.WindowDays
	}
	subjects := chartSubjects
	if subjects <= 0 {
		subjects = app.cfg.Stats.MaxSubjects
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.DailyChart(stats.DailySeries(records, app.clock.Now(), days), chartWidth))
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.SubjectChart(stats.SubjectRollup(records, subjects), chartWidth))
	return nil
}
