package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/study-time-tracker/internal/apperrors"
	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/stats"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export study records and statistics to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, yaml, md")
}

// report is the json/yaml export document.
type report struct {
	User        string               `json:"user" yaml:"user"`
	GeneratedAt time.Time            `json:"generated_at" yaml:"generated_at"`
	Summary     stats.Summary        `json:"summary" yaml:"summary"`
	Daily       []stats.DayTotal     `json:"daily" yaml:"daily"`
	Subjects    []stats.SubjectTotal `json:"subjects" yaml:"subjects"`
	Records     []model.StudyRecord  `json:"records" yaml:"records"`
}

// buildReport aggregates only records with usable hours so NaN never
// reaches the totals; every record is still listed.
func buildReport(user string, records []model.StudyRecord, now time.Time, windowDays, maxSubjects int) report {
	usable := make([]model.StudyRecord, 0, len(records))
	for _, r := range records {
		if !math.IsNaN(r.Hours) && !math.IsInf(r.Hours, 0) {
			usable = append(usable, r)
		}
	}
	sorted := make([]model.StudyRecord, 0, len(records))
	for _, v := range stats.SortedView(records) {
		sorted = append(sorted, v.Record)
	}
	return report{
		User:        user,
		GeneratedAt: now,
		Summary:     stats.Summarize(usable, now, windowDays),
		Daily:       stats.DailySeries(usable, now, windowDays),
		Subjects:    stats.SubjectRollup(usable, maxSubjects),
		Records:     sorted,
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := app.session(ctx)
	if err != nil {
		return err
	}
	records, err := app.records.Records(ctx, sess)
	if err != nil {
		return err
	}
	if n := countInvalidHours(records); n > 0 {
		app.logger.Warn("Records with unreadable hours left out of totals", zap.Int("count", n))
	}

	rep := buildReport(sess.Username, records, app.clock.Now(), app.cfg.Stats.WindowDays, app.cfg.Stats.MaxSubjects)
	out := cmd.OutOrStdout()

	switch exportFormat {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("error encoding YAML: %w", err)
		}
		return enc.Close()
	case "md":
		printMarkdown(out, rep.Records)
	case "csv":
		printCSV(out, rep.Records)
	default:
		return fmt.Errorf("%w: unknown format %q (want csv, json, yaml or md)", apperrors.ErrInvalidInput, exportFormat)
	}
	return nil
}

func printCSV(out io.Writer, records []model.StudyRecord) {
	fmt.Fprintln(out, "date,subject,hours,notes,timestamp")
	for _, r := range records {
		fmt.Fprintf(out, "%s,%s,%s,%s,%s\n",
			csvEscape(r.Date),
			csvEscape(r.Subject),
			formatHoursField(r.Hours),
			csvEscape(r.Notes),
			csvEscape(r.Timestamp.Format(time.RFC3339)),
		)
	}
}

func printMarkdown(out io.Writer, records []model.StudyRecord) {
	fmt.Fprintln(out, "| Date | Subject | Hours | Notes |")
	fmt.Fprintln(out, "|------|---------|------:|-------|")
	for _, r := range records {
		fmt.Fprintf(out, "| %s | %s | %s | %s |\n",
			mdEscape(r.Date), mdEscape(r.Subject), formatHoursField(r.Hours), mdEscape(r.Notes))
	}
}

// formatHoursField prints hours without trailing zeros; unreadable hours
// print as an empty field.
func formatHoursField(h float64) string {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return ""
	}
	return fmt.Sprintf("%g", h)
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
