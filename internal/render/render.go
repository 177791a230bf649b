// Package render turns aggregator output into terminal text.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Tiliavir/study-time-tracker/internal/stats"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

// DefaultBarWidth is the width of the longest chart bar in cells.
const DefaultBarWidth = 30

// chartValue guards charts against NaN and infinite totals.
func chartValue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return 0
	}
	return h
}

// Summary renders the today / trailing window / total panel.
func Summary(s stats.Summary, windowDays int) string {
	box := func(label string, hours float64) string {
		return Pane.Render(Muted.Render(label) + "\n" + Hot.Render(timecalc.FormatHours(hours)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		box("Today", s.Today),
		box(fmt.Sprintf("Last %d days", windowDays), s.Week),
		box("Total", s.Total),
	)
}

// Records renders the history table. The # column is the index accepted by
// "stt delete".
func Records(view []stats.Indexed) string {
	if len(view) == 0 {
		return Muted.Render("No records yet.")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Surface1)).
		Headers("#", "Date", "Subject", "Hours", "Notes").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for i, v := range view {
		t.Row(
			fmt.Sprint(i),
			timecalc.ShortLabel(v.Record.Date),
			v.Record.Subject,
			fmt.Sprintf("%.1fh", v.Record.Hours),
			v.Record.Notes,
		)
	}
	return t.Render()
}

// DailyChart renders the daily series as horizontal bars, oldest first.
func DailyChart(series []stats.DayTotal, width int) string {
	if width <= 0 {
		width = DefaultBarWidth
	}
	var peak float64
	for _, d := range series {
		peak = math.Max(peak, chartValue(d.Hours))
	}

	var b strings.Builder
	b.WriteString(Title.Render("Study hours per day"))
	b.WriteString("\n")
	for _, d := range series {
		h := chartValue(d.Hours)
		fmt.Fprintf(&b, "%6s %s %s\n",
			timecalc.ShortLabel(d.Date),
			Bar.Render(bar(h, peak, width)),
			Muted.Render(fmt.Sprintf("%.2fh", h)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// SubjectChart renders the subject rollup with each subject's share of the
// charted hours.
func SubjectChart(rollup []stats.SubjectTotal, width int) string {
	if len(rollup) == 0 {
		return Muted.Render("No subjects yet.")
	}
	if width <= 0 {
		width = DefaultBarWidth
	}
	var peak, sum float64
	nameWidth := 0
	for _, s := range rollup {
		h := chartValue(s.Hours)
		peak = math.Max(peak, h)
		sum += h
		nameWidth = int(math.Max(float64(nameWidth), float64(lipgloss.Width(s.Subject))))
	}

	var b strings.Builder
	b.WriteString(Title.Render("Study hours by subject"))
	b.WriteString("\n")
	for i, s := range rollup {
		h := chartValue(s.Hours)
		share := 0.0
		if sum > 0 {
			share = h / sum * 100
		}
		color := SubjectColors[i%len(SubjectColors)]
		name := s.Subject + strings.Repeat(" ", nameWidth-lipgloss.Width(s.Subject))
		fmt.Fprintf(&b, "%s %s %s\n",
			name,
			lipgloss.NewStyle().Foreground(color).Render(bar(h, peak, width)),
			Muted.Render(fmt.Sprintf("%s (%.0f%%)", timecalc.FormatHours(h), share)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// bar returns a bar of up to width cells proportional to v/peak. Any
// positive value gets at least one cell.
func bar(v, peak float64, width int) string {
	if peak <= 0 || v <= 0 {
		return ""
	}
	n := int(math.Round(v / peak * float64(width)))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}
