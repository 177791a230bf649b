// Package stats derives summary totals and chart series from a study record
// collection. Every function is pure: callers pass the records and the
// reference time explicitly.
package stats

import (
	"sort"
	"time"

	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

const (
	// DefaultWindowDays is the length of the trailing window and daily series.
	DefaultWindowDays = 7
	// DefaultMaxSubjects caps the subject rollup.
	DefaultMaxSubjects = 6
)

// DayTotal is one point of a daily series.
type DayTotal struct {
	Date  string  `json:"date" yaml:"date"`
	Hours float64 `json:"hours" yaml:"hours"`
}

// SubjectTotal is one row of a subject rollup.
type SubjectTotal struct {
	Subject string  `json:"subject" yaml:"subject"`
	Hours   float64 `json:"hours" yaml:"hours"`
}

// Summary holds the headline totals.
type Summary struct {
	Today float64 `json:"today" yaml:"today"`
	Week  float64 `json:"week" yaml:"week"`
	Total float64 `json:"total" yaml:"total"`
}

// TotalHoursOn sums hours of records whose date equals date exactly.
func TotalHoursOn(records []model.StudyRecord, date string) float64 {
	var total float64
	for _, r := range records {
		if r.Date == date {
			total += r.Hours
		}
	}
	return total
}

// TotalHoursSince sums hours of records whose date, taken as local midnight
// in threshold's location, is not before threshold. Records with an
// unparseable date never match.
func TotalHoursSince(records []model.StudyRecord, threshold time.Time) float64 {
	var total float64
	for _, r := range records {
		d, err := timecalc.ParseDate(r.Date, threshold.Location())
		if err != nil {
			continue
		}
		if !d.Before(threshold) {
			total += r.Hours
		}
	}
	return total
}

// TotalHoursAll sums hours over every record.
func TotalHoursAll(records []model.StudyRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Hours
	}
	return total
}

// DailySeries returns one entry per calendar day for the days ending on
// now's day, oldest first. Days without records are zero.
func DailySeries(records []model.StudyRecord, now time.Time, days int) []DayTotal {
	keys := timecalc.LastNDays(now, days)
	series := make([]DayTotal, 0, len(keys))
	for _, k := range keys {
		series = append(series, DayTotal{Date: k, Hours: TotalHoursOn(records, k)})
	}
	return series
}

// SubjectRollup sums hours per exact subject text and orders subjects by
// descending total. Ties keep first-seen order. maxSubjects <= 0 disables
// truncation.
func SubjectRollup(records []model.StudyRecord, maxSubjects int) []SubjectTotal {
	index := map[string]int{}
	rollup := []SubjectTotal{}
	for _, r := range records {
		i, seen := index[r.Subject]
		if !seen {
			index[r.Subject] = len(rollup)
			rollup = append(rollup, SubjectTotal{Subject: r.Subject, Hours: r.Hours})
			continue
		}
		rollup[i].Hours += r.Hours
	}

	sort.SliceStable(rollup, func(a, b int) bool {
		return rollup[a].Hours > rollup[b].Hours
	})

	if maxSubjects > 0 && len(rollup) > maxSubjects {
		rollup = rollup[:maxSubjects]
	}
	return rollup
}

// Summarize computes today's total, the trailing window total and the
// overall total. The window starts windowDays before now, not at a
// calendar-week boundary.
func Summarize(records []model.StudyRecord, now time.Time, windowDays int) Summary {
	return Summary{
		Today: TotalHoursOn(records, timecalc.DateKey(now)),
		Week:  TotalHoursSince(records, now.AddDate(0, 0, -windowDays)),
		Total: TotalHoursAll(records),
	}
}

// Indexed pairs a record with its position in the stored collection.
type Indexed struct {
	Pos    int
	Record model.StudyRecord
}

// SortedView returns records ordered by date, newest first. Equal dates keep
// insertion order; records with an unparseable date go last.
func SortedView(records []model.StudyRecord) []Indexed {
	view := make([]Indexed, len(records))
	dates := make([]time.Time, len(records))
	valid := make([]bool, len(records))
	for i, r := range records {
		view[i] = Indexed{Pos: i, Record: r}
		d, err := timecalc.ParseDate(r.Date, time.UTC)
		dates[i], valid[i] = d, err == nil
	}

	sort.SliceStable(view, func(a, b int) bool {
		pa, pb := view[a].Pos, view[b].Pos
		if valid[pa] != valid[pb] {
			return valid[pa]
		}
		return dates[pa].After(dates[pb])
	})
	return view
}
