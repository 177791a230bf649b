package stats_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/stats"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

func rec(date, subject string, hours float64) model.StudyRecord {
	return model.StudyRecord{Date: date, Subject: subject, Hours: hours}
}

// now is a Friday afternoon in a fixed zone so results don't depend on the
// machine running the tests.
var now = time.Date(2024, 1, 12, 15, 0, 0, 0, time.FixedZone("CET", 3600))

func TestTotalHoursOn_SameDaySums(t *testing.T) {
	records := []model.StudyRecord{
		rec("2024-01-01", "Math", 1.5),
		rec("2024-01-01", "Math", 0.5),
	}
	got := stats.TotalHoursOn(records, "2024-01-01")
	assert.Equal(t, 2.0, got)
	assert.Equal(t, "2h 0m", timecalc.FormatHours(got))
}

func TestTotalHoursOn_ExactMatchOnly(t *testing.T) {
	records := []model.StudyRecord{
		rec("2024-01-01", "Math", 1),
		rec("2024-1-1", "Math", 4),
		rec("2024-01-02", "Math", 2),
	}
	assert.Equal(t, 1.0, stats.TotalHoursOn(records, "2024-01-01"))
	assert.Equal(t, 0.0, stats.TotalHoursOn(records, "2023-12-31"))
	assert.Equal(t, 0.0, stats.TotalHoursOn(nil, "2024-01-01"))
}

func TestTotalHoursSince_TrailingWindow(t *testing.T) {
	threshold := now.AddDate(0, 0, -7) // 2024-01-05 15:00
	records := []model.StudyRecord{
		rec("2024-01-12", "Math", 1),
		rec("2024-01-06", "Math", 2),
		// Midnight of the 5th is before 15:00 on the 5th.
		rec("2024-01-05", "Math", 4),
		rec("2023-12-25", "Math", 8),
		rec("not-a-date", "Math", 16),
	}
	assert.Equal(t, 3.0, stats.TotalHoursSince(records, threshold))

	midnight := time.Date(2024, 1, 5, 0, 0, 0, 0, now.Location())
	assert.Equal(t, 7.0, stats.TotalHoursSince(records, midnight), "threshold at midnight is inclusive")
}

func TestTotalHoursAll(t *testing.T) {
	records := []model.StudyRecord{
		rec("2024-01-01", "Math", 1.25),
		rec("2024-01-03", "English", 0.5),
		rec("2023-05-01", "Math", 3),
	}
	assert.InDelta(t, 4.75, stats.TotalHoursAll(records), 1e-9)

	reversed := []model.StudyRecord{records[2], records[1], records[0]}
	assert.InDelta(t, stats.TotalHoursAll(records), stats.TotalHoursAll(reversed), 1e-9)

	assert.Equal(t, 0.0, stats.TotalHoursAll(nil))
}

func TestTotalHoursAll_NaNPropagates(t *testing.T) {
	records := []model.StudyRecord{
		rec("2024-01-01", "Math", 1),
		rec("2024-01-01", "Math", math.NaN()),
	}
	assert.True(t, math.IsNaN(stats.TotalHoursAll(records)))
}

func TestDailySeries_AlwaysNEntries(t *testing.T) {
	for _, records := range [][]model.StudyRecord{
		nil,
		{rec("2024-01-12", "Math", 1)},
		{rec("2020-01-01", "Math", 1), rec("2024-01-10", "Art", 2), rec("2024-01-10", "Math", 0.5)},
	} {
		series := stats.DailySeries(records, now, 7)
		require.Len(t, series, 7)
		assert.Equal(t, "2024-01-06", series[0].Date)
		assert.Equal(t, "2024-01-12", series[6].Date)
	}
}

func TestDailySeries_Values(t *testing.T) {
	records := []model.StudyRecord{
		rec("2024-01-10", "Art", 2),
		rec("2024-01-10", "Math", 0.5),
		rec("2024-01-12", "Math", 1),
		rec("2024-01-01", "Math", 9),
	}
	series := stats.DailySeries(records, now, 7)
	want := []float64{0, 0, 0, 0, 2.5, 0, 1}
	for i, w := range want {
		assert.Equal(t, w, series[i].Hours, "day %s", series[i].Date)
	}
}

func TestDailySeries_Empty(t *testing.T) {
	series := stats.DailySeries(nil, now, stats.DefaultWindowDays)
	require.Len(t, series, 7)
	for _, d := range series {
		assert.Zero(t, d.Hours)
	}
	assert.Empty(t, stats.DailySeries(nil, now, 0))
}

func TestSubjectRollup_SortedDescending(t *testing.T) {
	records := []model.StudyRecord{
		rec("2024-01-01", "Math", 1),
		rec("2024-01-01", "English", 3),
		rec("2024-01-02", "Math", 1.5),
		rec("2024-01-02", "History", 0.5),
		rec("2024-01-03", "math", 9),
	}
	rollup := stats.SubjectRollup(records, stats.DefaultMaxSubjects)
	require.Len(t, rollup, 4)
	assert.Equal(t, stats.SubjectTotal{Subject: "math", Hours: 9}, rollup[0])
	assert.Equal(t, stats.SubjectTotal{Subject: "English", Hours: 3}, rollup[1])
	assert.Equal(t, stats.SubjectTotal{Subject: "Math", Hours: 2.5}, rollup[2])
	assert.Equal(t, stats.SubjectTotal{Subject: "History", Hours: 0.5}, rollup[3])

	for i := 1; i < len(rollup); i++ {
		assert.LessOrEqual(t, rollup[i].Hours, rollup[i-1].Hours)
	}
}

func TestSubjectRollup_TiesKeepFirstSeen(t *testing.T) {
	records := []model.StudyRecord{
		rec("2024-01-01", "B", 1),
		rec("2024-01-01", "A", 1),
		rec("2024-01-01", "C", 2),
	}
	rollup := stats.SubjectRollup(records, 0)
	require.Len(t, rollup, 3)
	assert.Equal(t, "C", rollup[0].Subject)
	assert.Equal(t, "B", rollup[1].Subject)
	assert.Equal(t, "A", rollup[2].Subject)
}

func TestSubjectRollup_Truncates(t *testing.T) {
	var records []model.StudyRecord
	for i, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		records = append(records, rec("2024-01-01", s, float64(i+1)))
	}
	rollup := stats.SubjectRollup(records, 6)
	require.Len(t, rollup, 6)
	assert.Equal(t, "h", rollup[0].Subject)
	assert.Equal(t, "c", rollup[5].Subject)

	assert.Len(t, stats.SubjectRollup(records, 0), 8)
}

func TestSubjectRollup_Empty(t *testing.T) {
	rollup := stats.SubjectRollup(nil, 6)
	assert.NotNil(t, rollup)
	assert.Empty(t, rollup)
}

func TestSummarize(t *testing.T) {
	records := []model.StudyRecord{
		rec("2024-01-12", "Math", 1),
		rec("2024-01-12", "Art", 0.5),
		rec("2024-01-08", "Math", 2),
		rec("2023-11-01", "Math", 10),
	}
	s := stats.Summarize(records, now, stats.DefaultWindowDays)
	assert.Equal(t, 1.5, s.Today)
	assert.Equal(t, 3.5, s.Week)
	assert.Equal(t, 13.5, s.Total)

	empty := stats.Summarize(nil, now, stats.DefaultWindowDays)
	assert.Equal(t, stats.Summary{}, empty)
}

func TestSortedView(t *testing.T) {
	records := []model.StudyRecord{
		rec("2024-01-01", "first", 1),
		rec("2024-01-03", "newest", 1),
		rec("bogus", "bad", 1),
		rec("2024-01-01", "second", 1),
		rec("2023-12-31", "oldest", 1),
	}
	view := stats.SortedView(records)
	require.Len(t, view, 5)

	var subjects []string
	var positions []int
	for _, v := range view {
		subjects = append(subjects, v.Record.Subject)
		positions = append(positions, v.Pos)
	}
	assert.Equal(t, []string{"newest", "first", "second", "oldest", "bad"}, subjects)
	assert.Equal(t, []int{1, 0, 3, 4, 2}, positions)

	assert.Empty(t, stats.SortedView(nil))
}
