package timecalc

import (
	"fmt"
	"math"
	"time"

	"github.com/Tiliavir/study-time-tracker/internal/model"
)

// Clock abstracts the current time so callers stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports the local wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// FormatHours renders fractional hours as "{floor(h)}h {round(frac*60)}m".
// Minutes are not carried into the hour, so 1.999 renders as "1h 60m".
// NaN renders as "NaNh NaNm".
func FormatHours(h float64) string {
	return fmt.Sprintf("%.0fh %.0fm", math.Floor(h), math.Round(math.Mod(h, 1)*60))
}

// FormatClock formats a duration as HH:MM:SS, truncating sub-second parts.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// DateKey returns the YYYY-MM-DD calendar date of t in t's location.
func DateKey(t time.Time) string {
	return t.Format(model.DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(model.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// ShortLabel turns "2024-01-05" into "1/5". Unparseable input is returned
// unchanged.
func ShortLabel(date string) string {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d/%d", int(d.Month()), d.Day())
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// LastNDays returns the date keys of the n calendar days ending on now's
// day, oldest first.
func LastNDays(now time.Time, n int) []string {
	if n <= 0 {
		return []string{}
	}
	today := StartOfDay(now)
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, DateKey(today.AddDate(0, 0, -i)))
	}
	return days
}

// RoundHours rounds hours to two decimal places.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
