// Package stopwatch measures study sessions and turns them into records.
package stopwatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/study-time-tracker/internal/apperrors"
	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

// TimerNotes is the notes text of records produced by the stopwatch.
const TimerNotes = "timer"

// Stopwatch accumulates elapsed time across start/stop cycles.
type Stopwatch struct {
	clock   timecalc.Clock
	started time.Time
	elapsed time.Duration
	running bool
}

func New(clock timecalc.Clock) *Stopwatch {
	if clock == nil {
		clock = timecalc.SystemClock{}
	}
	return &Stopwatch{clock: clock}
}

// Start begins timing. It is a no-op while running.
func (s *Stopwatch) Start() {
	if s.running {
		return
	}
	s.started = s.clock.Now()
	s.running = true
}

// Stop pauses timing, keeping the elapsed time. It is a no-op while stopped.
func (s *Stopwatch) Stop() {
	if !s.running {
		return
	}
	s.elapsed += s.clock.Now().Sub(s.started)
	s.running = false
}

// Reset stops the stopwatch and clears the elapsed time.
func (s *Stopwatch) Reset() {
	s.running = false
	s.elapsed = 0
}

func (s *Stopwatch) Running() bool { return s.running }

// Elapsed returns the total measured time including the current run.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.running {
		return s.elapsed + s.clock.Now().Sub(s.started)
	}
	return s.elapsed
}

// RecordFrom builds the record for a finished timing of subject. The record
// is dated now's calendar day and its hours are rounded to two decimals.
func RecordFrom(subject string, elapsed time.Duration, now time.Time) (model.StudyRecord, error) {
	if elapsed <= 0 {
		return model.StudyRecord{}, fmt.Errorf("%w: start the timer first", apperrors.ErrInvalidInput)
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return model.StudyRecord{}, fmt.Errorf("%w: subject is required", apperrors.ErrInvalidInput)
	}
	hours := timecalc.RoundHours(elapsed.Hours())
	if hours <= 0 {
		return model.StudyRecord{}, fmt.Errorf("%w: recorded time too short (under 18 seconds)", apperrors.ErrInvalidInput)
	}
	return model.StudyRecord{
		Date:      timecalc.DateKey(now),
		Subject:   subject,
		Hours:     hours,
		Notes:     TimerNotes,
		Timestamp: now,
	}, nil
}
