package model

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// DateLayout is the calendar date format used for StudyRecord.Date.
const DateLayout = "2006-01-02"

// StudyRecord is one logged study session.
type StudyRecord struct {
	Date      string    `json:"date"`
	Subject   string    `json:"subject"`
	Hours     float64   `json:"hours"`
	Notes     string    `json:"notes"`
	Timestamp time.Time `json:"timestamp"`
}

// recordJSON mirrors StudyRecord with hours kept raw so a bad value in one
// record does not fail decoding of the whole collection.
type recordJSON struct {
	Date      string          `json:"date"`
	Subject   string          `json:"subject"`
	Hours     json.RawMessage `json:"hours"`
	Notes     string          `json:"notes"`
	Timestamp time.Time       `json:"timestamp"`
}

// UnmarshalJSON decodes a record. A non-numeric or missing hours value
// decodes as NaN.
func (r *StudyRecord) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = StudyRecord{
		Date:      raw.Date,
		Subject:   raw.Subject,
		Hours:     decodeHours(raw.Hours),
		Notes:     raw.Notes,
		Timestamp: raw.Timestamp,
	}
	return nil
}

// MarshalJSON encodes a record. NaN or infinite hours encode as null.
func (r StudyRecord) MarshalJSON() ([]byte, error) {
	hours := json.RawMessage("null")
	if !math.IsNaN(r.Hours) && !math.IsInf(r.Hours, 0) {
		b, err := json.Marshal(r.Hours)
		if err != nil {
			return nil, err
		}
		hours = b
	}
	return json.Marshal(recordJSON{
		Date:      r.Date,
		Subject:   r.Subject,
		Hours:     hours,
		Notes:     r.Notes,
		Timestamp: r.Timestamp,
	})
}

func decodeHours(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN()
	}
	var h float64
	if err := json.Unmarshal(raw, &h); err != nil {
		return math.NaN()
	}
	return h
}

// UserData is the per-user blob holding the record collection and settings.
type UserData struct {
	Records  []StudyRecord  `json:"records"`
	Settings map[string]any `json:"settings"`
}

// User is a registry entry. Password holds the bcrypt hash, never the
// plain password.
type User struct {
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session identifies the logged-in user. It is passed explicitly to every
// per-user storage call.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	LoginTime time.Time `json:"loginTime"`
}

// ActiveTimer is a stopwatch started with "stt start" that has not been
// stopped yet.
type ActiveTimer struct {
	Subject   string    `json:"subject"`
	StartedAt time.Time `json:"started_at"`
}
