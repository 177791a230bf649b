package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/Tiliavir/study-time-tracker/internal/apperrors"
	"github.com/Tiliavir/study-time-tracker/internal/kv"
	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/stats"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

// Keys shared with the account registry.
const (
	UsersKey   = "studyUsers"
	SessionKey = "currentUser"
)

// UserDataKey returns the key of a user's data blob.
func UserDataKey(username string) string {
	return "userData_" + username
}

// TimerKey returns the key of a user's running timer.
func TimerKey(username string) string {
	return "timer_" + username
}

// Store reads and writes a user's record collection. Every change rewrites
// the whole blob.
type Store struct {
	kv     kv.Store
	clock  timecalc.Clock
	logger *zap.Logger
}

// New returns a Store over kvs.
func New(kvs kv.Store, clock timecalc.Clock, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = timecalc.SystemClock{}
	}
	return &Store{kv: kvs, clock: clock, logger: logger}
}

func requireSession(sess model.Session) error {
	if sess.Username == "" {
		return apperrors.ErrNoSession
	}
	return nil
}

// loadUserData reads a user's blob. A missing or malformed blob yields an
// empty one; only backend failures are returned as errors.
func (s *Store) loadUserData(ctx context.Context, username string) (model.UserData, error) {
	key := UserDataKey(username)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return model.UserData{}, fmt.Errorf("reading user data: %w", err)
	}
	data := model.UserData{Records: []model.StudyRecord{}, Settings: map[string]any{}}
	if !ok {
		return data, nil
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		s.logger.Warn("Malformed user data, treating as empty",
			zap.String("key", key), zap.Error(err))
		return model.UserData{Records: []model.StudyRecord{}, Settings: map[string]any{}}, nil
	}
	if data.Records == nil {
		data.Records = []model.StudyRecord{}
	}
	if data.Settings == nil {
		data.Settings = map[string]any{}
	}
	return data, nil
}

func (s *Store) saveUserData(ctx context.Context, username string, data model.UserData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	if err := s.kv.Set(ctx, UserDataKey(username), string(b)); err != nil {
		return fmt.Errorf("writing user data: %w", err)
	}
	return nil
}

// InitUser writes an empty blob for a newly registered user.
func (s *Store) InitUser(ctx context.Context, username string) error {
	return s.saveUserData(ctx, username, model.UserData{
		Records:  []model.StudyRecord{},
		Settings: map[string]any{},
	})
}

// Records returns the session user's records in insertion order.
func (s *Store) Records(ctx context.Context, sess model.Session) ([]model.StudyRecord, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	data, err := s.loadUserData(ctx, sess.Username)
	if err != nil {
		return nil, err
	}
	return data.Records, nil
}

// SaveRecords replaces the session user's records, keeping settings.
func (s *Store) SaveRecords(ctx context.Context, sess model.Session, records []model.StudyRecord) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	data, err := s.loadUserData(ctx, sess.Username)
	if err != nil {
		return err
	}
	data.Records = records
	return s.saveUserData(ctx, sess.Username, data)
}

// ValidateRecord checks the fields a user can get wrong.
func ValidateRecord(r model.StudyRecord) error {
	if strings.TrimSpace(r.Subject) == "" {
		return fmt.Errorf("%w: subject is required", apperrors.ErrInvalidInput)
	}
	if r.Date == "" {
		return fmt.Errorf("%w: date is required", apperrors.ErrInvalidInput)
	}
	if _, err := timecalc.ParseDate(r.Date, nil); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if math.IsNaN(r.Hours) || math.IsInf(r.Hours, 0) || r.Hours <= 0 {
		return fmt.Errorf("%w: hours must be greater than 0", apperrors.ErrInvalidInput)
	}
	return nil
}

// Add validates rec, appends it to the session user's collection and
// persists the collection. A zero timestamp is set to now.
func (s *Store) Add(ctx context.Context, sess model.Session, rec model.StudyRecord) (model.StudyRecord, error) {
	if err := requireSession(sess); err != nil {
		return model.StudyRecord{}, err
	}
	rec.Subject = strings.TrimSpace(rec.Subject)
	rec.Notes = strings.TrimSpace(rec.Notes)
	if err := ValidateRecord(rec); err != nil {
		return model.StudyRecord{}, err
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.clock.Now()
	}

	records, err := s.Records(ctx, sess)
	if err != nil {
		return model.StudyRecord{}, err
	}
	records = append(records, rec)
	if err := s.SaveRecords(ctx, sess, records); err != nil {
		return model.StudyRecord{}, err
	}
	s.logger.Debug("Record added",
		zap.String("user", sess.Username),
		zap.String("subject", rec.Subject),
		zap.Float64("hours", rec.Hours))
	return rec, nil
}

// DeleteAt removes the record shown at viewIndex of stats.SortedView and
// returns it.
func (s *Store) DeleteAt(ctx context.Context, sess model.Session, viewIndex int) (model.StudyRecord, error) {
	records, err := s.Records(ctx, sess)
	if err != nil {
		return model.StudyRecord{}, err
	}
	view := stats.SortedView(records)
	if viewIndex < 0 || viewIndex >= len(view) {
		return model.StudyRecord{}, fmt.Errorf("%w: no record at index %d", apperrors.ErrNotFound, viewIndex)
	}

	pos := view[viewIndex].Pos
	removed := records[pos]
	kept := make([]model.StudyRecord, 0, len(records)-1)
	kept = append(kept, records[:pos]...)
	kept = append(kept, records[pos+1:]...)
	if err := s.SaveRecords(ctx, sess, kept); err != nil {
		return model.StudyRecord{}, err
	}
	return removed, nil
}

// Setting returns a string setting, or "" when unset.
func (s *Store) Setting(ctx context.Context, sess model.Session, key string) (string, error) {
	if err := requireSession(sess); err != nil {
		return "", err
	}
	data, err := s.loadUserData(ctx, sess.Username)
	if err != nil {
		return "", err
	}
	v, _ := data.Settings[key].(string)
	return v, nil
}

// SetSetting stores a string setting. An empty value removes it.
func (s *Store) SetSetting(ctx context.Context, sess model.Session, key, value string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	data, err := s.loadUserData(ctx, sess.Username)
	if err != nil {
		return err
	}
	if value == "" {
		delete(data.Settings, key)
	} else {
		data.Settings[key] = value
	}
	return s.saveUserData(ctx, sess.Username, data)
}

// ActiveTimer returns the session user's running timer, or nil.
func (s *Store) ActiveTimer(ctx context.Context, sess model.Session) (*model.ActiveTimer, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	key := TimerKey(sess.Username)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading timer: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var t model.ActiveTimer
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		s.logger.Warn("Malformed timer state, discarding", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	return &t, nil
}

// StartTimer records a running timer for subject. Only one timer runs per
// user.
func (s *Store) StartTimer(ctx context.Context, sess model.Session, subject string) (*model.ActiveTimer, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", apperrors.ErrInvalidInput)
	}
	active, err := s.ActiveTimer(ctx, sess)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return active, fmt.Errorf("%w: a timer for %q is already running", apperrors.ErrInvalidInput, active.Subject)
	}

	t := &model.ActiveTimer{Subject: subject, StartedAt: s.clock.Now()}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	if err := s.kv.Set(ctx, TimerKey(sess.Username), string(b)); err != nil {
		return nil, fmt.Errorf("writing timer: %w", err)
	}
	return t, nil
}

// ClearActiveTimer removes the session user's running timer.
func (s *Store) ClearActiveTimer(ctx context.Context, sess model.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, TimerKey(sess.Username)); err != nil {
		return fmt.Errorf("clearing timer: %w", err)
	}
	return nil
}
