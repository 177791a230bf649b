package storage_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Tiliavir/study-time-tracker/internal/apperrors"
	"github.com/Tiliavir/study-time-tracker/internal/kv"
	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/storage"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

var (
	clockTime = time.Date(2024, 1, 12, 15, 0, 0, 0, time.UTC)
	alice     = model.Session{ID: "s1", Username: "alice"}
	bob       = model.Session{ID: "s2", Username: "bob"}
)

func newStore(t *testing.T) (*storage.Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	return storage.New(mem, timecalc.FixedClock(clockTime), zap.NewNop()), mem
}

func TestRecords_EmptyWhenAbsent(t *testing.T) {
	s, _ := newStore(t)
	records, err := s.Records(context.Background(), alice)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRecords_RequireSession(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Records(context.Background(), model.Session{})
	assert.ErrorIs(t, err, apperrors.ErrNoSession)

	_, err = s.Add(context.Background(), model.Session{}, model.StudyRecord{Date: "2024-01-01", Subject: "Math", Hours: 1})
	assert.ErrorIs(t, err, apperrors.ErrNoSession)
}

func TestAdd_AppendsAndPersists(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()

	first, err := s.Add(ctx, alice, model.StudyRecord{Date: "2024-01-01", Subject: "  Math ", Hours: 1.5})
	require.NoError(t, err)
	assert.Equal(t, "Math", first.Subject)
	assert.True(t, first.Timestamp.Equal(clockTime), "zero timestamp is filled from the clock")

	_, err = s.Add(ctx, alice, model.StudyRecord{Date: "2024-01-02", Subject: "English", Hours: 0.5, Notes: "manual"})
	require.NoError(t, err)

	records, err := s.Records(ctx, alice)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Math", records[0].Subject)
	assert.Equal(t, "English", records[1].Subject)

	raw, ok, err := mem.Get(ctx, "userData_alice")
	require.NoError(t, err)
	require.True(t, ok)
	var blob model.UserData
	require.NoError(t, json.Unmarshal([]byte(raw), &blob))
	assert.Len(t, blob.Records, 2)
}

func TestAdd_Validation(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	bad := []model.StudyRecord{
		{Date: "2024-01-01", Subject: " ", Hours: 1},
		{Date: "", Subject: "Math", Hours: 1},
		{Date: "01/02/2024", Subject: "Math", Hours: 1},
		{Date: "2024-01-01", Subject: "Math", Hours: 0},
		{Date: "2024-01-01", Subject: "Math", Hours: -2},
	}
	for _, r := range bad {
		_, err := s.Add(ctx, alice, r)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "%+v", r)
	}

	records, err := s.Records(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, records, "rejected input must not change state")
}

func TestCollectionsAreIsolated(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, alice, model.StudyRecord{Date: "2024-01-01", Subject: "Math", Hours: 1})
	require.NoError(t, err)

	records, err := s.Records(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecords_MalformedBlobTreatedAsEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mem := kv.NewMemory()
	s := storage.New(mem, timecalc.FixedClock(clockTime), zap.New(core))
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "userData_alice", "{not json"))

	records, err := s.Records(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 1, logs.FilterMessage("Malformed user data, treating as empty").Len())

	_, err = s.Add(ctx, alice, model.StudyRecord{Date: "2024-01-01", Subject: "Math", Hours: 1})
	require.NoError(t, err)
	records, err = s.Records(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSaveRecords_KeepsSettings(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetSetting(ctx, alice, "default_subject", "Math"))
	require.NoError(t, s.SaveRecords(ctx, alice, []model.StudyRecord{
		{Date: "2024-01-01", Subject: "Math", Hours: 1},
	}))

	v, err := s.Setting(ctx, alice, "default_subject")
	require.NoError(t, err)
	assert.Equal(t, "Math", v)

	require.NoError(t, s.SetSetting(ctx, alice, "default_subject", ""))
	v, err = s.Setting(ctx, alice, "default_subject")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	records, err := s.Records(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDeleteAt_UsesSortedViewIndex(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRecords(ctx, alice, []model.StudyRecord{
		{Date: "2024-01-01", Subject: "old", Hours: 1},
		{Date: "2024-01-05", Subject: "new", Hours: 1},
		{Date: "2024-01-03", Subject: "mid", Hours: 1},
	}))

	// Display order is new, mid, old: index 0 is the newest record even
	// though it is stored second.
	removed, err := s.DeleteAt(ctx, alice, 0)
	require.NoError(t, err)
	assert.Equal(t, "new", removed.Subject)

	records, err := s.Records(ctx, alice)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "old", records[0].Subject)
	assert.Equal(t, "mid", records[1].Subject)

	_, err = s.DeleteAt(ctx, alice, 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.DeleteAt(ctx, alice, -1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInitUser(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.InitUser(ctx, "carol"))
	raw, ok, err := mem.Get(ctx, "userData_carol")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"records":[],"settings":{}}`, raw)
}

func TestTimer_StartAndClear(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	active, err := s.ActiveTimer(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, active)

	started, err := s.StartTimer(ctx, alice, " Physics ")
	require.NoError(t, err)
	assert.Equal(t, "Physics", started.Subject)
	assert.True(t, started.StartedAt.Equal(clockTime))

	_, err = s.StartTimer(ctx, alice, "Math")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	active, err = s.ActiveTimer(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "Physics", active.Subject)

	require.NoError(t, s.ClearActiveTimer(ctx, alice))
	active, err = s.ActiveTimer(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestTimer_EmptySubject(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.StartTimer(context.Background(), alice, "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStore_OnSQLite(t *testing.T) {
	db, err := kv.OpenSQLite(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	s := storage.New(db, timecalc.FixedClock(clockTime), zap.NewNop())
	ctx := context.Background()
	_, err = s.Add(ctx, alice, model.StudyRecord{Date: "2024-01-01", Subject: "Math", Hours: 2, Notes: "timer"})
	require.NoError(t, err)

	records, err := s.Records(ctx, alice)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2.0, records[0].Hours)
	assert.Equal(t, "timer", records[0].Notes)
}
