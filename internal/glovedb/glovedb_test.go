package glovedb

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/glove.report/internal/glove"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "glove_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	// Migrate again: must be a no-op, not an error.
	require.NoError(t, db.Migrate())

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM capture_sessions`).Scan(&count))
	assert.Zero(t, count)
}

func TestRecordAndReadBack(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateCaptureSession(glove.Model18, "/dev/ttyUSB0", true)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := db.RecordReading(id, glove.Reading{
			Time:   base.Add(time.Duration(i) * time.Second),
			Values: []float64{float64(i), float64(i) * 2},
		})
		require.NoError(t, err)
	}

	latest, err := db.LatestReading(id)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, latest.Values)
	assert.True(t, latest.Time.Equal(base.Add(2*time.Second)))

	all, err := db.ReadingsSince(id, base)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []float64{0, 0}, all[0].Values)

	tail, err := db.ReadingsSince(id, base.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, tail, 2)
}

func TestLatestReadingEmptySession(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateCaptureSession(glove.Model22, "/dev/ttyACM0", false)
	require.NoError(t, err)

	_, err = db.LatestReading(id)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestLatestCaptureSession(t *testing.T) {
	db := openTestDB(t)

	_, err := db.LatestCaptureSession()
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	first, err := db.CreateCaptureSession(glove.Model18, "", false)
	require.NoError(t, err)
	second, err := db.CreateCaptureSession(glove.Model18, "", false)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	latest, err := db.LatestCaptureSession()
	require.NoError(t, err)
	assert.Equal(t, second, latest)
}
