// Package glovedb stores captured glove readings in sqlite.
package glovedb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/glove.report/internal/glove"
)

// DB wraps the sqlite connection holding capture sessions and their
// readings.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the sqlite database at path and applies any
// pending schema migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	gdb := &DB{db}
	if err := gdb.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return gdb, nil
}

// CreateCaptureSession records the start of a polling session and
// returns its id.
func (db *DB) CreateCaptureSession(model glove.Model, port string, calibrated bool) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO capture_sessions (session_id, model, port, calibrated) VALUES (?, ?, ?, ?)`,
		id, int(model), port, calibrated,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create capture session: %w", err)
	}
	return id, nil
}

// LatestCaptureSession returns the id of the most recently started
// capture session, or sql.ErrNoRows when the store is empty.
func (db *DB) LatestCaptureSession() (string, error) {
	var id string
	err := db.QueryRow(
		`SELECT session_id FROM capture_sessions ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&id)
	return id, err
}

// RecordReading stores one reading under the given capture session.
// Channel values are stored as a JSON array so both glove models share
// one schema.
func (db *DB) RecordReading(sessionID string, r glove.Reading) error {
	values, err := json.Marshal(r.Values)
	if err != nil {
		return fmt.Errorf("failed to encode reading values: %w", err)
	}
	_, err = db.Exec(
		`INSERT INTO readings (session_id, sampled_at, channel_values) VALUES (?, ?, ?)`,
		sessionID, r.Time.UTC().Format(time.RFC3339Nano), string(values),
	)
	if err != nil {
		return fmt.Errorf("failed to record reading: %w", err)
	}
	return nil
}

// LatestReading returns the most recent reading for the session, or
// sql.ErrNoRows when none has been recorded.
func (db *DB) LatestReading(sessionID string) (glove.Reading, error) {
	row := db.QueryRow(
		`SELECT sampled_at, channel_values FROM readings
		 WHERE session_id = ? ORDER BY reading_id DESC LIMIT 1`,
		sessionID,
	)
	return scanReading(row.Scan)
}

// ReadingsSince returns the session's readings sampled at or after the
// given time, oldest first.
func (db *DB) ReadingsSince(sessionID string, since time.Time) ([]glove.Reading, error) {
	rows, err := db.Query(
		`SELECT sampled_at, channel_values FROM readings
		 WHERE session_id = ? AND sampled_at >= ? ORDER BY reading_id ASC`,
		sessionID, since.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var readings []glove.Reading
	for rows.Next() {
		r, err := scanReading(rows.Scan)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

func scanReading(scan func(...any) error) (glove.Reading, error) {
	var sampledAt, values string
	if err := scan(&sampledAt, &values); err != nil {
		return glove.Reading{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, sampledAt)
	if err != nil {
		return glove.Reading{}, fmt.Errorf("failed to parse reading timestamp: %w", err)
	}
	var r glove.Reading
	r.Time = t
	if err := json.Unmarshal([]byte(values), &r.Values); err != nil {
		return glove.Reading{}, fmt.Errorf("failed to decode reading values: %w", err)
	}
	return r, nil
}
