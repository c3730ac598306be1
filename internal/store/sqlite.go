package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/meteo-station/internal/station"
)

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-most-recent-reading.sql
var getMostRecentReadingSQL string

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore persists readings in the weather_readings table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store on an opened and migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Append(ctx context.Context, r station.Reading) (int64, error) {
	var data sql.NullString
	if r.IsAvailable {
		data = sql.NullString{String: string(r.Payload), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, insertReadingSQL,
		r.DownloadTime.UTC().Format(timeLayout),
		r.IsAvailable,
		data,
	)
	if err != nil {
		return 0, fmt.Errorf("insert reading: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert reading id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) MostRecent(ctx context.Context) (station.Reading, error) {
	var (
		r    station.Reading
		ts   string
		data sql.NullString
	)
	err := s.db.QueryRowContext(ctx, getMostRecentReadingSQL).Scan(&r.ID, &ts, &r.IsAvailable, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return station.Reading{}, ErrNotFound
	}
	if err != nil {
		return station.Reading{}, fmt.Errorf("query most recent reading: %w", err)
	}

	t, err := time.Parse(timeLayout, ts)
	if err != nil {
		return station.Reading{}, fmt.Errorf("parse download_time %q: %w", ts, err)
	}
	r.DownloadTime = t
	if data.Valid {
		r.Payload = []byte(data.String)
	}
	return r, nil
}
