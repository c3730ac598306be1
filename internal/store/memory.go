package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/meteo-station/internal/station"
)

var (
	// ErrNotFound is returned when the store holds no readings.
	ErrNotFound = errors.New("no weather readings stored")
)

// MemoryStore is a concurrency-safe in-memory implementation of station.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// in insertion order
	readings []station.Reading
	nextID   int64

	// retention configuration
	maxHistory int           // max number of readings kept
	maxAge     time.Duration // optional max age by download time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited; likewise maxAge.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Append assigns the next id to r, stores it and enforces retention.
func (s *MemoryStore) Append(_ context.Context, r station.Reading) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r.ID = s.nextID
	s.readings = append(s.readings, r)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.readings) > s.maxHistory {
		over := len(s.readings) - s.maxHistory
		s.readings = append([]station.Reading(nil), s.readings[over:]...)
	}

	// Enforce retention by age; the reading just appended is always kept.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		kept := s.readings[:0]
		for i, rd := range s.readings {
			if i == len(s.readings)-1 || !rd.DownloadTime.Before(cutoff) {
				kept = append(kept, rd)
			}
		}
		s.readings = kept
	}

	return r.ID, nil
}

// MostRecent returns the reading with the latest download time. Ties go to
// the reading appended last.
func (s *MemoryStore) MostRecent(_ context.Context) (station.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.readings) == 0 {
		return station.Reading{}, ErrNotFound
	}

	latest := s.readings[0]
	for _, r := range s.readings[1:] {
		if !r.DownloadTime.Before(latest.DownloadTime) {
			latest = r
		}
	}
	return latest, nil
}

// Len returns the number of readings currently held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}
