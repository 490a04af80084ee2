package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/pupwalk/pupwalk/internal/weather"
)

// ErrNoSnapshots is returned when no warmed snapshot exists for a location.
var ErrNoSnapshots = errors.New("no snapshots for location")

// StoredSnapshot pairs a snapshot with the time it was fetched, for
// retention and history display.
type StoredSnapshot struct {
	Snapshot  weather.Snapshot `json:"snapshot"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// SnapshotStore keeps a bounded per-location history of warmed snapshots.
// It backs the background refresh of saved home locations; user-facing
// fetches always go to the provider directly.
type SnapshotStore struct {
	mu sync.RWMutex

	// key: normalized location, value: history ordered oldest first
	data map[string][]StoredSnapshot

	maxHistory int           // max snapshots per location (0 = unlimited)
	maxAge     time.Duration // max snapshot age (0 = unlimited)
}

// NewSnapshotStore creates a SnapshotStore with optional limits.
func NewSnapshotStore(maxHistory int, maxAge time.Duration) *SnapshotStore {
	return &SnapshotStore{
		data:       make(map[string][]StoredSnapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

func snapshotKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// Save appends a snapshot for a location and enforces retention.
func (s *SnapshotStore) Save(location string, snap weather.Snapshot) {
	key := snapshotKey(location)

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[key], StoredSnapshot{
		Snapshot:  snap,
		FetchedAt: time.Now().UTC(),
	})

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().UTC().Add(-s.maxAge)
		i := 0
		for ; i < len(history); i++ {
			if !history[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history = history[i:]
		}
	}

	s.data[key] = history
}

// Latest returns the most recent warmed snapshot for a location.
func (s *SnapshotStore) Latest(location string) (StoredSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[snapshotKey(location)]
	if len(history) == 0 {
		return StoredSnapshot{}, ErrNoSnapshots
	}
	return history[len(history)-1], nil
}

// History returns every warmed snapshot for a location, oldest first.
func (s *SnapshotStore) History(location string) ([]StoredSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[snapshotKey(location)]
	if len(history) == 0 {
		return nil, ErrNoSnapshots
	}
	return append([]StoredSnapshot(nil), history...), nil
}
