package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pupwalk/pupwalk/internal/weather"
)

func TestSnapshotStoreRetentionByCount(t *testing.T) {
	s := NewSnapshotStore(3, 0)

	for i := 0; i < 5; i++ {
		s.Save("Austin, TX", weather.Snapshot{Location: fmt.Sprintf("snap-%d", i)})
	}

	history, err := s.History("Austin, TX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[0].Snapshot.Location != "snap-2" {
		t.Errorf("oldest retained = %q, want snap-2", history[0].Snapshot.Location)
	}

	latest, err := s.Latest("austin, tx") // lookup is case-insensitive
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.Snapshot.Location != "snap-4" {
		t.Errorf("latest = %q, want snap-4", latest.Snapshot.Location)
	}
}

func TestSnapshotStoreUnknownLocation(t *testing.T) {
	s := NewSnapshotStore(0, time.Hour)

	if _, err := s.Latest("nowhere"); !errors.Is(err, ErrNoSnapshots) {
		t.Errorf("Latest: expected ErrNoSnapshots, got %v", err)
	}
	if _, err := s.History("nowhere"); !errors.Is(err, ErrNoSnapshots) {
		t.Errorf("History: expected ErrNoSnapshots, got %v", err)
	}
}

func TestSnapshotStoreHistoryIsCopy(t *testing.T) {
	s := NewSnapshotStore(0, 0)
	s.Save("Austin, TX", weather.Snapshot{Location: "orig"})

	history, _ := s.History("Austin, TX")
	history[0].Snapshot.Location = "mutated"

	latest, _ := s.Latest("Austin, TX")
	if latest.Snapshot.Location != "orig" {
		t.Error("mutating a returned history entry changed the stored snapshot")
	}
}
