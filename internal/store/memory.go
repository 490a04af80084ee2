package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pupwalk/pupwalk/internal/community"
)

// MemoryStore is a concurrency-safe in-memory implementation of the
// community record store, for single-node runs and tests.
type MemoryStore struct {
	mu sync.RWMutex

	comments  []community.Comment
	locations map[string][]community.SavedLocation // key: user id
	dogs      map[string][]community.DogProfile    // key: user id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations: make(map[string][]community.SavedLocation),
		dogs:      make(map[string][]community.DogProfile),
	}
}

func (s *MemoryStore) InsertComment(_ context.Context, c community.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments = append(s.comments, c)

	// Sweep entries that have aged out of any possible listing window.
	cutoff := time.Now().UTC().Add(-48 * time.Hour)
	i := 0
	for ; i < len(s.comments); i++ {
		if s.comments[i].CreatedAt.After(cutoff) {
			break
		}
	}
	if i > 0 {
		s.comments = s.comments[i:]
	}
	return nil
}

func (s *MemoryStore) ListComments(_ context.Context, zipCode string, since time.Time, limit int) ([]community.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []community.Comment
	for _, c := range s.comments {
		if c.ZipCode == zipCode && !c.CreatedAt.Before(since) {
			result = append(result, c)
		}
	}

	// Newest first.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryStore) InsertLocation(_ context.Context, l community.SavedLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locations[l.UserID] = append(s.locations[l.UserID], l)
	return nil
}

func (s *MemoryStore) ListLocations(_ context.Context, userID string) ([]community.SavedLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locs := append([]community.SavedLocation(nil), s.locations[userID]...)

	// Home first, then oldest first.
	sort.SliceStable(locs, func(i, j int) bool {
		if locs[i].IsHome != locs[j].IsHome {
			return locs[i].IsHome
		}
		return locs[i].CreatedAt.Before(locs[j].CreatedAt)
	})
	return locs, nil
}

func (s *MemoryStore) DeleteLocation(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locs := s.locations[userID]
	for i, l := range locs {
		if l.ID == id {
			s.locations[userID] = append(locs[:i], locs[i+1:]...)
			return nil
		}
	}
	return community.ErrNotFound
}

func (s *MemoryStore) SetHomeLocation(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locs := s.locations[userID]
	found := false
	for i := range locs {
		if locs[i].ID == id {
			found = true
		}
	}
	if !found {
		return community.ErrNotFound
	}
	for i := range locs {
		locs[i].IsHome = locs[i].ID == id
	}
	return nil
}

func (s *MemoryStore) HomeLocations(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var result []string
	for _, locs := range s.locations {
		for _, l := range locs {
			if !l.IsHome {
				continue
			}
			if _, ok := seen[l.Location]; ok {
				continue
			}
			seen[l.Location] = struct{}{}
			result = append(result, l.Location)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (s *MemoryStore) InsertDog(_ context.Context, d community.DogProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dogs[d.UserID] = append(s.dogs[d.UserID], d)
	return nil
}

func (s *MemoryStore) ListDogs(_ context.Context, userID string) ([]community.DogProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dogs := append([]community.DogProfile(nil), s.dogs[userID]...)
	sort.SliceStable(dogs, func(i, j int) bool {
		return dogs[i].CreatedAt.Before(dogs[j].CreatedAt)
	})
	return dogs, nil
}

func (s *MemoryStore) DeleteDog(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dogs := s.dogs[userID]
	for i, d := range dogs {
		if d.ID == id {
			s.dogs[userID] = append(dogs[:i], dogs[i+1:]...)
			return nil
		}
	}
	return community.ErrNotFound
}
