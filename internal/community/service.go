package community

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pupwalk/pupwalk/internal/realtime"
)

const (
	// commentWindow bounds the board to recent local conditions only.
	commentWindow = 24 * time.Hour
	// commentLimit caps how many comments a listing returns.
	commentLimit = 10
)

// Service owns the community record collections: comments, saved locations
// and dog profiles. Every mutation publishes a change event so subscribers
// see updates without polling.
type Service struct {
	store    Store
	notifier realtime.Notifier
}

func NewService(store Store, notifier realtime.Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// PostComment adds a comment to the board for the user's zip code area.
func (s *Service) PostComment(ctx context.Context, userID, zipCode, body string) (Comment, error) {
	body = strings.TrimSpace(body)
	zipCode = strings.TrimSpace(zipCode)
	if userID == "" || zipCode == "" || body == "" {
		return Comment{}, fmt.Errorf("%w: user, zip code and comment are required", ErrInvalidInput)
	}

	c := Comment{
		ID:        uuid.NewString(),
		UserID:    userID,
		ZipCode:   zipCode,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertComment(ctx, c); err != nil {
		return Comment{}, err
	}

	s.publish(ctx, realtime.Change{
		Collection: realtime.CollectionComments,
		Action:     "create",
		RecordID:   c.ID,
		ZipCode:    c.ZipCode,
		Record:     c,
	})
	return c, nil
}

// ListComments returns the last day of comments for a zip code area,
// newest first, capped at ten entries.
func (s *Service) ListComments(ctx context.Context, zipCode string) ([]Comment, error) {
	zipCode = strings.TrimSpace(zipCode)
	if zipCode == "" {
		return nil, fmt.Errorf("%w: zip code is required", ErrInvalidInput)
	}
	since := time.Now().UTC().Add(-commentWindow)
	return s.store.ListComments(ctx, zipCode, since, commentLimit)
}

// SaveLocation stores a new lookup target for the user.
func (s *Service) SaveLocation(ctx context.Context, userID, location string) (SavedLocation, error) {
	location = strings.TrimSpace(location)
	if userID == "" || location == "" {
		return SavedLocation{}, fmt.Errorf("%w: user and location are required", ErrInvalidInput)
	}

	l := SavedLocation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Location:  location,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertLocation(ctx, l); err != nil {
		return SavedLocation{}, err
	}

	s.publish(ctx, realtime.Change{
		Collection: realtime.CollectionLocations,
		Action:     "create",
		RecordID:   l.ID,
		Record:     l,
	})
	return l, nil
}

// ListLocations returns the user's saved locations, home first, then oldest
// first.
func (s *Service) ListLocations(ctx context.Context, userID string) ([]SavedLocation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	return s.store.ListLocations(ctx, userID)
}

// DeleteLocation removes one of the user's saved locations.
func (s *Service) DeleteLocation(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return fmt.Errorf("%w: user and id are required", ErrInvalidInput)
	}
	if err := s.store.DeleteLocation(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.Change{
		Collection: realtime.CollectionLocations,
		Action:     "delete",
		RecordID:   id,
	})
	return nil
}

// SetHome marks one saved location as the user's home, clearing the flag
// on any other.
func (s *Service) SetHome(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return fmt.Errorf("%w: user and id are required", ErrInvalidInput)
	}
	if err := s.store.SetHomeLocation(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.Change{
		Collection: realtime.CollectionLocations,
		Action:     "update",
		RecordID:   id,
	})
	return nil
}

// HomeLocations lists the distinct home locations across all users, for the
// background refresh job.
func (s *Service) HomeLocations(ctx context.Context) ([]string, error) {
	return s.store.HomeLocations(ctx)
}

// AddDog registers a dog name for the user.
func (s *Service) AddDog(ctx context.Context, userID, name, zipCode string) (DogProfile, error) {
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return DogProfile{}, fmt.Errorf("%w: user and dog name are required", ErrInvalidInput)
	}

	d := DogProfile{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		ZipCode:   strings.TrimSpace(zipCode),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertDog(ctx, d); err != nil {
		return DogProfile{}, err
	}

	s.publish(ctx, realtime.Change{
		Collection: realtime.CollectionDogs,
		Action:     "create",
		RecordID:   d.ID,
		ZipCode:    d.ZipCode,
		Record:     d,
	})
	return d, nil
}

// ListDogs returns the user's dogs, oldest first.
func (s *Service) ListDogs(ctx context.Context, userID string) ([]DogProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	return s.store.ListDogs(ctx, userID)
}

// DeleteDog removes one of the user's dogs.
func (s *Service) DeleteDog(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return fmt.Errorf("%w: user and id are required", ErrInvalidInput)
	}
	if err := s.store.DeleteDog(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.Change{
		Collection: realtime.CollectionDogs,
		Action:     "delete",
		RecordID:   id,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, change realtime.Change) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, change); err != nil {
		// Change delivery is best effort; the write already succeeded.
		log.Printf("community: publish change for %s/%s failed: %v", change.Collection, change.RecordID, err)
	}
}
