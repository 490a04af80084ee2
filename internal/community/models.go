package community

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput is returned when a create request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// Comment is one entry on the 24-hour community board for a zip code area.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ZipCode   string    `json:"zipCode"`
	Body      string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// SavedLocation is a user's stored weather lookup target. At most one per
// user carries the home flag.
type SavedLocation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Location  string    `json:"location"`
	IsHome    bool      `json:"isHome"`
	CreatedAt time.Time `json:"createdAt"`
}

// DogProfile names one of a user's dogs, optionally tied to a zip code.
type DogProfile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	ZipCode   string    `json:"zipCode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the contract the record stores must satisfy.
type Store interface {
	InsertComment(ctx context.Context, c Comment) error
	ListComments(ctx context.Context, zipCode string, since time.Time, limit int) ([]Comment, error)

	InsertLocation(ctx context.Context, l SavedLocation) error
	ListLocations(ctx context.Context, userID string) ([]SavedLocation, error)
	DeleteLocation(ctx context.Context, userID, id string) error
	SetHomeLocation(ctx context.Context, userID, id string) error
	// HomeLocations returns every user's home location string, de-duplicated.
	HomeLocations(ctx context.Context) ([]string, error)

	InsertDog(ctx context.Context, d DogProfile) error
	ListDogs(ctx context.Context, userID string) ([]DogProfile, error)
	DeleteDog(ctx context.Context, userID, id string) error
}
