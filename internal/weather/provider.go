package weather

import (
	"context"
	"strings"
	"time"
)

// SnapshotProvider abstracts a weather data source. The live API client and
// the deterministic mock generator are interchangeable implementations,
// selected by configuration.
//
// location is a free-form query (zip code, city, or "city, state"). A zero
// targetDate means today. Dates beyond the provider's forecast horizon are
// clamped to the last available day.
type SnapshotProvider interface {
	Name() string
	FetchSnapshot(ctx context.Context, location string, targetDate time.Time) (Snapshot, error)
}

// Service validates input and bounds each outbound fetch with a timeout.
type Service struct {
	provider SnapshotProvider
	timeout  time.Duration
}

// NewService creates a new Service. A timeout of zero disables the bound.
func NewService(provider SnapshotProvider, timeout time.Duration) *Service {
	return &Service{provider: provider, timeout: timeout}
}

// Snapshot fetches a fresh snapshot for the location. Every call performs a
// fresh fetch; there is no cache between calls.
func (s *Service) Snapshot(ctx context.Context, location string, targetDate time.Time) (Snapshot, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Snapshot{}, ErrInvalidLocation
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return s.provider.FetchSnapshot(ctx, location, targetDate)
}

// ProviderName reports the configured provider, for health reporting.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}
