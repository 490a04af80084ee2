package weather

import "errors"

var (
	// ErrInvalidLocation is returned when the location is empty or the
	// provider does not recognize it.
	ErrInvalidLocation = errors.New("invalid or unknown location")

	// ErrFetchFailed is returned on transient network or provider errors.
	ErrFetchFailed = errors.New("weather fetch failed")

	// ErrInsufficientData is returned when a snapshot carries no hourly
	// samples. The normalizer always populates 24 samples, so hitting this
	// indicates a contract violation rather than bad user input.
	ErrInsufficientData = errors.New("insufficient hourly data")
)
