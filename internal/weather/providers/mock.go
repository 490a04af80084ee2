package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/pupwalk/pupwalk/internal/weather"
)

// MockProvider generates plausible weather data without any network access,
// for offline or no-credential operation. Output is deterministic for a
// given location and date so repeated calls agree, and it never fails.
type MockProvider struct {
	name string
	now  func() time.Time
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "mock",
		now:  time.Now,
	}
}

func (p *MockProvider) Name() string {
	return p.name
}

var mockConditions = []weather.Condition{
	weather.ConditionSunny,
	weather.ConditionCloudy,
	weather.ConditionPartlyCloudy,
	weather.ConditionRainy,
}

func (p *MockProvider) FetchSnapshot(_ context.Context, location string, targetDate time.Time) (weather.Snapshot, error) {
	now := p.now()
	day := now
	isToday := true
	if !targetDate.IsZero() && targetDate.Format("2006-01-02") > now.Format("2006-01-02") {
		day = targetDate
		isToday = false
		// Clamp to the forecast horizon.
		if max := now.AddDate(0, 0, forecastHorizonDays-1); day.After(max) {
			day = max
		}
	}

	rng := rand.New(rand.NewSource(mockSeed(location, day)))

	snap := weather.Snapshot{
		Location:    fmt.Sprintf("%s Area", strings.TrimSpace(location)),
		Temperature: 40 + rng.Intn(40),
		Condition:   mockConditions[rng.Intn(len(mockConditions))],
		Humidity:    30 + rng.Intn(40),
		WindSpeed:   2 + rng.Intn(15),
		UVIndex:     1 + rng.Intn(8),
		Sunrise:     "6:45 AM",
		Sunset:      "7:30 PM",
	}
	if rng.Float64() > 0.7 {
		snap.Precipitation = 5 + rng.Intn(30)
	}

	startHour := 0
	if isToday {
		startHour = now.Hour()
	}
	samples := make([]weather.HourSample, 0, 24)
	for i := 0; i < 24; i++ {
		samples = append(samples, weather.HourSample{
			Time:          (startHour + i) % 24,
			Temperature:   50 + rng.Intn(20),
			Condition:     mockConditions[rng.Intn(3)],
			Precipitation: mockPrecip(rng),
			UVIndex:       rng.Intn(9),
			WindSpeed:     2 + rng.Intn(12),
		})
	}

	// Keep the present hour consistent with the top-level conditions.
	if isToday {
		samples[0].Temperature = snap.Temperature
		samples[0].Condition = snap.Condition
		samples[0].Precipitation = snap.Precipitation
		samples[0].UVIndex = snap.UVIndex
		samples[0].WindSpeed = snap.WindSpeed
	}
	snap.HourlyForecast = samples

	return snap, nil
}

func mockPrecip(rng *rand.Rand) int {
	if rng.Float64() > 0.8 {
		return rng.Intn(20)
	}
	return 0
}

// mockSeed derives a stable seed from the location string and the day so
// the generator is reproducible within a day per location.
func mockSeed(location string, day time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(location))))
	h.Write([]byte(day.Format("2006-01-02")))
	return int64(h.Sum64())
}
