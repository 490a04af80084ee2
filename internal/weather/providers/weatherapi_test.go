package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pupwalk/pupwalk/internal/weather"
)

// testForecastPayload builds a two-day canned WeatherAPI response with the
// local clock at 2026-08-30 09:30.
func testForecastPayload() map[string]interface{} {
	hours := func(date string, temp float64) []map[string]interface{} {
		out := make([]map[string]interface{}, 0, 24)
		for h := 0; h < 24; h++ {
			out = append(out, map[string]interface{}{
				"time":           fmt.Sprintf("%s %02d:00", date, h),
				"temp_f":         temp,
				"chance_of_rain": 10,
				"precip_mm":      0.0,
				"uv":             4.0,
				"wind_mph":       6.0,
				"condition":      map[string]interface{}{"text": "Sunny"},
			})
		}
		return out
	}

	return map[string]interface{}{
		"location": map[string]interface{}{
			"name":      "Austin",
			"region":    "Texas",
			"localtime": "2026-08-30 09:30",
		},
		"current": map[string]interface{}{
			"temp_f":    71.6,
			"humidity":  55,
			"wind_mph":  4.3,
			"uv":        6.0,
			"precip_mm": 0.0,
			"condition": map[string]interface{}{"text": "Partly cloudy"},
		},
		"forecast": map[string]interface{}{
			"forecastday": []map[string]interface{}{
				{
					"date": "2026-08-30",
					"day": map[string]interface{}{
						"avgtemp_f":            70.0,
						"avghumidity":          52.0,
						"maxwind_mph":          9.0,
						"uv":                   6.0,
						"daily_chance_of_rain": 10,
						"condition":            map[string]interface{}{"text": "Sunny"},
					},
					"astro": map[string]interface{}{"sunrise": "6:58 AM", "sunset": "7:52 PM"},
					"hour":  hours("2026-08-30", 68),
				},
				{
					"date": "2026-08-31",
					"day": map[string]interface{}{
						"avgtemp_f":            80.2,
						"avghumidity":          50.0,
						"maxwind_mph":          12.4,
						"uv":                   7.0,
						"daily_chance_of_rain": 30,
						"condition":            map[string]interface{}{"text": "Light rain"},
					},
					"astro": map[string]interface{}{"sunrise": "6:59 AM", "sunset": "7:50 PM"},
					"hour":  hours("2026-08-31", 78),
				},
			},
		},
	}
}

func newTestWeatherAPIProvider(t *testing.T, handler http.HandlerFunc) *WeatherAPIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewWeatherAPIProvider(srv.Client(), "test-key")
	p.baseURL = srv.URL
	p.httpCfg.Backoff.MaxRetries = 0
	return p
}

func TestWeatherAPIFetchToday(t *testing.T) {
	p := newTestWeatherAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Austin" {
			t.Errorf("query q = %q, want Austin", got)
		}
		json.NewEncoder(w).Encode(testForecastPayload())
	})

	snap, err := p.FetchSnapshot(context.Background(), "Austin", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Location != "Austin, Texas" {
		t.Errorf("location = %q", snap.Location)
	}
	if snap.Temperature != 72 {
		t.Errorf("temperature = %d, want 72 (rounded from current 71.6)", snap.Temperature)
	}
	if snap.Condition != weather.ConditionCloudy {
		t.Errorf("condition = %q, want cloudy", snap.Condition)
	}
	if snap.Sunrise != "6:58 AM" || snap.Sunset != "7:52 PM" {
		t.Errorf("astro = %q / %q", snap.Sunrise, snap.Sunset)
	}
	if len(snap.HourlyForecast) != 24 {
		t.Fatalf("hourly samples = %d, want 24", len(snap.HourlyForecast))
	}

	// Today's series starts at the local current hour, and the present
	// hour carries the live conditions rather than the forecast row.
	first := snap.HourlyForecast[0]
	if first.Time != 9 {
		t.Errorf("first sample hour = %d, want 9", first.Time)
	}
	if first.Temperature != 72 || first.Condition != weather.ConditionCloudy {
		t.Errorf("first sample = %+v, want live current conditions", first)
	}
	if snap.HourlyForecast[1].Time != 10 || snap.HourlyForecast[23].Time != 8 {
		t.Errorf("series not rotated with wraparound: %d ... %d",
			snap.HourlyForecast[1].Time, snap.HourlyForecast[23].Time)
	}
}

func TestWeatherAPIFetchFutureDay(t *testing.T) {
	p := newTestWeatherAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(testForecastPayload())
	})

	target := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	snap, err := p.FetchSnapshot(context.Background(), "Austin", target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Temperature != 80 {
		t.Errorf("temperature = %d, want 80 (daily average)", snap.Temperature)
	}
	if snap.Humidity != 50 || snap.WindSpeed != 12 || snap.UVIndex != 7 {
		t.Errorf("aggregates = %d%% / %dmph / uv %d", snap.Humidity, snap.WindSpeed, snap.UVIndex)
	}
	if snap.Precipitation != 30 {
		t.Errorf("precipitation = %d, want daily chance 30", snap.Precipitation)
	}
	if snap.Condition != weather.ConditionRainy {
		t.Errorf("condition = %q, want rainy", snap.Condition)
	}
	if snap.HourlyForecast[0].Time != 0 || snap.HourlyForecast[23].Time != 23 {
		t.Error("future day series should run 0 through 23 unrotated")
	}
}

func TestWeatherAPIFetchClampsPastHorizon(t *testing.T) {
	p := newTestWeatherAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(testForecastPayload())
	})

	target := time.Date(2026, 9, 25, 0, 0, 0, 0, time.UTC)
	snap, err := p.FetchSnapshot(context.Background(), "Austin", target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Clamped to the last returned day.
	if snap.Temperature != 80 {
		t.Errorf("temperature = %d, want last day's 80", snap.Temperature)
	}
}

func TestWeatherAPIFetchUnknownLocation(t *testing.T) {
	p := newTestWeatherAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":1006,"message":"No matching location found."}}`)
	})

	_, err := p.FetchSnapshot(context.Background(), "nowhereville-zzz", time.Time{})
	if !errors.Is(err, weather.ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestWeatherAPIFetchServerError(t *testing.T) {
	p := newTestWeatherAPIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.FetchSnapshot(context.Background(), "Austin", time.Time{})
	if !errors.Is(err, weather.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestWeatherAPIMissingKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "")
	_, err := p.FetchSnapshot(context.Background(), "Austin", time.Time{})
	if !errors.Is(err, weather.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}
