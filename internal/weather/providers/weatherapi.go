package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pupwalk/pupwalk/internal/weather"
	"github.com/sony/gobreaker"
)

// forecastHorizonDays is the furthest day ahead we request from the
// provider. Target dates beyond it are clamped to the last available day.
const forecastHorizonDays = 7

// WeatherAPIProvider implements weather.SnapshotProvider against the
// WeatherAPI.com forecast endpoint. A single call returns current
// conditions, a per-day hourly series, daily aggregates, and astro data.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: defaultBreaker("weatherapi"),
		now:     time.Now,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// weatherAPIForecast mirrors the slice of the WeatherAPI.com response we use.
type weatherAPIForecast struct {
	Location struct {
		Name      string `json:"name"`
		Region    string `json:"region"`
		Localtime string `json:"localtime"` // "2006-01-02 15:04"
	} `json:"location"`
	Current struct {
		TempF     float64 `json:"temp_f"`
		Humidity  int     `json:"humidity"`
		WindMph   float64 `json:"wind_mph"`
		UV        float64 `json:"uv"`
		PrecipMM  float64 `json:"precip_mm"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"` // "2006-01-02"
			Day  struct {
				AvgTempF          float64 `json:"avgtemp_f"`
				AvgHumidity       float64 `json:"avghumidity"`
				MaxWindMph        float64 `json:"maxwind_mph"`
				UV                float64 `json:"uv"`
				DailyChanceOfRain int     `json:"daily_chance_of_rain"`
				TotalPrecipMM     float64 `json:"totalprecip_mm"`
				Condition         struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
			Astro struct {
				Sunrise string `json:"sunrise"`
				Sunset  string `json:"sunset"`
			} `json:"astro"`
			Hour []struct {
				Time         string  `json:"time"` // "2006-01-02 15:04"
				TempF        float64 `json:"temp_f"`
				ChanceOfRain int     `json:"chance_of_rain"`
				PrecipMM     float64 `json:"precip_mm"`
				UV           float64 `json:"uv"`
				WindMph      float64 `json:"wind_mph"`
				Condition    struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

type weatherAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *WeatherAPIProvider) FetchSnapshot(ctx context.Context, location string, targetDate time.Time) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, fmt.Errorf("%w: weatherapi api key is not configured", weather.ErrFetchFailed)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", location)
		values.Set("days", fmt.Sprintf("%d", forecastHorizonDays))
		values.Set("aqi", "no")
		values.Set("alerts", "no")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			var apiErr weatherAPIError
			if jsonErr := json.Unmarshal(se.body, &apiErr); jsonErr == nil {
				// 1006: no matching location found.
				if apiErr.Error.Code == 1006 {
					return weather.Snapshot{}, fmt.Errorf("%w: %s", weather.ErrInvalidLocation, apiErr.Error.Message)
				}
				if apiErr.Error.Message != "" {
					return weather.Snapshot{}, fmt.Errorf("%w: %s", weather.ErrFetchFailed, apiErr.Error.Message)
				}
			}
			return weather.Snapshot{}, fmt.Errorf("%w: status %d", weather.ErrFetchFailed, se.code)
		}
		return weather.Snapshot{}, fmt.Errorf("%w: %v", weather.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	var payload weatherAPIForecast
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("%w: decode response: %v", weather.ErrFetchFailed, err)
	}
	if len(payload.Forecast.ForecastDay) == 0 {
		return weather.Snapshot{}, fmt.Errorf("%w: empty forecast", weather.ErrFetchFailed)
	}

	localNow := p.localNow(payload.Location.Localtime)
	today := localNow.Format("2006-01-02")

	// Resolve the requested day, clamping past-horizon dates to the last
	// available day and anything else (zero or past dates) to today.
	targetKey := today
	if !targetDate.IsZero() && targetDate.Format("2006-01-02") > today {
		targetKey = targetDate.Format("2006-01-02")
	}
	dayIdx := len(payload.Forecast.ForecastDay) - 1
	for i, fd := range payload.Forecast.ForecastDay {
		if fd.Date >= targetKey {
			dayIdx = i
			break
		}
	}
	day := payload.Forecast.ForecastDay[dayIdx]
	isToday := day.Date == today

	locName := payload.Location.Name
	if payload.Location.Region != "" {
		locName = fmt.Sprintf("%s, %s", payload.Location.Name, payload.Location.Region)
	}

	snap := weather.Snapshot{
		Location: locName,
		Sunrise:  day.Astro.Sunrise,
		Sunset:   day.Astro.Sunset,
	}

	if isToday {
		cur := payload.Current
		snap.Temperature = round(cur.TempF)
		snap.Condition = weather.MapCondition(cur.Condition.Text)
		snap.Humidity = cur.Humidity
		snap.WindSpeed = round(cur.WindMph)
		snap.UVIndex = round(cur.UV)
		snap.Precipitation = weather.PrecipIntensity(cur.PrecipMM, 0, cur.Condition.Text)
	} else {
		d := day.Day
		snap.Temperature = round(d.AvgTempF)
		snap.Condition = weather.MapCondition(d.Condition.Text)
		snap.Humidity = round(d.AvgHumidity)
		snap.WindSpeed = round(d.MaxWindMph)
		snap.UVIndex = round(d.UV)
		snap.Precipitation = weather.PrecipIntensity(0, d.DailyChanceOfRain, d.Condition.Text)
	}

	samples := make([]weather.HourSample, 0, len(day.Hour))
	for _, h := range day.Hour {
		hour := parseHour(h.Time)
		s := weather.HourSample{
			Time:          hour,
			Temperature:   round(h.TempF),
			Condition:     weather.MapCondition(h.Condition.Text),
			Precipitation: weather.PrecipIntensity(h.PrecipMM, h.ChanceOfRain, h.Condition.Text),
			UVIndex:       round(h.UV),
			WindSpeed:     round(h.WindMph),
		}
		// Current conditions outrank the forecast row for the present hour.
		if isToday && hour == localNow.Hour() {
			s.Temperature = snap.Temperature
			s.Condition = snap.Condition
			s.Precipitation = snap.Precipitation
			s.UVIndex = snap.UVIndex
			s.WindSpeed = snap.WindSpeed
		}
		samples = append(samples, s)
	}

	if isToday {
		samples = rotateToHour(samples, localNow.Hour())
	}
	snap.HourlyForecast = samples

	return snap, nil
}

// localNow parses the provider's local time for the location, falling back
// to server time.
func (p *WeatherAPIProvider) localNow(localtime string) time.Time {
	if ts, err := time.Parse("2006-01-02 15:04", localtime); err == nil {
		return ts
	}
	return p.now()
}

// parseHour extracts the hour of day from a "2006-01-02 15:04" timestamp.
func parseHour(s string) int {
	ts, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		return 0
	}
	return ts.Hour()
}

// rotateToHour reorders a 24-hour series so the sample for the given hour
// comes first, keeping the series ordered by increasing hour with wraparound.
func rotateToHour(samples []weather.HourSample, hour int) []weather.HourSample {
	for i, s := range samples {
		if s.Time == hour {
			return append(samples[i:len(samples):len(samples)], samples[:i]...)
		}
	}
	return samples
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
