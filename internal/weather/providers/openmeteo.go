package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pupwalk/pupwalk/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenMeteoProvider implements weather.SnapshotProvider against Open-Meteo.
// Open-Meteo takes coordinates, not place names, so each fetch is two calls:
// geocode the location, then request the forecast. No API key is required.
type OpenMeteoProvider struct {
	name       string
	geocodeURL string
	baseURL    string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
	now        func() time.Time
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:       "openmeteo",
		geocodeURL: "https://geocoding-api.open-meteo.com/v1/search",
		baseURL:    "https://api.open-meteo.com/v1/forecast",
		httpCfg:    defaultHTTPConfig(client),
		circuit:    defaultBreaker("openmeteo"),
		now:        time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoPlace struct {
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type openMeteoForecast struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
		Time        string  `json:"time"` // "2006-01-02T15:04"
	} `json:"current_weather"`
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		Humidity      []float64 `json:"relativehumidity_2m"`
		Precipitation []float64 `json:"precipitation"`
		PrecipProb    []float64 `json:"precipitation_probability"`
		WeatherCode   []int     `json:"weathercode"`
		UVIndex       []float64 `json:"uv_index"`
		WindSpeed     []float64 `json:"windspeed_10m"`
	} `json:"hourly"`
	Daily struct {
		Time          []string  `json:"time"`
		TempMax       []float64 `json:"temperature_2m_max"`
		TempMin       []float64 `json:"temperature_2m_min"`
		UVIndexMax    []float64 `json:"uv_index_max"`
		PrecipProbMax []float64 `json:"precipitation_probability_max"`
		WindSpeedMax  []float64 `json:"windspeed_10m_max"`
		Sunrise       []string  `json:"sunrise"`
		Sunset        []string  `json:"sunset"`
		WeatherCode   []int     `json:"weathercode"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) FetchSnapshot(ctx context.Context, location string, targetDate time.Time) (weather.Snapshot, error) {
	place, err := p.geocode(ctx, location)
	if err != nil {
		return weather.Snapshot{}, err
	}

	payload, err := p.forecast(ctx, place)
	if err != nil {
		return weather.Snapshot{}, err
	}
	if len(payload.Daily.Time) == 0 || len(payload.Hourly.Time) == 0 {
		return weather.Snapshot{}, fmt.Errorf("%w: empty forecast", weather.ErrFetchFailed)
	}

	localNow := p.now()
	if ts, perr := time.Parse("2006-01-02T15:04", payload.CurrentWeather.Time); perr == nil {
		localNow = ts
	}
	today := localNow.Format("2006-01-02")

	targetKey := today
	if !targetDate.IsZero() && targetDate.Format("2006-01-02") > today {
		targetKey = targetDate.Format("2006-01-02")
	}
	dayIdx := len(payload.Daily.Time) - 1
	for i, d := range payload.Daily.Time {
		if d >= targetKey {
			dayIdx = i
			break
		}
	}
	isToday := payload.Daily.Time[dayIdx] == today

	locName := place.Name
	if place.Admin1 != "" {
		locName = fmt.Sprintf("%s, %s", place.Name, place.Admin1)
	}

	snap := weather.Snapshot{
		Location: locName,
		Sunrise:  formatSunTime(at(payload.Daily.Sunrise, dayIdx)),
		Sunset:   formatSunTime(at(payload.Daily.Sunset, dayIdx)),
	}

	// Hourly samples for the target day. Open-Meteo returns a flat series
	// of 24 entries per forecast day.
	base := dayIdx * 24
	samples := make([]weather.HourSample, 0, 24)
	for i := 0; i < 24; i++ {
		idx := base + i
		if idx >= len(payload.Hourly.Time) {
			break
		}
		samples = append(samples, weather.HourSample{
			Time:        i,
			Temperature: round(atF(payload.Hourly.Temperature, idx)),
			Condition:   mapWeatherCode(atI(payload.Hourly.WeatherCode, idx)),
			Precipitation: weather.PrecipIntensity(
				atF(payload.Hourly.Precipitation, idx),
				round(atF(payload.Hourly.PrecipProb, idx)),
				"",
			),
			UVIndex:   round(atF(payload.Hourly.UVIndex, idx)),
			WindSpeed: round(atF(payload.Hourly.WindSpeed, idx)),
		})
	}

	if isToday {
		cur := payload.CurrentWeather
		snap.Temperature = round(cur.Temperature)
		snap.Condition = mapWeatherCode(cur.WeatherCode)
		snap.WindSpeed = round(cur.WindSpeed)
		curIdx := base + localNow.Hour()
		snap.Humidity = round(atF(payload.Hourly.Humidity, curIdx))
		snap.UVIndex = round(atF(payload.Hourly.UVIndex, curIdx))
		snap.Precipitation = weather.PrecipIntensity(
			atF(payload.Hourly.Precipitation, curIdx),
			round(atF(payload.Hourly.PrecipProb, curIdx)),
			"",
		)
		for i := range samples {
			if samples[i].Time == localNow.Hour() {
				samples[i].Temperature = snap.Temperature
				samples[i].Condition = snap.Condition
				samples[i].Precipitation = snap.Precipitation
				samples[i].UVIndex = snap.UVIndex
				samples[i].WindSpeed = snap.WindSpeed
				break
			}
		}
		samples = rotateToHour(samples, localNow.Hour())
	} else {
		snap.Temperature = round((atF(payload.Daily.TempMax, dayIdx) + atF(payload.Daily.TempMin, dayIdx)) / 2)
		snap.Condition = mapWeatherCode(atI(payload.Daily.WeatherCode, dayIdx))
		snap.WindSpeed = round(atF(payload.Daily.WindSpeedMax, dayIdx))
		snap.UVIndex = round(atF(payload.Daily.UVIndexMax, dayIdx))
		snap.Precipitation = weather.PrecipIntensity(0, round(atF(payload.Daily.PrecipProbMax, dayIdx)), "")
		snap.Humidity = averageHumidity(payload.Hourly.Humidity, base)
	}

	snap.HourlyForecast = samples
	return snap, nil
}

func (p *OpenMeteoProvider) geocode(ctx context.Context, location string) (openMeteoPlace, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", location)
		values.Set("count", "1")
		u := fmt.Sprintf("%s?%s", p.geocodeURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return openMeteoPlace{}, fmt.Errorf("%w: geocode: %v", weather.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []openMeteoPlace `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return openMeteoPlace{}, fmt.Errorf("%w: decode geocode response: %v", weather.ErrFetchFailed, err)
	}
	if len(payload.Results) == 0 {
		return openMeteoPlace{}, fmt.Errorf("%w: %q", weather.ErrInvalidLocation, location)
	}
	return payload.Results[0], nil
}

func (p *OpenMeteoProvider) forecast(ctx context.Context, place openMeteoPlace) (openMeteoForecast, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", place.Latitude))
		values.Set("longitude", fmt.Sprintf("%f", place.Longitude))
		values.Set("current_weather", "true")
		values.Set("hourly", "temperature_2m,relativehumidity_2m,precipitation,precipitation_probability,weathercode,uv_index,windspeed_10m")
		values.Set("daily", "temperature_2m_max,temperature_2m_min,uv_index_max,precipitation_probability_max,windspeed_10m_max,sunrise,sunset,weathercode")
		values.Set("temperature_unit", "fahrenheit")
		values.Set("windspeed_unit", "mph")
		values.Set("timezone", "auto")
		values.Set("forecast_days", fmt.Sprintf("%d", forecastHorizonDays))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return openMeteoForecast{}, fmt.Errorf("%w: forecast: %v", weather.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	var payload openMeteoForecast
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return openMeteoForecast{}, fmt.Errorf("%w: decode forecast response: %v", weather.ErrFetchFailed, err)
	}
	return payload, nil
}

// mapWeatherCode maps Open-Meteo WMO weather codes to condition categories.
func mapWeatherCode(code int) weather.Condition {
	switch {
	case code == 0:
		return weather.ConditionSunny
	case code >= 1 && code <= 2:
		return weather.ConditionPartlyCloudy
	case code == 3 || code == 45 || code == 48:
		return weather.ConditionCloudy
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRainy
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionThunderstorm
	default:
		return weather.ConditionPartlyCloudy
	}
}

// formatSunTime converts Open-Meteo's ISO local time to the "6:21 AM"
// display form the rest of the system expects.
func formatSunTime(s string) string {
	ts, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		return s
	}
	return ts.Format("3:04 PM")
}

func averageHumidity(vals []float64, base int) int {
	var sum float64
	var n int
	for i := base; i < base+24 && i < len(vals); i++ {
		sum += vals[i]
		n++
	}
	if n == 0 {
		return 0
	}
	return round(sum / float64(n))
}

func at(vals []string, i int) string {
	if i < 0 || i >= len(vals) {
		return ""
	}
	return vals[i]
}

func atF(vals []float64, i int) float64 {
	if i < 0 || i >= len(vals) {
		return 0
	}
	return vals[i]
}

func atI(vals []int, i int) int {
	if i < 0 || i >= len(vals) {
		return 0
	}
	return vals[i]
}
