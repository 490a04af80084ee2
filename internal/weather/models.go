package weather

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionSunny        Condition = "sunny"
	ConditionCloudy       Condition = "cloudy"
	ConditionPartlyCloudy Condition = "partly-cloudy"
	ConditionRainy        Condition = "rainy"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionSnow         Condition = "snow"
)

// Snapshot is the normalized weather view for one location on one day.
// When the requested date is today the top-level fields describe current
// conditions; for a future date they carry that day's aggregates. Either
// way HourlyForecast holds 24 samples covering the requested day.
type Snapshot struct {
	Location       string       `json:"location"`
	Temperature    int          `json:"temperature"` // °F
	Condition      Condition    `json:"condition"`
	Humidity       int          `json:"humidity"`  // percent
	WindSpeed      int          `json:"windSpeed"` // mph
	UVIndex        int          `json:"uvIndex"`
	Precipitation  int          `json:"precipitation"` // 0-100 intensity indicator
	HourlyForecast []HourSample `json:"hourlyForecast"`
	Sunrise        string       `json:"sunrise,omitempty"`
	Sunset         string       `json:"sunset,omitempty"`
}

// HourSample is one hour's forecast. Time is the hour of day (0-23).
// Hours are not guaranteed unique within a series; lookups take the
// first match.
type HourSample struct {
	Time          int       `json:"time"`
	Temperature   int       `json:"temperature"`
	Condition     Condition `json:"condition"`
	Precipitation int       `json:"precipitation"`
	UVIndex       int       `json:"uvIndex,omitempty"`
	WindSpeed     int       `json:"windSpeed,omitempty"`
}

// HourAt returns the first sample whose hour matches, falling back to the
// first sample in the series so a missing hour never fails a computation.
// The second return value reports whether an exact match was found.
func (s Snapshot) HourAt(hour int) (HourSample, bool) {
	for _, h := range s.HourlyForecast {
		if h.Time == hour {
			return h, true
		}
	}
	if len(s.HourlyForecast) > 0 {
		return s.HourlyForecast[0], false
	}
	return HourSample{}, false
}
