package walk

import (
	"sort"
	"strings"
	"time"

	"github.com/pupwalk/pupwalk/internal/common"
	"github.com/pupwalk/pupwalk/internal/weather"
)

// TimeSlot is one of the fixed daily walking windows, bound to a
// representative hour of day and a display glyph.
type TimeSlot struct {
	Label string
	Hour  int
	Icon  string
}

// Slots are the seven scoring windows, in display order. The set is fixed.
var Slots = []TimeSlot{
	{Label: "Early Morning (6-8 AM)", Hour: 7, Icon: "🌅"},
	{Label: "Morning (8-10 AM)", Hour: 9, Icon: "☀️"},
	{Label: "Late Morning (10 AM-12 PM)", Hour: 11, Icon: "🌤️"},
	{Label: "Afternoon (12-3 PM)", Hour: 14, Icon: "☀️"},
	{Label: "Late Afternoon (3-6 PM)", Hour: 16, Icon: "🌤️"},
	{Label: "Evening (6-8 PM)", Hour: 19, Icon: "🌆"},
	{Label: "Night (8-10 PM)", Hour: 21, Icon: "🌙"},
}

// SunEvent annotates a recommendation whose slot coincides with sunrise
// or sunset.
type SunEvent struct {
	Type string `json:"type"` // "sunrise" or "sunset"
	Time string `json:"time"`
}

// Recommendation is the scored result for one time slot. It is derived,
// recomputed on every call, and never persisted.
type Recommendation struct {
	Slot     string              `json:"time"`
	Score    int                 `json:"score"`
	Reason   string              `json:"reason"`
	Icon     string              `json:"icon"`
	Rating   string              `json:"rating"`
	Hour     *weather.HourSample `json:"hourlyData,omitempty"`
	SunEvent *SunEvent           `json:"sunEvent,omitempty"`
}

// ScoreSlots scores every slot against the matching hourly sample and
// returns the recommendations sorted by score, best first. Equal scores
// keep the original slot order. The input snapshot is never mutated.
func ScoreSlots(snap weather.Snapshot) ([]Recommendation, error) {
	if len(snap.HourlyForecast) == 0 {
		return nil, weather.ErrInsufficientData
	}

	sunriseHour, sunriseOK := parseClockHour(snap.Sunrise)
	sunsetHour, sunsetOK := parseClockHour(snap.Sunset)

	recs := make([]Recommendation, 0, len(Slots))
	for _, slot := range Slots {
		sample, _ := snap.HourAt(slot.Hour)

		score := 100
		var reasons []string

		// Temperature bands are mutually exclusive; exactly one clause.
		temp := sample.Temperature
		switch {
		case temp < 32:
			score -= 40
			reasons = append(reasons, "Very cold - consider booties for your dog")
		case temp < 45:
			score -= 20
			reasons = append(reasons, "Cold weather - shorter walk recommended")
		case temp > 85:
			score -= 30
			reasons = append(reasons, "Hot weather - risk of paw burns on pavement")
		case temp > 75:
			score -= 15
			reasons = append(reasons, "Warm weather - bring water")
		default:
			reasons = append(reasons, "Comfortable temperature for walking")
		}

		if sample.Precipitation > 50 {
			score -= 40
			reasons = append(reasons, "Heavy rain expected - indoor activities recommended")
		} else if sample.Precipitation > 20 {
			score -= 20
			reasons = append(reasons, "Light rain possible - bring umbrella")
		}

		// Time-of-day adjustments use the slot's nominal hour.
		if slot.Hour >= 6 && slot.Hour <= 8 {
			score += 10
			reasons = append(reasons, "Cooler temps and less crowded")
		} else if slot.Hour >= 19 && slot.Hour <= 21 {
			score += 10
			reasons = append(reasons, "Cooler evening temperatures")
		} else if slot.Hour >= 12 && slot.Hour <= 15 {
			score -= 10
		}

		if snap.UVIndex > 7 && slot.Hour >= 10 && slot.Hour <= 16 {
			score -= 15
			reasons = append(reasons, "High UV - seek shade when possible")
		}

		if snap.WindSpeed > 15 {
			score -= 10
			reasons = append(reasons, "Windy conditions")
		}

		score = common.Clamp(score, 0, 100)

		rec := Recommendation{
			Slot:   slot.Label,
			Score:  score,
			Reason: strings.Join(reasons, ". "),
			Icon:   slot.Icon,
			Rating: rating(score),
			Hour:   &sample,
		}
		if sunriseOK && sunriseHour == slot.Hour {
			rec.SunEvent = &SunEvent{Type: "sunrise", Time: snap.Sunrise}
		} else if sunsetOK && sunsetHour == slot.Hour {
			rec.SunEvent = &SunEvent{Type: "sunset", Time: snap.Sunset}
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	return recs, nil
}

// rating maps a score to the coarse display label.
func rating(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}

// parseClockHour extracts the hour of day from a display time such as
// "6:45 AM" or "18:45".
func parseClockHour(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{"3:04 PM", "15:04"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Hour(), true
		}
	}
	return 0, false
}
