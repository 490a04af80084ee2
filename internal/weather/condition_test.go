package weather

import "testing"

func TestMapCondition(t *testing.T) {
	cases := []struct {
		text string
		want Condition
	}{
		{"Sunny", ConditionSunny},
		{"Clear", ConditionSunny},
		{"Patchy rain possible", ConditionRainy},
		{"Light drizzle", ConditionRainy},
		{"Heavy showers", ConditionRainy},
		{"Thundery outbreaks possible", ConditionThunderstorm},
		{"Moderate or heavy snow showers", ConditionRainy}, // "shower" outranks "snow"
		{"Blowing snow", ConditionSnow},
		{"Blizzard", ConditionSnow},
		{"Overcast", ConditionCloudy},
		{"Cloudy", ConditionCloudy},
		{"Partly cloudy", ConditionCloudy}, // "cloud" outranks "partly"
		{"Partial fog", ConditionPartlyCloudy},
		{"Mist", ConditionPartlyCloudy}, // unmapped text defaults
		{"", ConditionPartlyCloudy},
	}

	for _, tc := range cases {
		if got := MapCondition(tc.text); got != tc.want {
			t.Errorf("MapCondition(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestMapConditionDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := MapCondition("Patchy light rain with thunder"); got != ConditionRainy {
			t.Fatalf("run %d: got %q, want %q", i, got, ConditionRainy)
		}
	}
}

func TestPrecipIntensity(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		chance int
		text   string
		want   int
	}{
		{"measured amount scaled", 2.5, 90, "Sunny", 25},
		{"measured amount capped", 15, 0, "", 100},
		{"chance fallback", 0, 40, "Cloudy", 40},
		{"chance capped", 0, 130, "", 100},
		{"rain text inference", 0, 0, "Light rain", 80},
		{"dry", 0, 0, "Sunny", 0},
	}

	for _, tc := range cases {
		if got := PrecipIntensity(tc.amount, tc.chance, tc.text); got != tc.want {
			t.Errorf("%s: PrecipIntensity(%v, %d, %q) = %d, want %d",
				tc.name, tc.amount, tc.chance, tc.text, got, tc.want)
		}
	}
}

func TestHourAt(t *testing.T) {
	snap := Snapshot{
		HourlyForecast: []HourSample{
			{Time: 8, Temperature: 60},
			{Time: 9, Temperature: 62},
			{Time: 9, Temperature: 99}, // duplicate hour; first match wins
		},
	}

	got, exact := snap.HourAt(9)
	if !exact || got.Temperature != 62 {
		t.Errorf("HourAt(9) = %+v exact=%v, want first match at 62", got, exact)
	}

	got, exact = snap.HourAt(21)
	if exact || got.Time != 8 {
		t.Errorf("HourAt(21) = %+v exact=%v, want fallback to first sample", got, exact)
	}

	if _, exact := (Snapshot{}).HourAt(9); exact {
		t.Error("HourAt on empty series reported an exact match")
	}
}
