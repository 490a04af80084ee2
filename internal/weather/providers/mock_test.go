package providers

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
}

func TestMockProviderDeterministic(t *testing.T) {
	p := NewMockProvider()
	p.now = fixedClock

	first, err := p.FetchSnapshot(context.Background(), "78701", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.FetchSnapshot(context.Background(), "78701", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("mock snapshots for the same location and date disagree")
	}
}

func TestMockProviderShape(t *testing.T) {
	p := NewMockProvider()
	p.now = fixedClock

	snap, err := p.FetchSnapshot(context.Background(), "Portland", time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Location != "Portland Area" {
		t.Errorf("location = %q", snap.Location)
	}
	if len(snap.HourlyForecast) != 24 {
		t.Fatalf("hourly samples = %d, want 24", len(snap.HourlyForecast))
	}
	if snap.HourlyForecast[0].Time != 14 {
		t.Errorf("first sample hour = %d, want current hour 14", snap.HourlyForecast[0].Time)
	}
	for i := 1; i < 24; i++ {
		want := (14 + i) % 24
		if snap.HourlyForecast[i].Time != want {
			t.Fatalf("sample %d hour = %d, want %d", i, snap.HourlyForecast[i].Time, want)
		}
	}

	// Present hour mirrors the top-level conditions.
	first := snap.HourlyForecast[0]
	if first.Temperature != snap.Temperature || first.Condition != snap.Condition {
		t.Errorf("first sample %+v does not mirror current conditions", first)
	}

	if snap.Temperature < 40 || snap.Temperature >= 80 {
		t.Errorf("temperature %d outside generator range", snap.Temperature)
	}
}

func TestMockProviderFutureDateStartsAtMidnight(t *testing.T) {
	p := NewMockProvider()
	p.now = fixedClock

	target := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	snap, err := p.FetchSnapshot(context.Background(), "Portland", target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, h := range snap.HourlyForecast {
		if h.Time != i {
			t.Fatalf("sample %d hour = %d, want %d", i, h.Time, i)
		}
	}
}

func TestMockProviderVariesByLocation(t *testing.T) {
	p := NewMockProvider()
	p.now = fixedClock

	a, _ := p.FetchSnapshot(context.Background(), "10001", time.Time{})
	b, _ := p.FetchSnapshot(context.Background(), "94103", time.Time{})
	if reflect.DeepEqual(a.HourlyForecast, b.HourlyForecast) {
		t.Error("different locations produced identical hourly series")
	}
}
