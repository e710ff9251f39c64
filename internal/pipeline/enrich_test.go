package pipeline

import (
	"testing"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
)

func TestEnrichComputesDerivedFeatures(t *testing.T) {
	e := &Enricher{}
	trip := &domain.Trip{DurationMin: 10, TripDistance: 2, FareAmount: 10}

	if !e.Enrich(trip) {
		t.Fatal("plausible trip dropped")
	}
	if trip.AvgSpeedMPH != 12 {
		t.Fatalf("speed: got %v want 12", trip.AvgSpeedMPH)
	}
	if trip.FarePerMile != 5 {
		t.Fatalf("fare per mile: got %v want 5", trip.FarePerMile)
	}
	if e.Removed != 0 {
		t.Fatalf("removed: got %d", e.Removed)
	}
}

func TestEnrichSpeedFilter(t *testing.T) {
	cases := []struct {
		name        string
		duration    float64
		distance    float64
		keep        bool
	}{
		{"too fast", 5, 10, false},       // 120 mph
		{"too slow", 60, 0.5, false},     // 0.5 mph
		{"lower bound", 60, 1, true},     // exactly 1 mph
		{"upper bound", 60, 80, true},    // exactly 80 mph
		{"typical", 10, 2, true},         // 12 mph
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := &Enricher{}
			trip := &domain.Trip{DurationMin: tc.duration, TripDistance: tc.distance, FareAmount: 10}
			if got := e.Enrich(trip); got != tc.keep {
				t.Fatalf("keep: got %v want %v (speed %v)", got, tc.keep, trip.AvgSpeedMPH)
			}
			if !tc.keep && e.Removed != 1 {
				t.Fatalf("removed counter: got %d", e.Removed)
			}
			if !tc.keep && trip.FarePerMile != 0 {
				t.Fatalf("fare per mile computed for dropped row: %v", trip.FarePerMile)
			}
		})
	}
}
