package pipeline

import (
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
)

// Enricher computes derived trip features and applies the speed plausibility
// filter. It is a pure stage: no I/O, only the Removed counter as state.
type Enricher struct {
	Removed int // rows dropped by the plausibility filter
}

// Plausible speed bounds in miles per hour. Values outside are dropped,
// never clamped.
const (
	minPlausibleSpeed = 1.0
	maxPlausibleSpeed = 80.0
)

// Enrich fills AvgSpeedMPH and FarePerMile on t and reports whether the row
// survives the plausibility filter. The order is deliberate: speed is
// computed first and filtered, fare-per-mile is computed only for survivors
// (it carries no sanity bound of its own).
func (e *Enricher) Enrich(t *domain.Trip) bool {
	if t.DurationMin > 0 {
		t.AvgSpeedMPH = round2(t.TripDistance / (t.DurationMin / 60))
	} else {
		t.AvgSpeedMPH = 0
	}

	if t.AvgSpeedMPH < minPlausibleSpeed || t.AvgSpeedMPH > maxPlausibleSpeed {
		e.Removed++
		return false
	}

	if t.TripDistance > 0 {
		t.FarePerMile = round2(t.FareAmount / t.TripDistance)
	} else {
		t.FarePerMile = 0
	}
	return true
}
