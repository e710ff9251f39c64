// Package pipeline implements the cleaning stage of the ingestion flow:
// validation of raw trip rows, derived-feature computation, zone resolution,
// and the write of the cleaned intermediate artifact. Everything streams row
// by row so input files larger than memory are handled; the only state that
// grows is the de-duplication hash set, bounded by the number of distinct
// trips.
package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
)

// Skip reasons recorded by the cleaner. Row-level defects are never errors;
// they are excluded and counted under one of these.
const (
	reasonBadTimestamp = "bad_timestamp"
	reasonBadNumber    = "numeric_parse_error"
	reasonDuration     = "duration_out_of_range"
	reasonDistance     = "nonpositive_distance"
	reasonFare         = "nonpositive_fare"
	reasonDuplicate    = "duplicate_key"
)

// CleanStats aggregates the counters reported by the validator/cleaner.
// Cleaned+Removed always equals Original.
type CleanStats struct {
	Original int            // raw rows read
	Cleaned  int            // rows retained by the validator/cleaner
	Removed  int            // rows excluded by the validator/cleaner
	Reasons  map[string]int // per-reason exclusion counts
}

// Cleaner validates raw rows and de-duplicates them on the 5-field logical
// key. It keeps only xxh3 hashes of the composite key, so memory stays
// bounded by the number of distinct trips rather than by row width.
type Cleaner struct {
	seen  map[uint64]struct{}
	stats CleanStats
}

func NewCleaner() *Cleaner {
	return &Cleaner{
		seen:  make(map[uint64]struct{}, 1<<16),
		stats: CleanStats{Reasons: map[string]int{}},
	}
}

// Stats returns a copy of the accumulated counters.
func (c *Cleaner) Stats() CleanStats { return c.stats }

// Clean validates one raw row (fields aligned to the raw column order) and
// returns the parsed trip, or ok=false plus the exclusion reason. The first
// occurrence of a dedup key wins; later ones are excluded.
func (c *Cleaner) Clean(fields []string) (*domain.Trip, bool) {
	c.stats.Original++

	t, reason := parseRawTrip(fields)
	if t == nil {
		return c.drop(reason)
	}

	// De-duplicate before the range filters: the first occurrence of a key
	// claims it even when that occurrence is itself filtered out, so a later
	// row with the same key can never sneak back in.
	h := xxh3.HashString(t.DedupKey())
	if _, dup := c.seen[h]; dup {
		return c.drop(reasonDuplicate)
	}
	c.seen[h] = struct{}{}

	// Rounded rational-minute difference, then range filters.
	t.DurationMin = round2(t.DropoffTime.Sub(t.PickupTime).Minutes())
	if t.DurationMin <= 0 || t.DurationMin >= 600 {
		return c.drop(reasonDuration)
	}
	if t.TripDistance <= 0 {
		return c.drop(reasonDistance)
	}
	if t.FareAmount <= 0 {
		return c.drop(reasonFare)
	}

	c.stats.Cleaned++
	return t, true
}

func (c *Cleaner) drop(reason string) (*domain.Trip, bool) {
	c.stats.Removed++
	c.stats.Reasons[reason]++
	return nil, false
}

// parseRawTrip converts the raw string fields into a typed trip. It returns
// a nil trip and a reason when any field cannot be coerced; the coercing
// timestamp parser yields "unparseable" rather than panicking or erroring.
func parseRawTrip(fields []string) (*domain.Trip, string) {
	t := &domain.Trip{}

	var ok bool
	if t.PickupTime, ok = parseTimestamp(fields[rawPickupTime]); !ok {
		return nil, reasonBadTimestamp
	}
	if t.DropoffTime, ok = parseTimestamp(fields[rawDropoffTime]); !ok {
		return nil, reasonBadTimestamp
	}

	ints := []struct {
		dst *int
		idx int
	}{
		{&t.VendorID, rawVendorID},
		{&t.PassengerCount, rawPassengerCount},
		{&t.RateCodeID, rawRateCodeID},
		{&t.PULocationID, rawPULocationID},
		{&t.DOLocationID, rawDOLocationID},
		{&t.PaymentType, rawPaymentType},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(fields[f.idx]))
		if err != nil {
			return nil, reasonBadNumber
		}
		*f.dst = v
	}

	floats := []struct {
		dst *float64
		idx int
	}{
		{&t.TripDistance, rawTripDistance},
		{&t.FareAmount, rawFareAmount},
		{&t.Extra, rawExtra},
		{&t.MTATax, rawMTATax},
		{&t.TipAmount, rawTipAmount},
		{&t.TollsAmount, rawTollsAmount},
		{&t.ImprovementSurcharge, rawImprovementSurcharge},
		{&t.TotalAmount, rawTotalAmount},
	}
	for _, f := range floats {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[f.idx]), 64)
		if err != nil {
			return nil, reasonBadNumber
		}
		*f.dst = v
	}

	t.StoreAndFwd = strings.TrimSpace(fields[rawStoreAndFwd])
	return t, ""
}

// parseTimestamp coerces a timestamp string, trying the taxi export layout
// first and RFC3339 as a fallback. ok=false means unparseable.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(domain.TimeLayout, s); err == nil {
		return ts, true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
