package loader

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/trips"
)

// Dimensions holds the distinct dimension values found in one pass over the
// cleaned artifact. Memory use is bounded by the number of distinct values
// and locations, never by the number of trip rows — that is the point of
// streaming the artifact in chunks instead of loading it whole.
type Dimensions struct {
	Vendors      map[int]struct{}
	PaymentTypes map[int]struct{}
	RateCodes    map[int]struct{}
	Boroughs     map[string]struct{}
	ServiceZones map[string]struct{}

	// Locations maps a location id to its descriptive triple. First-seen
	// wins: each id must resolve to exactly one triple for FK assignment.
	Locations map[int]domain.Zone
}

// ExtractDimensions streams the artifact once, in chunks of chunkSize rows,
// and accumulates every distinct dimension value plus the location map.
func ExtractDimensions(ctx context.Context, artifact string, chunkSize int) (*Dimensions, error) {
	start := time.Now()
	dims := &Dimensions{
		Vendors:      map[int]struct{}{},
		PaymentTypes: map[int]struct{}{},
		RateCodes:    map[int]struct{}{},
		Boroughs:     map[string]struct{}{},
		ServiceZones: map[string]struct{}{},
		Locations:    map[int]domain.Zone{},
	}

	var rows int64
	err := trips.ReadChunks(ctx, artifact, chunkSize, func(chunk []domain.Trip) error {
		for i := range chunk {
			t := &chunk[i]
			dims.Vendors[t.VendorID] = struct{}{}
			dims.PaymentTypes[t.PaymentType] = struct{}{}
			dims.RateCodes[t.RateCodeID] = struct{}{}

			dims.Boroughs[t.PUBorough] = struct{}{}
			dims.Boroughs[t.DOBorough] = struct{}{}
			dims.ServiceZones[t.PUServiceZone] = struct{}{}
			dims.ServiceZones[t.DOServiceZone] = struct{}{}

			if _, seen := dims.Locations[t.PULocationID]; !seen {
				dims.Locations[t.PULocationID] = domain.Zone{
					Zone: t.PUZone, Borough: t.PUBorough, ServiceZone: t.PUServiceZone,
				}
			}
			if _, seen := dims.Locations[t.DOLocationID]; !seen {
				dims.Locations[t.DOLocationID] = domain.Zone{
					Zone: t.DOZone, Borough: t.DOBorough, ServiceZone: t.DOServiceZone,
				}
			}
		}
		rows += int64(len(chunk))
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("extract: rows=%d vendors=%d payment_types=%d rate_codes=%d boroughs=%d service_zones=%d locations=%d duration=%s",
		rows, len(dims.Vendors), len(dims.PaymentTypes), len(dims.RateCodes),
		len(dims.Boroughs), len(dims.ServiceZones), len(dims.Locations),
		time.Since(start).Round(time.Millisecond))
	return dims, nil
}

// sortedInts and sortedStrings give the loader a deterministic insert order;
// the store does not care, but stable logs and tests do.
func sortedInts(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sortedStrings(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedLocationIDs(m map[int]domain.Zone) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
