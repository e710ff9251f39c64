package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
)

// LoadZoneLookup reads the taxi zone reference CSV (LocationID, Borough,
// Zone, service_zone) into a lookup table. Rows with a non-numeric location
// id are skipped; empty name fields normalize to "Unknown" so the resolver
// never emits an empty name.
func LoadZoneLookup(path string) (domain.ZoneLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zone lookup: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read zone lookup header: %w", err)
	}
	idIx, boroughIx, zoneIx, svcIx := -1, -1, -1, -1
	for i, h := range hdr {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")) {
		case "LocationID":
			idIx = i
		case "Borough":
			boroughIx = i
		case "Zone":
			zoneIx = i
		case "service_zone":
			svcIx = i
		}
	}
	if idIx < 0 || boroughIx < 0 || zoneIx < 0 || svcIx < 0 {
		return nil, fmt.Errorf("zone lookup: header must contain LocationID, Borough, Zone, service_zone")
	}

	lookup := domain.ZoneLookup{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read zone lookup: %w", err)
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[idIx]))
		if err != nil {
			continue
		}
		lookup[id] = domain.Zone{
			Zone:        orUnknown(rec[zoneIx]),
			Borough:     orUnknown(rec[boroughIx]),
			ServiceZone: orUnknown(rec[svcIx]),
		}
	}
	return lookup, nil
}

// ResolveZones joins t against the lookup table on both location ids,
// left-join style: never drops the row, fills unmatched sides with Unknown.
func ResolveZones(t *domain.Trip, lookup domain.ZoneLookup) {
	pu := lookup.Resolve(t.PULocationID)
	t.PUBorough, t.PUZone, t.PUServiceZone = pu.Borough, pu.Zone, pu.ServiceZone

	do := lookup.Resolve(t.DOLocationID)
	t.DOBorough, t.DOZone, t.DOServiceZone = do.Borough, do.Zone, do.ServiceZone
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Unknown
	}
	return s
}
