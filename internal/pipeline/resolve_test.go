package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
)

func writeZoneCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zones.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadZoneLookup(t *testing.T) {
	path := writeZoneCSV(t, `"LocationID","Borough","Zone","service_zone"
1,"EWR","Newark Airport","EWR"
4,"Manhattan","Alphabet City","Yellow Zone"
264,"Unknown","NV","N/A"
`)
	lookup, err := LoadZoneLookup(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(lookup) != 3 {
		t.Fatalf("want 3 zones, got %d", len(lookup))
	}
	z := lookup[4]
	if z.Borough != "Manhattan" || z.Zone != "Alphabet City" || z.ServiceZone != "Yellow Zone" {
		t.Fatalf("zone 4: %+v", z)
	}
}

func TestLoadZoneLookupStripsByteOrderMark(t *testing.T) {
	path := writeZoneCSV(t, "\uFEFFLocationID,Borough,Zone,service_zone\n"+
		"7,Queens,Astoria,Boro Zone\n")
	lookup, err := LoadZoneLookup(path)
	if err != nil {
		t.Fatal(err)
	}
	z, ok := lookup[7]
	if !ok || z.Zone != "Astoria" {
		t.Fatalf("BOM header broke the LocationID column: %+v", lookup)
	}
}

func TestLoadZoneLookupNormalizesEmptyNames(t *testing.T) {
	path := writeZoneCSV(t, `LocationID,Borough,Zone,service_zone
5,,Arden Heights,
`)
	lookup, err := LoadZoneLookup(path)
	if err != nil {
		t.Fatal(err)
	}
	z := lookup[5]
	if z.Borough != domain.Unknown || z.ServiceZone != domain.Unknown {
		t.Fatalf("empty names should normalize: %+v", z)
	}
	if z.Zone != "Arden Heights" {
		t.Fatalf("zone name lost: %+v", z)
	}
}

func TestLoadZoneLookupSkipsBadIDs(t *testing.T) {
	path := writeZoneCSV(t, `LocationID,Borough,Zone,service_zone
abc,Queens,Astoria,Boro Zone
7,Queens,Astoria,Boro Zone
`)
	lookup, err := LoadZoneLookup(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(lookup) != 1 {
		t.Fatalf("non-numeric id should be skipped, got %d rows", len(lookup))
	}
}

func TestLoadZoneLookupMissingColumn(t *testing.T) {
	path := writeZoneCSV(t, `LocationID,Borough,Zone
1,EWR,Newark Airport
`)
	if _, err := LoadZoneLookup(path); err == nil {
		t.Fatal("want error for missing service_zone column")
	}
}

func TestResolveZonesLeftJoin(t *testing.T) {
	lookup := domain.ZoneLookup{
		151: {Zone: "Manhattanville", Borough: "Manhattan", ServiceZone: "Boro Zone"},
	}

	trip := &domain.Trip{PULocationID: 151, DOLocationID: 999}
	ResolveZones(trip, lookup)

	if trip.PUBorough != "Manhattan" || trip.PUZone != "Manhattanville" || trip.PUServiceZone != "Boro Zone" {
		t.Fatalf("pickup side: %+v", trip)
	}
	// Unmatched dropoff keeps the row, filled with Unknown.
	if trip.DOBorough != domain.Unknown || trip.DOZone != domain.Unknown || trip.DOServiceZone != domain.Unknown {
		t.Fatalf("dropoff side: %+v", trip)
	}
}
