package pipeline

import (
	"testing"
)

// rawRow returns a valid raw field slice in canonical order: a 2.0-mile,
// 10-minute trip with a $10 fare. Tests mutate individual fields.
func rawRow() []string {
	return []string{
		"1",                     // VendorID
		"2019-01-01 00:00:00",   // pickup
		"2019-01-01 00:10:00",   // dropoff
		"1",                     // passenger_count
		"2.0",                   // trip_distance
		"1",                     // RatecodeID
		"N",                     // store_and_fwd_flag
		"151",                   // PULocationID
		"239",                   // DOLocationID
		"1",                     // payment_type
		"10.0",                  // fare_amount
		"0.5", "0.5", "1.0",     // extra, mta_tax, tip_amount
		"0", "0.3", "12.3",      // tolls, improvement_surcharge, total
	}
}

func TestCleanKeepsValidRow(t *testing.T) {
	c := NewCleaner()
	trip, ok := c.Clean(rawRow())
	if !ok {
		t.Fatalf("valid row dropped, reasons=%v", c.Stats().Reasons)
	}
	if trip.DurationMin != 10 {
		t.Fatalf("duration: got %v want 10", trip.DurationMin)
	}
	if trip.VendorID != 1 || trip.PULocationID != 151 || trip.DOLocationID != 239 {
		t.Fatalf("ids misparsed: %+v", trip)
	}
	if trip.StoreAndFwd != "N" {
		t.Fatalf("store_and_fwd: got %q", trip.StoreAndFwd)
	}
	st := c.Stats()
	if st.Original != 1 || st.Cleaned != 1 || st.Removed != 0 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestCleanDropReasons(t *testing.T) {
	cases := []struct {
		name   string
		mutate func([]string)
		reason string
	}{
		{"bad pickup timestamp", func(r []string) { r[rawPickupTime] = "garbage" }, reasonBadTimestamp},
		{"empty dropoff timestamp", func(r []string) { r[rawDropoffTime] = "" }, reasonBadTimestamp},
		{"unparseable fare", func(r []string) { r[rawFareAmount] = "ten" }, reasonBadNumber},
		{"unparseable vendor", func(r []string) { r[rawVendorID] = "" }, reasonBadNumber},
		{"negative duration", func(r []string) { r[rawDropoffTime] = "2018-12-31 23:55:00" }, reasonDuration},
		{"zero duration", func(r []string) { r[rawDropoffTime] = r[rawPickupTime] }, reasonDuration},
		{"duration at 600", func(r []string) { r[rawDropoffTime] = "2019-01-01 10:00:00" }, reasonDuration},
		{"zero distance", func(r []string) { r[rawTripDistance] = "0" }, reasonDistance},
		{"negative distance", func(r []string) { r[rawTripDistance] = "-1.2" }, reasonDistance},
		{"zero fare", func(r []string) { r[rawFareAmount] = "0" }, reasonFare},
		{"negative fare", func(r []string) { r[rawFareAmount] = "-5" }, reasonFare},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCleaner()
			row := rawRow()
			tc.mutate(row)
			if _, ok := c.Clean(row); ok {
				t.Fatal("row should have been dropped")
			}
			st := c.Stats()
			if st.Reasons[tc.reason] != 1 {
				t.Fatalf("want reason %q, got %v", tc.reason, st.Reasons)
			}
			if st.Cleaned+st.Removed != st.Original {
				t.Fatalf("accounting broken: %+v", st)
			}
		})
	}
}

func TestCleanFirstSeenWinsOnDuplicates(t *testing.T) {
	c := NewCleaner()

	first := rawRow()
	first[rawFareAmount] = "10.0"
	if _, ok := c.Clean(first); !ok {
		t.Fatal("first occurrence dropped")
	}

	// Same 5-field key, different fare: still a duplicate.
	second := rawRow()
	second[rawFareAmount] = "99.0"
	if _, ok := c.Clean(second); ok {
		t.Fatal("duplicate kept")
	}

	// Different dropoff location breaks the key.
	third := rawRow()
	third[rawDOLocationID] = "7"
	if _, ok := c.Clean(third); !ok {
		t.Fatal("distinct key dropped")
	}

	st := c.Stats()
	if st.Reasons[reasonDuplicate] != 1 || st.Cleaned != 2 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestCleanFilteredFirstOccurrenceStillClaimsKey(t *testing.T) {
	c := NewCleaner()

	// First occurrence of the key fails the fare filter.
	first := rawRow()
	first[rawFareAmount] = "0"
	if _, ok := c.Clean(first); ok {
		t.Fatal("zero-fare row kept")
	}

	// A later row with the same 5-field key is still a duplicate, even
	// though the first occurrence never made it into the output.
	second := rawRow()
	second[rawFareAmount] = "99.0"
	if _, ok := c.Clean(second); ok {
		t.Fatal("same-key row kept after filtered first occurrence")
	}

	st := c.Stats()
	if st.Reasons[reasonFare] != 1 || st.Reasons[reasonDuplicate] != 1 {
		t.Fatalf("reasons: %v", st.Reasons)
	}
	if st.Cleaned != 0 || st.Removed != 2 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestCleanAcceptsRFC3339Timestamps(t *testing.T) {
	c := NewCleaner()
	row := rawRow()
	row[rawPickupTime] = "2019-01-01T00:00:00Z"
	row[rawDropoffTime] = "2019-01-01T00:10:00Z"
	trip, ok := c.Clean(row)
	if !ok {
		t.Fatalf("rfc3339 row dropped, reasons=%v", c.Stats().Reasons)
	}
	if trip.DurationMin != 10 {
		t.Fatalf("duration: got %v", trip.DurationMin)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{10.004, 10.0},
		{3.14159, 3.14},
		{-2.344, -2.34},
		{12, 12},
		{0, 0},
	}
	for _, tc := range cases {
		if got := round2(tc.in); got != tc.want {
			t.Fatalf("round2(%v): got %v want %v", tc.in, got, tc.want)
		}
	}
}
