package loader

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/db"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/trips"
)

// Loader drives the two-phase load: dimensions first, then facts. It owns no
// connection lifecycle; the caller opens and closes the DB.
type Loader struct {
	db          db.DB
	d           dialect
	chunkSize   int
	commitEvery int
}

// Result reports what one load run did.
type Result struct {
	DimensionRows int64
	LocationRows  int64
	FactRows      int64
	FactChunks    int
	TripCount     int64

	DimensionPhase time.Duration
	KeyPhase       time.Duration
	LocationPhase  time.Duration
	FactPhase      time.Duration
}

// New builds a Loader for the given driver. chunkSize bounds rows per fact
// batch; commitEvery is the number of fact chunks committed per transaction.
func New(conn db.DB, driver string, chunkSize, commitEvery int) (*Loader, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if commitEvery < 1 {
		return nil, fmt.Errorf("commit interval must be positive, got %d", commitEvery)
	}
	return &Loader{db: conn, d: d, chunkSize: chunkSize, commitEvery: commitEvery}, nil
}

// Run loads the artifact at path into the star schema. Every insert is
// idempotent on its natural key, so rerunning after a partial failure only
// adds the rows the previous run did not commit.
func (l *Loader) Run(ctx context.Context, artifact string) (*Result, error) {
	dims, err := ExtractDimensions(ctx, artifact, l.chunkSize)
	if err != nil {
		return nil, fmt.Errorf("extract dimensions: %w", err)
	}

	res := &Result{}

	start := time.Now()
	if err := l.loadDimensions(ctx, dims, res); err != nil {
		return nil, fmt.Errorf("load dimensions: %w", err)
	}
	res.DimensionPhase = time.Since(start)

	start = time.Now()
	boroughIDs, zoneIDs, err := l.readSurrogateKeys(ctx, dims)
	if err != nil {
		return nil, fmt.Errorf("read surrogate keys: %w", err)
	}
	res.KeyPhase = time.Since(start)

	start = time.Now()
	if err := l.loadLocations(ctx, dims, boroughIDs, zoneIDs, res); err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	res.LocationPhase = time.Since(start)

	start = time.Now()
	if err := l.loadFacts(ctx, artifact, res); err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}
	res.FactPhase = time.Since(start)

	if err := l.db.QueryRow(ctx, l.d.countTrips).Scan(&res.TripCount); err != nil {
		return nil, fmt.Errorf("count trips: %w", err)
	}

	log.Printf("load: dims=%d locations=%d facts=%d chunks=%d trips_in_store=%d dim_phase=%s key_phase=%s loc_phase=%s fact_phase=%s",
		res.DimensionRows, res.LocationRows, res.FactRows, res.FactChunks, res.TripCount,
		res.DimensionPhase.Round(time.Millisecond), res.KeyPhase.Round(time.Millisecond),
		res.LocationPhase.Round(time.Millisecond), res.FactPhase.Round(time.Millisecond))
	return res, nil
}

// loadDimensions inserts vendors, payment types, rate codes, boroughs and
// service zones in a single committed transaction.
func (l *Loader) loadDimensions(ctx context.Context, dims *Dimensions, res *Result) error {
	tx, err := l.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var vendorRows [][]any
	for _, id := range sortedInts(dims.Vendors) {
		vendorRows = append(vendorRows, []any{id})
	}
	n, err := tx.InsertBatch(ctx, l.d.insertVendor, vendorRows)
	if err != nil {
		return fmt.Errorf("vendors: %w", err)
	}
	res.DimensionRows += n

	var paymentRows [][]any
	for _, id := range sortedInts(dims.PaymentTypes) {
		paymentRows = append(paymentRows, []any{id, domain.DescribePaymentType(id)})
	}
	n, err = tx.InsertBatch(ctx, l.d.insertPaymentType, paymentRows)
	if err != nil {
		return fmt.Errorf("payment types: %w", err)
	}
	res.DimensionRows += n

	var rateRows [][]any
	for _, id := range sortedInts(dims.RateCodes) {
		rateRows = append(rateRows, []any{id, domain.DescribeRateCode(id)})
	}
	n, err = tx.InsertBatch(ctx, l.d.insertRateCode, rateRows)
	if err != nil {
		return fmt.Errorf("rate codes: %w", err)
	}
	res.DimensionRows += n

	var boroughRows [][]any
	for _, name := range sortedStrings(dims.Boroughs) {
		boroughRows = append(boroughRows, []any{name})
	}
	n, err = tx.InsertBatch(ctx, l.d.insertBorough, boroughRows)
	if err != nil {
		return fmt.Errorf("boroughs: %w", err)
	}
	res.DimensionRows += n

	var zoneRows [][]any
	for _, name := range sortedStrings(dims.ServiceZones) {
		zoneRows = append(zoneRows, []any{name})
	}
	n, err = tx.InsertBatch(ctx, l.d.insertServiceZone, zoneRows)
	if err != nil {
		return fmt.Errorf("service zones: %w", err)
	}
	res.DimensionRows += n

	return tx.Commit(ctx)
}

// readSurrogateKeys queries back the generated borough and service zone ids.
// It runs only after the dimension transaction committed, so every name the
// artifact mentions has a row.
func (l *Loader) readSurrogateKeys(ctx context.Context, dims *Dimensions) (map[string]int, map[string]int, error) {
	boroughIDs, err := l.readKeyMap(ctx, l.d.selectBoroughs)
	if err != nil {
		return nil, nil, fmt.Errorf("boroughs: %w", err)
	}
	zoneIDs, err := l.readKeyMap(ctx, l.d.selectServiceZones)
	if err != nil {
		return nil, nil, fmt.Errorf("service zones: %w", err)
	}
	for name := range dims.Boroughs {
		if _, ok := boroughIDs[name]; !ok {
			return nil, nil, fmt.Errorf("borough %q missing after dimension load", name)
		}
	}
	for name := range dims.ServiceZones {
		if _, ok := zoneIDs[name]; !ok {
			return nil, nil, fmt.Errorf("service zone %q missing after dimension load", name)
		}
	}
	return boroughIDs, zoneIDs, nil
}

func (l *Loader) readKeyMap(ctx context.Context, query string) (map[string]int, error) {
	rows, err := l.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

// loadLocations inserts the location rows, resolving each triple's borough
// and service zone to its surrogate key, in one committed transaction.
func (l *Loader) loadLocations(ctx context.Context, dims *Dimensions, boroughIDs, zoneIDs map[string]int, res *Result) error {
	tx, err := l.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var rows [][]any
	for _, id := range sortedLocationIDs(dims.Locations) {
		z := dims.Locations[id]
		rows = append(rows, []any{id, z.Zone, boroughIDs[z.Borough], zoneIDs[z.ServiceZone]})
	}
	n, err := tx.InsertBatch(ctx, l.d.insertLocation, rows)
	if err != nil {
		return err
	}
	res.LocationRows = n

	return tx.Commit(ctx)
}

// loadFacts re-streams the artifact and inserts trips in chunks, committing
// every commitEvery chunks so a failure loses at most one commit interval.
func (l *Loader) loadFacts(ctx context.Context, artifact string, res *Result) error {
	var tx db.Tx
	chunksInTx := 0

	err := trips.ReadChunks(ctx, artifact, l.chunkSize, func(chunk []domain.Trip) error {
		if tx == nil {
			var err error
			if tx, err = l.db.BeginTx(ctx); err != nil {
				return err
			}
		}

		rows := make([][]any, 0, len(chunk))
		for i := range chunk {
			rows = append(rows, tripRow(&chunk[i]))
		}
		n, err := tx.InsertBatch(ctx, l.d.insertTrip, rows)
		if err != nil {
			return err
		}
		res.FactRows += n
		res.FactChunks++
		chunksInTx++
		log.Printf("load: chunk=%d rows=%d inserted=%d", res.FactChunks, len(chunk), n)

		if chunksInTx == l.commitEvery {
			if err := tx.Commit(ctx); err != nil {
				return err
			}
			tx = nil
			chunksInTx = 0
		}
		return nil
	})
	if err != nil {
		if tx != nil {
			tx.Rollback(ctx)
		}
		return err
	}

	if tx != nil {
		return tx.Commit(ctx)
	}
	return nil
}

// tripRow binds one trip in tripInsertColumns order. Timestamps go over the
// wire as formatted strings so all three drivers store the same value.
func tripRow(t *domain.Trip) []any {
	return []any{
		t.VendorID,
		t.PickupTime.Format(domain.TimeLayout),
		t.DropoffTime.Format(domain.TimeLayout),
		t.PassengerCount,
		t.TripDistance,
		t.RateCodeID,
		t.StoreAndFwd,
		t.PULocationID,
		t.DOLocationID,
		t.PaymentType,
		t.FareAmount,
		t.Extra,
		t.MTATax,
		t.TipAmount,
		t.TollsAmount,
		t.ImprovementSurcharge,
		t.TotalAmount,
		t.DurationMin,
		t.AvgSpeedMPH,
		t.FarePerMile,
	}
}
