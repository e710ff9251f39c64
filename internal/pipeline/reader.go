package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Canonical raw column order. The reader re-aligns whatever order the source
// file uses into this one, so the rest of the stage can index by constant.
const (
	rawVendorID = iota
	rawPickupTime
	rawDropoffTime
	rawPassengerCount
	rawTripDistance
	rawRateCodeID
	rawStoreAndFwd
	rawPULocationID
	rawDOLocationID
	rawPaymentType
	rawFareAmount
	rawExtra
	rawMTATax
	rawTipAmount
	rawTollsAmount
	rawImprovementSurcharge
	rawTotalAmount
	rawColumnCount
)

// rawColumnNames maps canonical indices to the source header names of the
// yellow-taxi export. Extra source columns (congestion_surcharge) are
// tolerated and ignored.
var rawColumnNames = [rawColumnCount]string{
	"VendorID",
	"tpep_pickup_datetime",
	"tpep_dropoff_datetime",
	"passenger_count",
	"trip_distance",
	"RatecodeID",
	"store_and_fwd_flag",
	"PULocationID",
	"DOLocationID",
	"payment_type",
	"fare_amount",
	"extra",
	"mta_tax",
	"tip_amount",
	"tolls_amount",
	"improvement_surcharge",
	"total_amount",
}

// StreamRaw opens the raw trips CSV, validates that every expected column is
// present, and calls fn once per data row with the fields re-aligned to the
// canonical order. A missing column is fatal and reported before fn ever
// runs; short rows reach fn padded with empty strings so the cleaner can
// count them as defects instead of aborting the run.
func StreamRaw(ctx context.Context, path string, fn func(fields []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open trips csv: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.ReuseRecord = true
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read trips header: %w", err)
	}
	colIx, err := mapRawHeader(hdr)
	if err != nil {
		return err
	}

	fields := make([]string, rawColumnCount)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read trips csv: %w", err)
		}
		for t := 0; t < rawColumnCount; t++ {
			si := colIx[t]
			if si < len(rec) {
				fields[t] = rec[si]
			} else {
				fields[t] = ""
			}
		}
		if err := fn(fields); err != nil {
			return err
		}
	}
}

// mapRawHeader builds the dest→source index mapping for the canonical
// columns. Every canonical column must exist in the header.
func mapRawHeader(hdr []string) ([rawColumnCount]int, error) {
	var colIx [rawColumnCount]int
	srcToIdx := make(map[string]int, len(hdr))
	for i, h := range hdr {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		srcToIdx[h] = i
	}
	for t, name := range rawColumnNames {
		si, ok := srcToIdx[name]
		if !ok {
			return colIx, fmt.Errorf("trips csv: missing column %q", name)
		}
		colIx[t] = si
	}
	return colIx, nil
}
