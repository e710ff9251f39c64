// Package trips owns the intermediate artifact: the cleaned, enriched,
// resolved trip dataset persisted as CSV between the pipeline stage and the
// bulk loader. The column set of this file is the contract the loader
// depends on; both sides of the handoff go through this package.
package trips

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
)

// ArtifactColumns is the exact header of the intermediate artifact, in
// write order.
var ArtifactColumns = []string{
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
	"trip_duration_min",
	"avg_speed_mph",
	"fare_per_mile",
	"PU_Borough",
	"PU_Zone",
	"PU_ServiceZone",
	"DO_Borough",
	"DO_Zone",
	"DO_ServiceZone",
}

// ArtifactWriter streams resolved trips into the artifact file.
type ArtifactWriter struct {
	f    *os.File
	w    *csv.Writer
	rows int
	rec  []string
}

// NewArtifactWriter creates (or truncates) the artifact at path and writes
// the header row.
func NewArtifactWriter(path string) (*ArtifactWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create artifact dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(ArtifactColumns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write artifact header: %w", err)
	}
	return &ArtifactWriter{f: f, w: w, rec: make([]string, len(ArtifactColumns))}, nil
}

// Write appends one resolved trip.
func (a *ArtifactWriter) Write(t *domain.Trip) error {
	r := a.rec
	r[0] = strconv.Itoa(t.VendorID)
	r[1] = t.PickupTime.Format(domain.TimeLayout)
	r[2] = t.DropoffTime.Format(domain.TimeLayout)
	r[3] = strconv.Itoa(t.PassengerCount)
	r[4] = formatFloat(t.TripDistance)
	r[5] = strconv.Itoa(t.RateCodeID)
	r[6] = t.StoreAndFwd
	r[7] = strconv.Itoa(t.PULocationID)
	r[8] = strconv.Itoa(t.DOLocationID)
	r[9] = strconv.Itoa(t.PaymentType)
	r[10] = formatFloat(t.FareAmount)
	r[11] = formatFloat(t.Extra)
	r[12] = formatFloat(t.MTATax)
	r[13] = formatFloat(t.TipAmount)
	r[14] = formatFloat(t.TollsAmount)
	r[15] = formatFloat(t.ImprovementSurcharge)
	r[16] = formatFloat(t.TotalAmount)
	r[17] = formatFloat(t.DurationMin)
	r[18] = formatFloat(t.AvgSpeedMPH)
	r[19] = formatFloat(t.FarePerMile)
	r[20] = t.PUBorough
	r[21] = t.PUZone
	r[22] = t.PUServiceZone
	r[23] = t.DOBorough
	r[24] = t.DOZone
	r[25] = t.DOServiceZone

	if err := a.w.Write(r); err != nil {
		return fmt.Errorf("write artifact row: %w", err)
	}
	a.rows++
	return nil
}

// Rows returns the number of data rows written so far.
func (a *ArtifactWriter) Rows() int { return a.rows }

// Close flushes and closes the artifact file.
func (a *ArtifactWriter) Close() error {
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		_ = a.f.Close()
		return fmt.Errorf("flush artifact: %w", err)
	}
	return a.f.Close()
}

// ReadChunks streams the artifact at path in chunks of at most chunkSize
// trips, invoking fn per chunk. The chunk slice is reused between calls;
// fn must not retain it. The stream is single-pass: callers needing a
// second pass call ReadChunks again, which reopens the file.
//
// A missing file and a header that does not match ArtifactColumns are both
// fatal: the artifact is this pipeline's own output, so disagreement means
// the handoff contract is broken.
func ReadChunks(ctx context.Context, path string, chunkSize int, fn func(chunk []domain.Trip) error) error {
	if chunkSize <= 0 {
		return fmt.Errorf("chunk size must be > 0")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = len(ArtifactColumns)

	hdr, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read artifact header: %w", err)
	}
	for i, want := range ArtifactColumns {
		if strings.TrimSpace(hdr[i]) != want {
			return fmt.Errorf("artifact: column %d is %q, want %q", i, hdr[i], want)
		}
	}

	chunk := make([]domain.Trip, 0, chunkSize)
	line := 1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read artifact: %w", err)
		}
		line++

		var t domain.Trip
		if err := parseArtifactRow(rec, &t); err != nil {
			return fmt.Errorf("artifact line %d: %w", line, err)
		}
		chunk = append(chunk, t)

		if len(chunk) == chunkSize {
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = chunk[:0]
		}
	}
	if len(chunk) > 0 {
		return fn(chunk)
	}
	return nil
}

func parseArtifactRow(rec []string, t *domain.Trip) error {
	var err error
	atoi := func(i int) int {
		if err != nil {
			return 0
		}
		var v int
		v, err = strconv.Atoi(rec[i])
		return v
	}
	atof := func(i int) float64 {
		if err != nil {
			return 0
		}
		var v float64
		v, err = strconv.ParseFloat(rec[i], 64)
		return v
	}

	t.VendorID = atoi(0)
	t.PassengerCount = atoi(3)
	t.TripDistance = atof(4)
	t.RateCodeID = atoi(5)
	t.StoreAndFwd = rec[6]
	t.PULocationID = atoi(7)
	t.DOLocationID = atoi(8)
	t.PaymentType = atoi(9)
	t.FareAmount = atof(10)
	t.Extra = atof(11)
	t.MTATax = atof(12)
	t.TipAmount = atof(13)
	t.TollsAmount = atof(14)
	t.ImprovementSurcharge = atof(15)
	t.TotalAmount = atof(16)
	t.DurationMin = atof(17)
	t.AvgSpeedMPH = atof(18)
	t.FarePerMile = atof(19)
	if err != nil {
		return err
	}

	if t.PickupTime, err = parseArtifactTime(rec[1]); err != nil {
		return err
	}
	if t.DropoffTime, err = parseArtifactTime(rec[2]); err != nil {
		return err
	}

	t.PUBorough, t.PUZone, t.PUServiceZone = rec[20], rec[21], rec[22]
	t.DOBorough, t.DOZone, t.DOServiceZone = rec[23], rec[24], rec[25]
	return nil
}
