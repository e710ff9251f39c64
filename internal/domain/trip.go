// Package domain holds the business objects shared by the cleaning pipeline
// and the bulk loader: the trip record as it accumulates derived and resolved
// fields, the zone lookup table, and the static dimension descriptions.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used by the yellow-taxi trip exports.
const TimeLayout = "2006-01-02 15:04:05"

// Unknown is the placeholder written into every zone/borough field that the
// lookup table could not resolve. No resolved trip carries an empty name.
const Unknown = "Unknown"

// Trip is one trip record. The cleaner fills the raw columns and DurationMin,
// the enricher adds AvgSpeedMPH and FarePerMile, and the resolver fills the
// six borough/zone names. A fully resolved Trip is what gets persisted to the
// intermediate artifact and later loaded as a fact row.
type Trip struct {
	VendorID       int
	PickupTime     time.Time
	DropoffTime    time.Time
	PassengerCount int
	TripDistance   float64
	RateCodeID     int
	StoreAndFwd    string
	PULocationID   int
	DOLocationID   int
	PaymentType    int

	FareAmount           float64
	Extra                float64
	MTATax               float64
	TipAmount            float64
	TollsAmount          float64
	ImprovementSurcharge float64
	TotalAmount          float64

	DurationMin float64
	AvgSpeedMPH float64
	FarePerMile float64

	PUBorough     string
	PUZone        string
	PUServiceZone string
	DOBorough     string
	DOZone        string
	DOServiceZone string
}

// DedupKey builds the logical business key used for de-duplication:
// (vendor, pickup, dropoff, pickup location, dropoff location). Two retained
// trips never share this key even when other columns differ.
func (t *Trip) DedupKey() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(t.VendorID))
	b.WriteByte('\x1f')
	b.WriteString(t.PickupTime.Format(TimeLayout))
	b.WriteByte('\x1f')
	b.WriteString(t.DropoffTime.Format(TimeLayout))
	b.WriteByte('\x1f')
	b.WriteString(strconv.Itoa(t.PULocationID))
	b.WriteByte('\x1f')
	b.WriteString(strconv.Itoa(t.DOLocationID))
	return b.String()
}
