// Package api exposes the loaded star schema over HTTP: trip listings with a
// time window, aggregate summaries, and a top-expensive ranking.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/db"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/domain"
)

// tripListLimit caps how many rows a window query returns.
const tripListLimit = 500

// rankPoolSize is how many rows the top-expensive endpoint pulls before
// ranking them in process.
const rankPoolSize = 1000

// TripRecord is one fact row as served to clients.
type TripRecord struct {
	TripID          int64   `json:"trip_id"`
	VendorID        int     `json:"vendor_id"`
	PickupDatetime  string  `json:"pickup_datetime"`
	DropoffDatetime string  `json:"dropoff_datetime"`
	PassengerCount  int     `json:"passenger_count"`
	TripDistance    float64 `json:"trip_distance"`
	FareAmount      float64 `json:"fare_amount"`
	TotalAmount     float64 `json:"total_amount"`
	TripDurationMin float64 `json:"trip_duration_min"`
	AvgSpeedMPH     float64 `json:"avg_speed_mph"`
	FarePerMile     float64 `json:"fare_per_mile"`
}

// Fare ranks a record for the top-expensive sort.
func (t TripRecord) Fare() float64 { return t.FareAmount }

// Summary is the aggregate view over all loaded trips.
type Summary struct {
	AvgFare     float64 `json:"avg_fare"`
	AvgDistance float64 `json:"avg_distance"`
	TotalTrips  int64   `json:"total_trips"`
}

// sortColumns is the whitelist for the trips endpoint's sort parameter.
// Anything else falls back to pickup_datetime rather than reaching the SQL.
var sortColumns = map[string]bool{
	"pickup_datetime":   true,
	"dropoff_datetime":  true,
	"fare_amount":       true,
	"total_amount":      true,
	"trip_distance":     true,
	"trip_duration_min": true,
	"avg_speed_mph":     true,
}

const tripSelectColumns = `trip_id, vendor_id, pickup_datetime, dropoff_datetime,
	passenger_count, trip_distance, fare_amount, total_amount,
	trip_duration_min, avg_speed_mph, fare_per_mile`

// Repository answers the API's read queries against any of the supported
// drivers.
type Repository struct {
	db     db.DB
	driver string
}

func NewRepository(conn db.DB, driver string) (*Repository, error) {
	switch strings.ToLower(driver) {
	case "postgres", "sqlite", "mysql", "mssql":
	default:
		return nil, fmt.Errorf("unknown driver: %s", driver)
	}
	return &Repository{db: conn, driver: strings.ToLower(driver)}, nil
}

// placeholder renders the driver's bind marker for 1-based position n.
func (r *Repository) placeholder(n int) string {
	switch r.driver {
	case "postgres":
		return fmt.Sprintf("$%d", n)
	case "mssql":
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}

// TripsBetween returns up to tripListLimit trips with pickup inside
// [start, end], ordered by the given column (whitelisted).
func (r *Repository) TripsBetween(ctx context.Context, start, end, sort string) ([]TripRecord, error) {
	if !sortColumns[sort] {
		sort = "pickup_datetime"
	}

	var query string
	if r.driver == "mssql" {
		query = fmt.Sprintf(
			`SELECT TOP %d %s FROM trips WHERE pickup_datetime BETWEEN %s AND %s ORDER BY %s`,
			tripListLimit, tripSelectColumns, r.placeholder(1), r.placeholder(2), sort)
	} else {
		query = fmt.Sprintf(
			`SELECT %s FROM trips WHERE pickup_datetime BETWEEN %s AND %s ORDER BY %s LIMIT %d`,
			tripSelectColumns, r.placeholder(1), r.placeholder(2), sort, tripListLimit)
	}

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()
	return scanTrips(rows)
}

// RankingPool returns the id/fare subset the top-expensive handler ranks.
func (r *Repository) RankingPool(ctx context.Context) ([]TripRecord, error) {
	var query string
	if r.driver == "mssql" {
		query = fmt.Sprintf(`SELECT TOP %d trip_id, fare_amount FROM trips`, rankPoolSize)
	} else {
		query = fmt.Sprintf(`SELECT trip_id, fare_amount FROM trips LIMIT %d`, rankPoolSize)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ranking pool: %w", err)
	}
	defer rows.Close()

	var out []TripRecord
	for rows.Next() {
		var t TripRecord
		if err := rows.Scan(&t.TripID, &t.FareAmount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Summarize computes the aggregate view. An empty trips table yields zeros.
func (r *Repository) Summarize(ctx context.Context) (*Summary, error) {
	const query = `SELECT COALESCE(AVG(fare_amount), 0), COALESCE(AVG(trip_distance), 0), COUNT(*) FROM trips`

	var s Summary
	if err := r.db.QueryRow(ctx, query).Scan(&s.AvgFare, &s.AvgDistance, &s.TotalTrips); err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	return &s, nil
}

func scanTrips(rows db.Rows) ([]TripRecord, error) {
	var out []TripRecord
	for rows.Next() {
		var t TripRecord
		var pickup, dropoff any
		err := rows.Scan(&t.TripID, &t.VendorID, &pickup, &dropoff,
			&t.PassengerCount, &t.TripDistance, &t.FareAmount, &t.TotalAmount,
			&t.TripDurationMin, &t.AvgSpeedMPH, &t.FarePerMile)
		if err != nil {
			return nil, err
		}
		t.PickupDatetime = timestampString(pickup)
		t.DropoffDatetime = timestampString(dropoff)
		out = append(out, t)
	}
	return out, rows.Err()
}

// timestampString normalizes a scanned timestamp: sqlite stores TEXT, mysql
// scans to []byte unless parseTime is set, postgres and mssql hand back
// time.Time.
func timestampString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(domain.TimeLayout)
	default:
		return fmt.Sprint(x)
	}
}
