// Package loader implements the two-phase bulk load: dimension extraction
// from the cleaned artifact, idempotent dimension/location inserts, surrogate
// key discovery, and chunked fact inserts with batched commits.
package loader

import (
	"fmt"
	"strings"
)

// dialect carries the per-driver SQL for every statement the loader issues.
// All inserts are idempotent on the table's natural key: re-executing a
// statement for an existing row is a no-op, which is what makes whole-run
// restarts safe.
type dialect struct {
	driver string

	insertVendor      string
	insertPaymentType string
	insertRateCode    string
	insertBorough     string
	insertServiceZone string
	insertLocation    string
	insertTrip        string

	selectBoroughs     string
	selectServiceZones string
	countTrips         string
}

// tripInsertColumns is the fact column list, in bind order.
var tripInsertColumns = []string{
	"vendor_id", "pickup_datetime", "dropoff_datetime", "passenger_count",
	"trip_distance", "rate_code_id", "store_and_fwd_flag",
	"pickup_location_id", "dropoff_location_id", "payment_type_id",
	"fare_amount", "extra", "mta_tax", "tip_amount", "tolls_amount",
	"improvement_surcharge", "total_amount", "trip_duration_min",
	"avg_speed_mph", "fare_per_mile",
}

func dialectFor(driver string) (dialect, error) {
	d := dialect{
		driver:             strings.ToLower(driver),
		selectBoroughs:     `SELECT borough_id, borough_name FROM boroughs`,
		selectServiceZones: `SELECT service_zone_id, service_zone_name FROM service_zones`,
		countTrips:         `SELECT COUNT(*) FROM trips`,
	}

	cols := strings.Join(tripInsertColumns, ", ")

	switch d.driver {
	case "postgres":
		d.insertVendor = `INSERT INTO vendors (vendor_id) VALUES ($1) ON CONFLICT DO NOTHING`
		d.insertPaymentType = `INSERT INTO payment_types (payment_type_id, description) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		d.insertRateCode = `INSERT INTO rate_codes (rate_code_id, description) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		d.insertBorough = `INSERT INTO boroughs (borough_name) VALUES ($1) ON CONFLICT DO NOTHING`
		d.insertServiceZone = `INSERT INTO service_zones (service_zone_name) VALUES ($1) ON CONFLICT DO NOTHING`
		d.insertLocation = `INSERT INTO locations (location_id, zone_name, borough_id, service_zone_id) VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`
		d.insertTrip = fmt.Sprintf(
			`INSERT INTO trips (%s) VALUES (%s) ON CONFLICT DO NOTHING`,
			cols, placeholders("$", len(tripInsertColumns)))

	case "sqlite":
		d.insertVendor = `INSERT OR IGNORE INTO vendors (vendor_id) VALUES (?)`
		d.insertPaymentType = `INSERT OR IGNORE INTO payment_types (payment_type_id, description) VALUES (?, ?)`
		d.insertRateCode = `INSERT OR IGNORE INTO rate_codes (rate_code_id, description) VALUES (?, ?)`
		d.insertBorough = `INSERT OR IGNORE INTO boroughs (borough_name) VALUES (?)`
		d.insertServiceZone = `INSERT OR IGNORE INTO service_zones (service_zone_name) VALUES (?)`
		d.insertLocation = `INSERT OR IGNORE INTO locations (location_id, zone_name, borough_id, service_zone_id) VALUES (?, ?, ?, ?)`
		d.insertTrip = fmt.Sprintf(
			`INSERT OR IGNORE INTO trips (%s) VALUES (%s)`,
			cols, placeholders("?", len(tripInsertColumns)))

	case "mysql":
		d.insertVendor = `INSERT IGNORE INTO vendors (vendor_id) VALUES (?)`
		d.insertPaymentType = `INSERT IGNORE INTO payment_types (payment_type_id, description) VALUES (?, ?)`
		d.insertRateCode = `INSERT IGNORE INTO rate_codes (rate_code_id, description) VALUES (?, ?)`
		d.insertBorough = `INSERT IGNORE INTO boroughs (borough_name) VALUES (?)`
		d.insertServiceZone = `INSERT IGNORE INTO service_zones (service_zone_name) VALUES (?)`
		d.insertLocation = `INSERT IGNORE INTO locations (location_id, zone_name, borough_id, service_zone_id) VALUES (?, ?, ?, ?)`
		d.insertTrip = fmt.Sprintf(
			`INSERT IGNORE INTO trips (%s) VALUES (%s)`,
			cols, placeholders("?", len(tripInsertColumns)))

	case "mssql":
		d.insertVendor = `IF NOT EXISTS (SELECT 1 FROM vendors WHERE vendor_id = @p1)
			INSERT INTO vendors (vendor_id) VALUES (@p1)`
		d.insertPaymentType = `IF NOT EXISTS (SELECT 1 FROM payment_types WHERE payment_type_id = @p1)
			INSERT INTO payment_types (payment_type_id, description) VALUES (@p1, @p2)`
		d.insertRateCode = `IF NOT EXISTS (SELECT 1 FROM rate_codes WHERE rate_code_id = @p1)
			INSERT INTO rate_codes (rate_code_id, description) VALUES (@p1, @p2)`
		d.insertBorough = `IF NOT EXISTS (SELECT 1 FROM boroughs WHERE borough_name = @p1)
			INSERT INTO boroughs (borough_name) VALUES (@p1)`
		d.insertServiceZone = `IF NOT EXISTS (SELECT 1 FROM service_zones WHERE service_zone_name = @p1)
			INSERT INTO service_zones (service_zone_name) VALUES (@p1)`
		d.insertLocation = `IF NOT EXISTS (SELECT 1 FROM locations WHERE location_id = @p1)
			INSERT INTO locations (location_id, zone_name, borough_id, service_zone_id) VALUES (@p1, @p2, @p3, @p4)`
		d.insertTrip = fmt.Sprintf(
			`IF NOT EXISTS (SELECT 1 FROM trips WHERE vendor_id = @p1 AND pickup_datetime = @p2 AND dropoff_datetime = @p3 AND pickup_location_id = @p8 AND dropoff_location_id = @p9)
			INSERT INTO trips (%s) VALUES (%s)`,
			cols, placeholders("@p", len(tripInsertColumns)))

	default:
		return d, fmt.Errorf("unknown driver: %s", driver)
	}
	return d, nil
}

// placeholders renders "$1, $2, ..." / "?, ?, ..." / "@p1, @p2, ..." for n
// bind parameters.
func placeholders(style string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if style == "?" {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprintf("%s%d", style, i+1)
		}
	}
	return strings.Join(parts, ", ")
}
