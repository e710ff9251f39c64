package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/db"
)

// EnsureSchema creates the star schema for the selected driver when absent:
// five dimension tables, the locations table keyed by its natural id, and
// the trips fact table with a UNIQUE constraint on the 5-field natural key.
// That constraint is what the idempotent fact inserts lean on.
func EnsureSchema(ctx context.Context, d db.DB, driver string, unlogged bool) error {
	switch strings.ToLower(driver) {
	case "postgres":
		return ensurePostgres(ctx, d, unlogged)
	case "sqlite":
		return ensureSQLite(ctx, d)
	case "mysql":
		return ensureMySQL(ctx, d)
	case "mssql":
		return ensureMSSQL(ctx, d)
	default:
		return fmt.Errorf("unknown driver: %s", driver)
	}
}

func ensurePostgres(ctx context.Context, d db.DB, unlogged bool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vendors (
			vendor_id INT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS payment_types (
			payment_type_id INT PRIMARY KEY,
			description TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rate_codes (
			rate_code_id INT PRIMARY KEY,
			description TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS boroughs (
			borough_id INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			borough_name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS service_zones (
			service_zone_id INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			service_zone_name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			location_id INT PRIMARY KEY,
			zone_name TEXT NOT NULL,
			borough_id INT NOT NULL REFERENCES boroughs(borough_id),
			service_zone_id INT NOT NULL REFERENCES service_zones(service_zone_id)
		)`,
		`CREATE TABLE IF NOT EXISTS trips (
			trip_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			vendor_id INT NOT NULL REFERENCES vendors(vendor_id),
			pickup_datetime TIMESTAMP NOT NULL,
			dropoff_datetime TIMESTAMP NOT NULL,
			passenger_count INT,
			trip_distance DOUBLE PRECISION,
			rate_code_id INT REFERENCES rate_codes(rate_code_id),
			store_and_fwd_flag TEXT,
			pickup_location_id INT REFERENCES locations(location_id),
			dropoff_location_id INT REFERENCES locations(location_id),
			payment_type_id INT REFERENCES payment_types(payment_type_id),
			fare_amount DOUBLE PRECISION,
			extra DOUBLE PRECISION,
			mta_tax DOUBLE PRECISION,
			tip_amount DOUBLE PRECISION,
			tolls_amount DOUBLE PRECISION,
			improvement_surcharge DOUBLE PRECISION,
			total_amount DOUBLE PRECISION,
			trip_duration_min DOUBLE PRECISION,
			avg_speed_mph DOUBLE PRECISION,
			fare_per_mile DOUBLE PRECISION,
			UNIQUE (vendor_id, pickup_datetime, dropoff_datetime, pickup_location_id, dropoff_location_id)
		)`,
	}
	for _, s := range stmts {
		if err := d.Exec(ctx, s); err != nil {
			return fmt.Errorf("create schema (pg): %w", err)
		}
	}
	if unlogged {
		if err := d.Exec(ctx, `ALTER TABLE trips SET UNLOGGED`); err != nil {
			return fmt.Errorf("set trips unlogged: %w", err)
		}
	}
	if err := d.Exec(ctx, `CREATE INDEX IF NOT EXISTS trips_pickup_datetime_idx ON trips(pickup_datetime)`); err != nil {
		return fmt.Errorf("create schema (pg): %w", err)
	}
	return nil
}

func ensureSQLite(ctx context.Context, d db.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vendors (
			vendor_id INTEGER PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS payment_types (
			payment_type_id INTEGER PRIMARY KEY,
			description TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rate_codes (
			rate_code_id INTEGER PRIMARY KEY,
			description TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS boroughs (
			borough_id INTEGER PRIMARY KEY AUTOINCREMENT,
			borough_name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS service_zones (
			service_zone_id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_zone_name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			location_id INTEGER PRIMARY KEY,
			zone_name TEXT NOT NULL,
			borough_id INTEGER NOT NULL REFERENCES boroughs(borough_id),
			service_zone_id INTEGER NOT NULL REFERENCES service_zones(service_zone_id)
		)`,
		`CREATE TABLE IF NOT EXISTS trips (
			trip_id INTEGER PRIMARY KEY AUTOINCREMENT,
			vendor_id INTEGER NOT NULL REFERENCES vendors(vendor_id),
			pickup_datetime TEXT NOT NULL,
			dropoff_datetime TEXT NOT NULL,
			passenger_count INTEGER,
			trip_distance REAL,
			rate_code_id INTEGER REFERENCES rate_codes(rate_code_id),
			store_and_fwd_flag TEXT,
			pickup_location_id INTEGER REFERENCES locations(location_id),
			dropoff_location_id INTEGER REFERENCES locations(location_id),
			payment_type_id INTEGER REFERENCES payment_types(payment_type_id),
			fare_amount REAL,
			extra REAL,
			mta_tax REAL,
			tip_amount REAL,
			tolls_amount REAL,
			improvement_surcharge REAL,
			total_amount REAL,
			trip_duration_min REAL,
			avg_speed_mph REAL,
			fare_per_mile REAL,
			UNIQUE (vendor_id, pickup_datetime, dropoff_datetime, pickup_location_id, dropoff_location_id)
		)`,
		`CREATE INDEX IF NOT EXISTS trips_pickup_datetime_idx ON trips(pickup_datetime)`,
	}
	for _, s := range stmts {
		if err := d.Exec(ctx, s); err != nil {
			return fmt.Errorf("create schema (sqlite): %w", err)
		}
	}
	return nil
}

func ensureMySQL(ctx context.Context, d db.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vendors (
			vendor_id INT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS payment_types (
			payment_type_id INT PRIMARY KEY,
			description VARCHAR(64) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rate_codes (
			rate_code_id INT PRIMARY KEY,
			description VARCHAR(64) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS boroughs (
			borough_id INT AUTO_INCREMENT PRIMARY KEY,
			borough_name VARCHAR(128) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS service_zones (
			service_zone_id INT AUTO_INCREMENT PRIMARY KEY,
			service_zone_name VARCHAR(128) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			location_id INT PRIMARY KEY,
			zone_name VARCHAR(256) NOT NULL,
			borough_id INT NOT NULL REFERENCES boroughs(borough_id),
			service_zone_id INT NOT NULL REFERENCES service_zones(service_zone_id)
		)`,
		`CREATE TABLE IF NOT EXISTS trips (
			trip_id BIGINT AUTO_INCREMENT PRIMARY KEY,
			vendor_id INT NOT NULL REFERENCES vendors(vendor_id),
			pickup_datetime DATETIME NOT NULL,
			dropoff_datetime DATETIME NOT NULL,
			passenger_count INT,
			trip_distance DOUBLE,
			rate_code_id INT REFERENCES rate_codes(rate_code_id),
			store_and_fwd_flag VARCHAR(4),
			pickup_location_id INT REFERENCES locations(location_id),
			dropoff_location_id INT REFERENCES locations(location_id),
			payment_type_id INT REFERENCES payment_types(payment_type_id),
			fare_amount DOUBLE,
			extra DOUBLE,
			mta_tax DOUBLE,
			tip_amount DOUBLE,
			tolls_amount DOUBLE,
			improvement_surcharge DOUBLE,
			total_amount DOUBLE,
			trip_duration_min DOUBLE,
			avg_speed_mph DOUBLE,
			fare_per_mile DOUBLE,
			UNIQUE KEY trips_natural_key (vendor_id, pickup_datetime, dropoff_datetime, pickup_location_id, dropoff_location_id),
			KEY trips_pickup_datetime_idx (pickup_datetime)
		)`,
	}
	for _, s := range stmts {
		if err := d.Exec(ctx, s); err != nil {
			return fmt.Errorf("create schema (mysql): %w", err)
		}
	}
	return nil
}

func ensureMSSQL(ctx context.Context, d db.DB) error {
	stmts := []string{
		`IF OBJECT_ID(N'vendors', N'U') IS NULL
		CREATE TABLE vendors (
			vendor_id INT PRIMARY KEY
		)`,
		`IF OBJECT_ID(N'payment_types', N'U') IS NULL
		CREATE TABLE payment_types (
			payment_type_id INT PRIMARY KEY,
			description NVARCHAR(64) NOT NULL
		)`,
		`IF OBJECT_ID(N'rate_codes', N'U') IS NULL
		CREATE TABLE rate_codes (
			rate_code_id INT PRIMARY KEY,
			description NVARCHAR(64) NOT NULL
		)`,
		`IF OBJECT_ID(N'boroughs', N'U') IS NULL
		CREATE TABLE boroughs (
			borough_id INT IDENTITY(1,1) PRIMARY KEY,
			borough_name NVARCHAR(128) NOT NULL UNIQUE
		)`,
		`IF OBJECT_ID(N'service_zones', N'U') IS NULL
		CREATE TABLE service_zones (
			service_zone_id INT IDENTITY(1,1) PRIMARY KEY,
			service_zone_name NVARCHAR(128) NOT NULL UNIQUE
		)`,
		`IF OBJECT_ID(N'locations', N'U') IS NULL
		CREATE TABLE locations (
			location_id INT PRIMARY KEY,
			zone_name NVARCHAR(256) NOT NULL,
			borough_id INT NOT NULL REFERENCES boroughs(borough_id),
			service_zone_id INT NOT NULL REFERENCES service_zones(service_zone_id)
		)`,
		`IF OBJECT_ID(N'trips', N'U') IS NULL
		CREATE TABLE trips (
			trip_id BIGINT IDENTITY(1,1) PRIMARY KEY,
			vendor_id INT NOT NULL REFERENCES vendors(vendor_id),
			pickup_datetime DATETIME2 NOT NULL,
			dropoff_datetime DATETIME2 NOT NULL,
			passenger_count INT,
			trip_distance FLOAT,
			rate_code_id INT REFERENCES rate_codes(rate_code_id),
			store_and_fwd_flag NVARCHAR(4),
			pickup_location_id INT REFERENCES locations(location_id),
			dropoff_location_id INT REFERENCES locations(location_id),
			payment_type_id INT REFERENCES payment_types(payment_type_id),
			fare_amount FLOAT,
			extra FLOAT,
			mta_tax FLOAT,
			tip_amount FLOAT,
			tolls_amount FLOAT,
			improvement_surcharge FLOAT,
			total_amount FLOAT,
			trip_duration_min FLOAT,
			avg_speed_mph FLOAT,
			fare_per_mile FLOAT,
			CONSTRAINT trips_natural_key UNIQUE (vendor_id, pickup_datetime, dropoff_datetime, pickup_location_id, dropoff_location_id)
		)`,
	}
	for _, s := range stmts {
		if err := d.Exec(ctx, s); err != nil {
			return fmt.Errorf("create schema (mssql): %w", err)
		}
	}
	return nil
}
