// Package config centralizes application configuration. It follows a
// "clean" configuration pattern where all tunables live outside the
// code and are sourced from command-line flags with environment-variable
// fallbacks (12-factor friendly). Flags are defined first so that
// `-help` shows all available knobs and their defaults.
//
// Typical usage:
//
//	cfg := config.Load() // reads os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.LoadFromArgs(fs, getenv, []string{"-chunk_size=500"})
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
)

// Config holds all process configuration derived from flags and
// environment variables. All fields are plain values so the struct
// can be safely copied and used across goroutines after construction.
type Config struct {
	// IO controls input and artifact file locations.
	TripsCSV   string // Path to the raw trip data CSV.
	ZoneCSV    string // Path to the taxi zone lookup CSV.
	CleanedCSV string // Path of the cleaned/resolved intermediate artifact.
	CleanLog   string // Path of the append-only cleaning log.

	// DB describes the target database. For MSSQL a full DSN is required.
	// For Postgres, DSN is optional (it can be built from discrete parts).
	// For SQLite, DSN is the database file path (or ":memory:").
	DBDriver   string // Database driver: "postgres", "mssql", "mysql" or "sqlite".
	DSN        string // Full DSN (required for MSSQL; optional for Postgres).
	DBUser     string // Database username (Postgres convenience).
	DBPassword string // Database password (Postgres convenience).
	DBHost     string // Database host (Postgres convenience).
	DBPort     string // Database port (Postgres convenience).
	DBName     string // Database name (Postgres convenience).

	// Load tunables control memory and transaction granularity.
	ChunkSize   int // Rows per chunk when streaming the artifact and inserting facts.
	CommitEvery int // Fact chunks per commit; larger = faster, wider replay window.

	// Misc contains database-specific toggles and the API server address.
	UnloggedTables bool   // Postgres-only: create UNLOGGED tables for speed.
	ListenAddr     string // Query API listen address.
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag
// to an environment-variable fallback via getenv, and then parsing args.
// This is the most testable entry point: callers supply a private FlagSet,
// a getenv func (often backed by a map), and a synthetic arg slice.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
//
// The returned Config is fully populated; no further mutation occurs.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) *Config {
	cfg := &Config{}

	// Inline helpers use the provided getenv to avoid touching process env.
	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	intEnvOrDefaultFn := func(k string, d int) int {
		if v := getenv(k); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				return i
			}
		}
		return d
	}
	boolEnvOrDefaultFn := func(k string, d bool) bool {
		if v := strings.ToLower(getenv(k)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}

	// IO paths
	fs.StringVar(&cfg.TripsCSV, "trips_csv", envOrDefaultFn("TRIPS_CSV", "data/yellow_tripdata_2019-01.csv"), "Path to raw trip data CSV")
	fs.StringVar(&cfg.ZoneCSV, "zone_csv", envOrDefaultFn("ZONE_CSV", "data/taxi_zone_lookup.csv"), "Path to taxi zone lookup CSV")
	fs.StringVar(&cfg.CleanedCSV, "cleaned_csv", envOrDefaultFn("CLEANED_CSV", "processed/cleaned_trips.csv"), "Path of the cleaned trips artifact")
	fs.StringVar(&cfg.CleanLog, "clean_log", envOrDefaultFn("CLEAN_LOG", "logs/cleaning_log.txt"), "Path of the append-only cleaning log")

	// DB connectivity
	fs.StringVar(&cfg.DBDriver, "db_driver", envOrDefaultFn("DB_DRIVER", "postgres"), "Database driver: 'postgres', 'mssql', 'mysql' or 'sqlite'.")
	fs.StringVar(&cfg.DSN, "dsn", getenv("DB_DSN"), "Full DSN (required for mssql and mysql; file path for sqlite).")

	fs.StringVar(&cfg.DBUser, "db_user", envOrDefaultFn("DB_USER", "user"), "DB user")
	fs.StringVar(&cfg.DBPassword, "db_password", envOrDefaultFn("DB_PASSWORD", "password"), "DB password")
	fs.StringVar(&cfg.DBHost, "db_host", envOrDefaultFn("DB_HOST", "localhost"), "DB host")
	fs.StringVar(&cfg.DBPort, "db_port", envOrDefaultFn("DB_PORT", "5432"), "DB port")
	fs.StringVar(&cfg.DBName, "db_name", envOrDefaultFn("DB_NAME", "urban_mobility"), "DB name")

	// Throughput & toggles
	fs.IntVar(&cfg.ChunkSize, "chunk_size", intEnvOrDefaultFn("CHUNK_SIZE", 10000), "Rows per streaming/insert chunk")
	fs.IntVar(&cfg.CommitEvery, "commit_every", intEnvOrDefaultFn("COMMIT_EVERY", 5), "Fact chunks per commit")
	fs.BoolVar(&cfg.UnloggedTables, "pg_unlogged", boolEnvOrDefaultFn("PG_UNLOGGED", false), "Postgres only: set UNLOGGED for speed")
	fs.StringVar(&cfg.ListenAddr, "listen_addr", envOrDefaultFn("LISTEN_ADDR", ":8080"), "Query API listen address")

	// Parse the provided args (nil means no extra args).
	if args == nil {
		args = []string{}
	}
	_ = fs.Parse(args)
	return cfg
}

// LoadFrom is a compatibility wrapper around LoadFromArgs for call-sites
// that don't need to pass args explicitly (useful in some tests).
func LoadFrom(fs *flag.FlagSet, getenv func(string) string) *Config {
	return LoadFromArgs(fs, getenv, nil)
}

// Load is the production entry point. It wires the loader to the process
// flag set (flag.CommandLine), reads environment variables via os.Getenv,
// and parses os.Args[1:] as the CLI arguments.
func Load() *Config {
	return LoadFromArgs(flag.CommandLine, os.Getenv, os.Args[1:])
}

// PostgresDSN returns the configured DSN, or builds one from the discrete
// db_* parts when no full DSN was supplied.
func (c *Config) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName
}
