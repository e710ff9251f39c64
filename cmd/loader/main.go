// Command loader bulk-loads the cleaned trips artifact into the star schema.
// It opens one connection for the selected driver, ensures the schema exists,
// and runs the two-phase load (dimensions, then chunked facts). Constructors
// are injected via Deps so run() is testable with fakes.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/config"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/db"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/loader"
)

// Deps holds injectable dependencies so run() is fully testable.
type Deps struct {
	NewPgDB  func(ctx context.Context, dsn string) (db.DB, error)
	NewSQLDB func(driver, dsn string) (db.DB, error)

	EnsureSchema func(ctx context.Context, d db.DB, driver string, unlogged bool) error
	NewLoader    func(conn db.DB, driver string, chunkSize, commitEvery int) (*loader.Loader, error)
}

func defaultDeps() Deps {
	return Deps{
		NewPgDB:      db.NewPgDB,
		NewSQLDB:     db.NewSQLDB,
		EnsureSchema: loader.EnsureSchema,
		NewLoader:    loader.New,
	}
}

// openDB maps the configured driver to the right adapter constructor.
func openDB(ctx context.Context, cfg *config.Config, deps Deps) (db.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		return deps.NewPgDB(ctx, cfg.PostgresDSN())
	case "mssql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("--dsn required for mssql")
		}
		return deps.NewSQLDB("sqlserver", cfg.DSN)
	case "mysql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("--dsn required for mysql")
		}
		return deps.NewSQLDB("mysql", cfg.DSN)
	case "sqlite":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("--dsn required for sqlite (database file path)")
		}
		return deps.NewSQLDB("sqlite", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported --db_driver=%q", cfg.DBDriver)
	}
}

func run(ctx context.Context, cfg *config.Config, deps Deps) error {
	conn, err := openDB(ctx, cfg, deps)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer conn.Close(ctx)

	if err := deps.EnsureSchema(ctx, conn, cfg.DBDriver, cfg.UnloggedTables); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	l, err := deps.NewLoader(conn, cfg.DBDriver, cfg.ChunkSize, cfg.CommitEvery)
	if err != nil {
		return err
	}
	if _, err := l.Run(ctx, cfg.CleanedCSV); err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	return nil
}

func main() {
	cfg := config.Load()
	if err := run(context.Background(), cfg, defaultDeps()); err != nil {
		log.Fatal(err)
	}
}
