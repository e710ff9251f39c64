// Command server exposes the loaded star schema over HTTP. It opens one
// read connection, mounts the gin router, and serves until interrupted,
// shutting down gracefully.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/api"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/config"
	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/db"
)

// Deps holds injectable dependencies so run() is fully testable.
type Deps struct {
	NewPgDB  func(ctx context.Context, dsn string) (db.DB, error)
	NewSQLDB func(driver, dsn string) (db.DB, error)
}

func defaultDeps() Deps {
	return Deps{
		NewPgDB:  db.NewPgDB,
		NewSQLDB: db.NewSQLDB,
	}
}

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
	defer conn.Close(context.Background())

	repo, err := api.NewRepository(conn, cfg.DBDriver)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewRouter(repo),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("server: listening addr=%s driver=%s", cfg.ListenAddr, cfg.DBDriver)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := run(ctx, cfg, defaultDeps()); err != nil {
		log.Fatal(err)
	}
}
