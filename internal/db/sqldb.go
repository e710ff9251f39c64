// This file contains the portable database/sql adapter used for MSSQL,
// MySQL and SQLite. The adapter favors portability over engine-specific bulk
// paths, so batched inserts fall back to a prepared statement executed per
// row inside the surrounding transaction. This is slower than engine-native
// COPY but keeps load code database-agnostic.
package db

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// sqlDBCore is the minimal subset of *sql.DB we use. It must match *sql.DB so
// legacy callers and tests can inject a real handle.
type sqlDBCore interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

type sqlDB struct{ db sqlDBCore }

// NewSQLDB opens a database/sql connection for the given driver and pings to
// confirm connectivity. Use driver "sqlserver" for MSSQL, "mysql" for MySQL
// and "sqlite" for modernc SQLite.
func NewSQLDB(driver, dsn string) (DB, error) {
	d, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// A single connection keeps in-memory databases coherent and
		// matches the single-writer model of the loader.
		d.SetMaxOpenConns(1)
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return &sqlDB{db: d}, nil
}

// NewSQLDBFromHandle wraps an already-open *sql.DB. Used by tests and by
// callers that manage the pool themselves.
func NewSQLDBFromHandle(d *sql.DB) DB { return &sqlDB{db: d} }

// Exec forwards a statement to the underlying database.
func (s *sqlDB) Exec(ctx context.Context, q string, args ...any) error {
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

// Query runs a SQL query and adapts *sql.Rows to the Rows interface.
func (s *sqlDB) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryRow runs a single-row query.
func (s *sqlDB) QueryRow(ctx context.Context, q string, args ...any) Row {
	return s.db.QueryRowContext(ctx, q, args...)
}

// BeginTx starts a transaction and returns a Tx adapter.
func (s *sqlDB) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

// Close closes the underlying pool.
func (s *sqlDB) Close(context.Context) error { return s.db.Close() }

type sqlTx struct{ tx *sql.Tx }

// Exec executes a SQL statement within the transaction.
func (t *sqlTx) Exec(ctx context.Context, q string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, q, args...)
	return err
}

// InsertBatch prepares q once and executes it per row, summing the rows the
// engine reports as affected. Guarded/OR IGNORE insert statements therefore
// report duplicates as zero, matching the pgx adapter's semantics.
func (t *sqlTx) InsertBatch(ctx context.Context, q string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := t.tx.PrepareContext(ctx, q)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var total int64
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, r...)
		if err != nil {
			return total, err
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

// Commit commits the active transaction.
func (t *sqlTx) Commit(context.Context) error { return t.tx.Commit() }

// Rollback aborts the active transaction.
func (t *sqlTx) Rollback(context.Context) error { return t.tx.Rollback() }
