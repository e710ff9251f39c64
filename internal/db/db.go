package db

import "context"

// DB is a connection capable of executing DDL/DML, running queries, and
// starting transactions. One DB is opened per run and reused across the
// load phases; it is not safe for concurrent use by multiple loaders.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
	BeginTx(ctx context.Context) (Tx, error)
	Close(ctx context.Context) error
}

// Tx supports statement execution, batched inserts, and lifecycle.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) error

	// InsertBatch executes sql once per row and returns the number of rows
	// the store reports as actually inserted. With idempotent insert
	// statements this is how duplicate rows become visible as no-ops.
	InsertBatch(ctx context.Context, sql string, rows [][]any) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Rows is a minimal cursor over a query result, satisfiable by both
// pgx.Rows and database/sql *Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Row is a single-row result.
type Row interface {
	Scan(dest ...any) error
}

// Factory can mint a new DB connection (used by commands to defer opening
// until the target driver is known).
type Factory func(ctx context.Context) (DB, error)
