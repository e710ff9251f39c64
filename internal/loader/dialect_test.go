package loader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/db"
)

func TestDialectFor(t *testing.T) {
	pg, err := dialectFor("postgres")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pg.insertTrip, "ON CONFLICT DO NOTHING") {
		t.Fatalf("pg trip insert not idempotent: %s", pg.insertTrip)
	}
	if !strings.Contains(pg.insertTrip, "$20") {
		t.Fatalf("pg trip insert should bind 20 params: %s", pg.insertTrip)
	}

	lite, err := dialectFor("sqlite")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(lite.insertVendor, "INSERT OR IGNORE") {
		t.Fatalf("sqlite vendor insert: %s", lite.insertVendor)
	}

	my, err := dialectFor("mysql")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(my.insertVendor, "INSERT IGNORE") {
		t.Fatalf("mysql vendor insert: %s", my.insertVendor)
	}
	if !strings.HasPrefix(my.insertTrip, "INSERT IGNORE") || strings.Count(my.insertTrip, "?") != 20 {
		t.Fatalf("mysql trip insert: %s", my.insertTrip)
	}

	ms, err := dialectFor("mssql")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ms.insertTrip, "IF NOT EXISTS") || !strings.Contains(ms.insertTrip, "@p20") {
		t.Fatalf("mssql trip insert: %s", ms.insertTrip)
	}

	if _, err := dialectFor("oracle"); err == nil {
		t.Fatal("want error for unknown driver")
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders("$", 3); got != "$1, $2, $3" {
		t.Fatalf("pg: %q", got)
	}
	if got := placeholders("?", 2); got != "?, ?" {
		t.Fatalf("sqlite: %q", got)
	}
	if got := placeholders("@p", 2); got != "@p1, @p2" {
		t.Fatalf("mssql: %q", got)
	}
}

func TestTripRowMatchesColumnCount(t *testing.T) {
	row := tripRow(manhattanTrip(0))
	if len(row) != len(tripInsertColumns) {
		t.Fatalf("bind width: got %d want %d", len(row), len(tripInsertColumns))
	}
}

func TestEnsureSchemaIsRepeatable(t *testing.T) {
	conn := openMemDB(t)
	ctx := context.Background()
	if err := EnsureSchema(ctx, conn, "sqlite", false); err != nil {
		t.Fatal(err)
	}
	if err := EnsureSchema(ctx, conn, "sqlite", false); err != nil {
		t.Fatal(err)
	}
	if err := EnsureSchema(ctx, conn, "oracle", false); err == nil {
		t.Fatal("want error for unknown driver")
	}
}

// stmtFailDB accepts every statement except the one containing failSubstr.
type stmtFailDB struct {
	failSubstr string
}

func (f *stmtFailDB) Exec(ctx context.Context, q string, args ...any) error {
	if strings.Contains(q, f.failSubstr) {
		return errors.New("statement rejected")
	}
	return nil
}

func (f *stmtFailDB) Query(context.Context, string, ...any) (db.Rows, error) {
	return nil, errors.New("not implemented")
}
func (f *stmtFailDB) QueryRow(context.Context, string, ...any) db.Row { return nil }
func (f *stmtFailDB) BeginTx(context.Context) (db.Tx, error) {
	return nil, errors.New("not implemented")
}
func (f *stmtFailDB) Close(context.Context) error { return nil }

func TestEnsureSchemaSurfacesStatementErrors(t *testing.T) {
	ctx := context.Background()

	err := EnsureSchema(ctx, &stmtFailDB{failSubstr: "SET UNLOGGED"}, "postgres", true)
	if err == nil || !strings.Contains(err.Error(), "unlogged") {
		t.Fatalf("unlogged failure should surface, got %v", err)
	}

	if err := EnsureSchema(ctx, &stmtFailDB{failSubstr: "CREATE INDEX"}, "postgres", false); err == nil {
		t.Fatal("index failure should surface")
	}
}
