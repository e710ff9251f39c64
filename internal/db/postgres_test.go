package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakePgConn is a hermetic pgConnLike double. Embedding the interfaces keeps
// the fakes small: only the methods the adapter touches are implemented.
type fakePgConn struct {
	execs     []string
	failExec  error
	failBegin error
	tx        *fakePgTx
	closed    bool
}

func (f *fakePgConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.failExec != nil {
		return pgconn.CommandTag{}, f.failExec
	}
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakePgConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePgConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (f *fakePgConn) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.failBegin != nil {
		return nil, f.failBegin
	}
	f.tx = &fakePgTx{}
	return f.tx, nil
}

func (f *fakePgConn) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakePgTx struct {
	pgx.Tx // satisfy the interface; unused methods panic if reached

	batches    []*pgx.Batch
	committed  bool
	rolledBack bool
	failExec   error
}

func (t *fakePgTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	t.batches = append(t.batches, b)
	return &fakeBatchResults{n: b.Len(), failExec: t.failExec}
}

func (t *fakePgTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakePgTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBatchResults struct {
	pgx.BatchResults

	n        int
	served   int
	failExec error
	closed   bool
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	if r.failExec != nil {
		return pgconn.CommandTag{}, r.failExec
	}
	r.served++
	// Every second statement reports a conflict no-op.
	if r.served%2 == 0 {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeBatchResults) Close() error {
	r.closed = true
	return nil
}

func TestPgDBExec(t *testing.T) {
	fake := &fakePgConn{}
	d := newPgDBFromConn(fake)

	if err := d.Exec(context.Background(), "CREATE TABLE t (x int)"); err != nil {
		t.Fatal(err)
	}
	if len(fake.execs) != 1 {
		t.Fatalf("execs: %v", fake.execs)
	}

	fake.failExec = errors.New("boom")
	if err := d.Exec(context.Background(), "whatever"); err == nil {
		t.Fatal("want error")
	}
}

func TestPgTxInsertBatchCountsAffectedRows(t *testing.T) {
	fake := &fakePgConn{}
	d := newPgDBFromConn(fake)

	tx, err := d.BeginTx(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	rows := [][]any{{1}, {2}, {3}, {4}}
	n, err := tx.InsertBatch(context.Background(), "INSERT ...", rows)
	if err != nil {
		t.Fatal(err)
	}
	// The fake reports every second statement as a conflict no-op.
	if n != 2 {
		t.Fatalf("affected: got %d want 2", n)
	}
	if len(fake.tx.batches) != 1 || fake.tx.batches[0].Len() != 4 {
		t.Fatalf("batch not sent in one round trip: %+v", fake.tx.batches)
	}

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !fake.tx.committed {
		t.Fatal("commit not forwarded")
	}
}

func TestPgTxInsertBatchEmptyIsNoop(t *testing.T) {
	fake := &fakePgConn{}
	d := newPgDBFromConn(fake)
	tx, err := d.BeginTx(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	n, err := tx.InsertBatch(context.Background(), "INSERT ...", nil)
	if err != nil || n != 0 {
		t.Fatalf("empty batch: n=%d err=%v", n, err)
	}
	if len(fake.tx.batches) != 0 {
		t.Fatal("no batch should be sent")
	}
}

func TestPgTxInsertBatchPropagatesError(t *testing.T) {
	fake := &fakePgConn{}
	d := newPgDBFromConn(fake)
	tx, err := d.BeginTx(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	fake.tx.failExec = errors.New("constraint violation")
	if _, err := tx.InsertBatch(context.Background(), "INSERT ...", [][]any{{1}}); err == nil {
		t.Fatal("want error")
	}
}

func TestPgDBClose(t *testing.T) {
	fake := &fakePgConn{}
	d := newPgDBFromConn(fake)
	if err := d.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !fake.closed {
		t.Fatal("close not forwarded")
	}
}
