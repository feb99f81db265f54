package repository_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	sql  string
	args []any
}

// fakeDB answers queries from a queue of canned results and records every call.
type fakeDB struct {
	mu      sync.Mutex
	calls   []call
	rows    [][][]any
	row     [][]any
	rowErrs []error
	qErr    error
}

func (db *fakeDB) record(sql string, args []any) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.calls = append(db.calls, call{sql: sql, args: args})
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.record(sql, args)

	return pgconn.CommandTag{}, nil
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.record(sql, args)

	if db.qErr != nil {
		return nil, db.qErr
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var data [][]any
	if len(db.rows) > 0 {
		data, db.rows = db.rows[0], db.rows[1:]
	}

	return &fakeRows{data: data, idx: -1}, nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.record(sql, args)

	db.mu.Lock()
	defer db.mu.Unlock()

	var err error
	if len(db.rowErrs) > 0 {
		err, db.rowErrs = db.rowErrs[0], db.rowErrs[1:]
	}

	var values []any
	if len(db.row) > 0 {
		values, db.row = db.row[0], db.row[1:]
	}

	return fakeRow{values: values, err: err}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}

	return assign(dest, r.values)
}

type fakeRows struct {
	data   [][]any
	idx    int
	closed bool
	err    error
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++

	return r.idx < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(dest, r.data[r.idx])
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.idx], nil
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}

	for i, d := range dest {
		switch target := d.(type) {
		case sql.Scanner:
			if err := target.Scan(values[i]); err != nil {
				return err
			}
		case *int64:
			*target = values[i].(int64)
		case *time.Time:
			*target = values[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}

	return nil
}

// fakeTx records commit/rollback and routes queries to its own fakeDB.
type fakeTx struct {
	pgx.Tx
	db         *fakeDB
	committed  bool
	rolledBack bool
	commitErr  error
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}

	tx.committed = true

	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true

	return nil
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.db.Exec(ctx, sql, args...)
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return tx.db.Query(ctx, sql, args...)
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return tx.db.QueryRow(ctx, sql, args...)
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}

	return b.tx, nil
}
