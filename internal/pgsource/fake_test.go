package pgsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// fakeDB serves one table from memory.
type fakeDB struct {
	columns []string
	rows    [][]*string

	queryErr error
	execErr  error
	execs    []fakeExec
	commits  int
}

type fakeExec struct {
	sql  string
	args []any
}

func text(values ...string) []*string {
	out := make([]*string, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if db.execErr != nil {
		return pgconn.CommandTag{}, db.execErr
	}
	db.execs = append(db.execs, fakeExec{sql: sql, args: args})
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	if sql == columnsSQL {
		rows := make([][]*string, len(db.columns))
		for i := range db.columns {
			rows[i] = text(db.columns[i])
		}
		return &fakeRows{rows: rows, pos: -1}, nil
	}
	return &fakeRows{rows: db.rows, pos: -1}, nil
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return &fakeTx{db: db}, nil
}

// fakeTx forwards Exec to the database. Methods not overridden panic.
type fakeTx struct {
	pgx.Tx
	db *fakeDB
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.db.Exec(ctx, sql, args...)
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.db.commits++
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error { return nil }

// fakeRows yields text values. Nil entries scan as SQL NULL.
type fakeRows struct {
	rows [][]*string
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Values() ([]any, error) {
	return nil, errors.New("not supported")
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(row))
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			if row[i] == nil {
				return errors.New("scan: NULL into string")
			}
			*d = *row[i]
		case *pgtype.Text:
			if row[i] == nil {
				*d = pgtype.Text{}
			} else {
				*d = pgtype.Text{String: *row[i], Valid: true}
			}
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}
