// Package pgsource exposes Postgres tables as table view models.
//
// A Table holds an in-memory text snapshot of its rows. Cell edits update the
// snapshot immediately and are written back by Sync, which then reloads the
// snapshot and advances the revision only when the data changed.
package pgsource

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/tableview/internal/core"
)

// DB is the subset of *pgxpool.Pool used by Table.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// edit is a cell write waiting for Sync.
type edit struct {
	key    []string
	column string
	value  string
}

// Table is a Postgres-backed core.Model. It is not safe for concurrent use.
type Table struct {
	db   DB
	spec TableSpec

	headers []string
	key     []int
	rows    [][]string
	version int64

	pending []edit
}

// New creates a table model. Call Load before use.
func New(db DB, spec TableSpec) *Table {
	return &Table{db: db, spec: spec}
}

// Spec returns the table spec.
func (t *Table) Spec() TableSpec { return t.spec }

// Load reads the column list and a fresh snapshot of the rows.
func (t *Table) Load(ctx context.Context) error {
	headers, err := t.columns(ctx)
	if err != nil {
		return err
	}
	if len(headers) == 0 {
		return fmt.Errorf("load %s: %w", t.spec.Source(), core.ErrSourceNotFound)
	}

	key := make([]int, len(t.spec.Key))
	for i, k := range t.spec.Key {
		idx := slices.Index(headers, k)
		if idx == -1 {
			return fmt.Errorf("load %s: key %q: %w", t.spec.Source(), k, core.ErrUnknownColumn)
		}
		key[i] = idx
	}

	rows, err := t.query(ctx, headers)
	if err != nil {
		return err
	}

	t.replace(headers, key, rows)
	return nil
}

// Sync writes pending edits and reloads the snapshot. When the write fails
// the edits stay pending and the snapshot keeps them, so the next Sync
// retries. Edits on a table without key columns cannot be written and are
// discarded with an error wrapping core.ErrReadOnly after the reload.
func (t *Table) Sync(ctx context.Context) error {
	if len(t.pending) == 0 {
		return t.Load(ctx)
	}

	if len(t.spec.Key) == 0 {
		n := len(t.pending)
		t.pending = nil
		if err := t.Load(ctx); err != nil {
			return err
		}
		return fmt.Errorf("discarded %d edits on %s: %w", n, t.spec.Source(), core.ErrReadOnly)
	}

	if err := t.flush(ctx); err != nil {
		return err
	}
	t.pending = nil
	return t.Load(ctx)
}

// Pending returns the number of edits not yet written.
func (t *Table) Pending() int { return len(t.pending) }

// flush writes the pending edits in one transaction.
func (t *Table) flush(ctx context.Context) error {
	err := pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		for _, e := range t.pending {
			args := make([]any, 0, len(e.key)+1)
			if e.value == "" {
				args = append(args, nil)
			} else {
				args = append(args, e.value)
			}
			for _, k := range e.key {
				args = append(args, k)
			}

			tag, err := tx.Exec(ctx, updateSQL(t.spec, e.column), args...)
			if err != nil {
				return fmt.Errorf("update %s.%s: %w", t.spec.Source(), e.column, err)
			}
			if tag.RowsAffected() == 0 {
				slog.Warn("edit matched no rows",
					"source", t.spec.Source(),
					"column", e.column,
					"key", e.key,
				)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sync %s: %w", t.spec.Source(), err)
	}

	slog.Debug("edits written", "source", t.spec.Source(), "count", len(t.pending))
	return nil
}

func (t *Table) columns(ctx context.Context) ([]string, error) {
	rows, err := t.db.Query(ctx, columnsSQL, t.spec.Schema, t.spec.Name)
	if err != nil {
		return nil, fmt.Errorf("query columns of %s: %w", t.spec.Source(), err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", t.spec.Source(), err)
	}
	return names, nil
}

func (t *Table) query(ctx context.Context, headers []string) ([][]string, error) {
	rows, err := t.db.Query(ctx, selectSQL(t.spec, headers))
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var result [][]string
	values := make([]pgtype.Text, len(headers))
	dest := make([]any, len(headers))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = v.String
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// replace installs a new snapshot, advancing the revision only when the
// headers, key or rows differ from the current snapshot.
func (t *Table) replace(headers []string, key []int, rows [][]string) {
	same := slices.Equal(t.headers, headers) &&
		slices.Equal(t.key, key) &&
		slices.EqualFunc(t.rows, rows, slices.Equal[[]string])
	if same && t.version > 0 {
		return
	}

	t.headers = headers
	t.key = key
	t.rows = rows
	t.version++
}

func (t *Table) Columns() int { return len(t.headers) }

func (t *Table) Rows() int { return len(t.rows) }

func (t *Table) HeaderText(col int) string { return t.headers[col] }

func (t *Table) CellText(row, col int) string { return t.rows[row][col] }

func (t *Table) Key() []int { return t.key }

func (t *Table) Ref() int64 { return t.version }

// SetCellText updates the snapshot and queues the write for Sync.
func (t *Table) SetCellText(row, col int, text string) {
	if t.rows[row][col] == text {
		return
	}

	e := edit{column: t.headers[col], value: text}
	for _, k := range t.key {
		e.key = append(e.key, t.rows[row][k])
	}
	t.pending = append(t.pending, e)

	t.rows[row][col] = text
	t.version++
}
