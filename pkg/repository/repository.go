// Package repository provides the transaction and query helpers the domain
// repositories are written with. Helpers accept the narrow Querier, Executor,
// or DB interfaces so the same code runs on a pool or inside a transaction.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Querier is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DB is implemented by *sql.DB and *sql.Tx. Collaborators that must join the
// caller's transaction accept a DB rather than opening their own.
type DB interface {
	Querier
	Executor
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc reads one entity from a row.
type ScanFunc[T any] func(Scanner) (T, error)

// WithTx runs fn in a transaction and commits when fn succeeds. An error or a
// panic from fn rolls back; the panic is re-raised after the rollback.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (result T, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	result, err = fn(tx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err = tx.Commit(); err != nil {
		var zero T
		return zero, fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return result, nil
}

// QueryOne scans the single row of query. No row yields sql.ErrNoRows.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) (T, error) {
	return scan(q.QueryRowContext(ctx, query, args...))
}

// QueryMany scans every row of query. No rows yields an empty, non-nil slice.
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// QueryIDs returns the values of a query selecting one uuid column.
func QueryIDs(ctx context.Context, q Querier, query string, args ...any) ([]uuid.UUID, error) {
	return QueryMany(ctx, q, query, args, func(s Scanner) (id uuid.UUID, err error) {
		err = s.Scan(&id)
		return id, err
	})
}

// ExecAffected runs a statement and returns the number of rows it changed.
// Conditional writes (WHERE status <> ..., ON CONFLICT DO NOTHING) report
// whether they took effect through it.
func ExecAffected(ctx context.Context, e Executor, query string, args ...any) (int64, error) {
	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ExecExpectOne runs a statement that must change a row. Changing none
// yields sql.ErrNoRows, which MapError turns into the caller's not-found or
// guard error.
func ExecExpectOne(ctx context.Context, e Executor, query string, args ...any) error {
	n, err := ExecAffected(ctx, e, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
