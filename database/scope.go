package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"neuro-sync/models"
)

// Scope is one acquired connection with an open transaction. Release ends it
// with exactly one commit or rollback and returns the connection to the pool.
type Scope struct {
	conn  *sql.Conn
	tx    *sql.Tx
	once  sync.Once
	depth int
}

type scopeKey struct{ db *DB }

// Acquire takes a connection from the pool and begins a transaction. Waiting
// for a connection is bounded by the configured timeout. Every successful
// Acquire must be paired with a Release.
func (db *DB) Acquire(ctx context.Context) (*Scope, error) {
	waitCtx, cancel := context.WithTimeout(ctx, db.settings.Timeout)
	defer cancel()

	conn, err := db.sql.Conn(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", classify(err))
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("begin tx: %w", classify(err))
	}
	return &Scope{conn: conn, tx: tx}, nil
}

// Release commits when err is nil and rolls back otherwise, then releases the
// connection. Only the first call has any effect. The returned error is err,
// or the commit failure.
func (s *Scope) Release(err error) error {
	result := err
	s.once.Do(func() {
		if err != nil {
			if rbErr := s.tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				result = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		} else if cErr := s.tx.Commit(); cErr != nil {
			result = fmt.Errorf("commit: %w", classify(cErr))
		}
		if cErr := s.conn.Close(); cErr != nil && result == nil {
			result = fmt.Errorf("release connection: %w", cErr)
		}
	})
	return result
}

// WithScope runs fn inside a scope. When ctx already carries a scope from
// this DB, fn joins that transaction under a savepoint instead of opening a
// new connection, so nested repository calls stay atomic with their caller.
func (db *DB) WithScope(ctx context.Context, fn func(ctx context.Context, s *Scope) error) error {
	if outer, ok := ctx.Value(scopeKey{db}).(*Scope); ok {
		return outer.savepoint(ctx, fn)
	}

	s, err := db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			s.Release(fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()
	return s.Release(fn(context.WithValue(ctx, scopeKey{db}, s), s))
}

// InTx is WithScope for callers that only need the scoped context.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithScope(ctx, func(ctx context.Context, _ *Scope) error {
		return fn(ctx)
	})
}

func (s *Scope) savepoint(ctx context.Context, fn func(ctx context.Context, s *Scope) error) error {
	s.depth++
	name := fmt.Sprintf("sp_%d", s.depth)
	defer func() { s.depth-- }()

	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return classify(err)
	}
	if err := fn(ctx, s); err != nil {
		if _, rbErr := s.tx.ExecContext(ctx, "ROLLBACK TO "+name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to %s: %w", name, rbErr))
		}
		s.tx.ExecContext(ctx, "RELEASE "+name)
		return err
	}
	if _, err := s.tx.ExecContext(ctx, "RELEASE "+name); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Scope) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

// QueryRows returns every result row keyed by column name.
func (s *Scope) QueryRows(ctx context.Context, query string, args ...any) ([]models.Row, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]models.Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(models.Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}

	return result, classify(rows.Err())
}

// QueryRow returns the first result row, or nil when there is none.
func (s *Scope) QueryRow(ctx context.Context, query string, args ...any) (models.Row, error) {
	rows, err := s.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
