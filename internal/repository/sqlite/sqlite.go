package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/philipcowcer-eng/LoadBalance/internal/db"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
// A repo returned by InTx is bound to that transaction.
type SQLiteRepo struct {
	conn   *db.DB
	q      sqlx.ExtContext
	inTx   bool
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.Store = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, q: conn.X(), logger: logger}
}

// InTx runs fn in a transaction. Calls made on a repo that is already bound
// to a transaction join it.
func (r *SQLiteRepo) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.conn.InTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&SQLiteRepo{conn: r.conn, q: tx, inTx: true, logger: r.logger})
	})
}

func (r *SQLiteRepo) Savepoint(ctx context.Context, name string, fn func() error) error {
	if _, err := r.q.ExecContext(ctx, `SAVEPOINT `+name); err != nil {
		return fmt.Errorf("savepoint %s: %w", name, err)
	}
	if err := fn(); err != nil {
		if _, rbErr := r.q.ExecContext(ctx, `ROLLBACK TO `+name); rbErr != nil {
			r.logger.Error("rollback to savepoint failed", "savepoint", name, "error", rbErr)
		}
		if _, relErr := r.q.ExecContext(ctx, `RELEASE `+name); relErr != nil {
			r.logger.Error("release savepoint failed", "savepoint", name, "error", relErr)
		}
		return err
	}
	if _, err := r.q.ExecContext(ctx, `RELEASE `+name); err != nil {
		return fmt.Errorf("release %s: %w", name, err)
	}
	return nil
}

// getOne scans a single row into a new T, returning nil when no row matches.
func getOne[T any](ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*T, error) {
	var v T
	if err := sqlx.GetContext(ctx, q, &v, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func list[T any](ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]T, error) {
	out := []T{}
	if err := sqlx.SelectContext(ctx, q, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
