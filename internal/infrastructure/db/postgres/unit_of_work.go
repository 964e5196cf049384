package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// ErrReleased is returned by a UnitOfWork used after Release.
var ErrReleased = errors.New("unit of work already released")

// Beginner opens transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UnitOfWork is one request's persistence context. The first statement opens
// a transaction on the pool; every later statement runs inside it until
// Commit. Repositories built on it therefore see each other's staged writes.
//
// A UnitOfWork belongs to a single request goroutine and is not safe for
// concurrent use.
type UnitOfWork struct {
	pool     Beginner
	tx       pgx.Tx
	released bool
}

func NewUnitOfWork(pool Beginner) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx, err := u.current(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return tx.Exec(ctx, sql, args...)
}

func (u *UnitOfWork) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	tx, err := u.current(ctx)
	if err != nil {
		return nil, err
	}
	return tx.Query(ctx, sql, args...)
}

func (u *UnitOfWork) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	tx, err := u.current(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return tx.QueryRow(ctx, sql, args...)
}

// Commit makes the staged writes durable. With nothing staged it is a no-op.
// The next statement opens a fresh transaction.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.released {
		return ErrReleased
	}
	if u.tx == nil {
		return nil
	}

	tx := u.tx
	u.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("UOW_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// Release rolls back anything left uncommitted and returns the connection to
// the pool. It runs even when ctx is already cancelled. Calling it twice is safe.
func (u *UnitOfWork) Release(ctx context.Context) error {
	if u.released {
		return nil
	}
	u.released = true

	if u.tx == nil {
		return nil
	}

	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return oops.Code("UOW_ROLLBACK_FAILED").Wrap(err)
	}
	return nil
}

// InTransaction reports whether a transaction is currently open.
func (u *UnitOfWork) InTransaction() bool {
	return u.tx != nil
}

func (u *UnitOfWork) current(ctx context.Context) (pgx.Tx, error) {
	if u.released {
		return nil, ErrReleased
	}
	if u.tx != nil {
		return u.tx, nil
	}

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, oops.Code("UOW_BEGIN_FAILED").Wrap(err)
	}
	u.tx = tx
	return tx, nil
}

// errRow defers a begin failure to Scan, matching pgx.Row semantics.
type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }
