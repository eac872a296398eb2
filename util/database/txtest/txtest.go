// Package txtest provides in-memory stand-ins for database.Tx so service
// transaction flows can be tested without a running PostgreSQL.
package txtest

import (
	"context"
	"errors"

	"librarium/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FakeTx records whether the scope ended in commit or rollback. Query
// methods are not implemented: service tests mock repositories, so nothing
// should reach the tx directly.
type FakeTx struct {
	Committed   bool
	RolledBack  bool
	CommitErr   error
	RollbackErr error
}

var _ database.Tx = (*FakeTx)(nil)

func (t *FakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("txtest: Exec not implemented")
}

func (t *FakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("txtest: Query not implemented")
}

func (t *FakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{}
}

func (t *FakeTx) Commit(ctx context.Context) error {
	t.Committed = true
	return t.CommitErr
}

func (t *FakeTx) Rollback(ctx context.Context) error {
	if t.Committed || t.RolledBack {
		return pgx.ErrTxClosed
	}
	t.RolledBack = true
	return t.RollbackErr
}

type errRow struct{}

func (errRow) Scan(dest ...any) error { return errors.New("txtest: QueryRow not implemented") }

// Beginner hands out a single FakeTx.
type Beginner struct {
	Tx  *FakeTx
	Err error
}

func (b *Beginner) Begin(ctx context.Context) (database.Tx, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	if b.Tx == nil {
		b.Tx = &FakeTx{}
	}
	return b.Tx, nil
}
