// Package postgres implements the store interfaces on top of pgx/v5 and
// pgxpool: raw SQL with numbered placeholders, pgx.ErrNoRows mapped to a
// typed not-found error, and explicit Begin/Commit/Rollback for
// multi-statement operations.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is a thin re-export so callers constructing repositories only need to
// import this package for the pool's own lifecycle.
type Pool = pgxpool.Pool

// TxAdapter satisfies store.Tx (Exec returning rows-affected as int64) on
// top of a live pgx.Tx, so OutboxRepository.InsertBatch can participate in
// the Unit of Work's transaction without the store package depending on pgx
// directly.
type TxAdapter struct {
	tx pgx.Tx
}

func NewTxAdapter(tx pgx.Tx) *TxAdapter {
	return &TxAdapter{tx: tx}
}

func (a *TxAdapter) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := a.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PgxTx exposes the underlying pgx.Tx so callers that need to pass the same
// transaction into multiple repository calls (the Unit of Work) can do so.
func (a *TxAdapter) PgxTx() pgx.Tx { return a.tx }
