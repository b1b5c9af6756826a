package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxRunner executes fn within a transaction boundary, passing the
// transaction (or an equivalent execution context) through to whichever
// repository methods fn calls.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error
}

// PostgresTxRunner runs fn inside a real sqlx transaction, committing on
// success and rolling back on error or panic — the transaction boundary
// generate() needs around its delete-old-drafts-then-insert-new sequence.
type PostgresTxRunner struct {
	db *sqlx.DB
}

// NewPostgresTxRunner builds a TxRunner backed by db.
func NewPostgresTxRunner(db *sqlx.DB) *PostgresTxRunner {
	return &PostgresTxRunner{db: db}
}

func (r *PostgresTxRunner) WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
