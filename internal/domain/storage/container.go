package storage

import (
	"context"
	"fmt"

	"tortillometro/internal/domain/entries"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool    *pgxpool.Pool // needed by WithTx and Ping
	Entries entries.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:    db,
		Entries: entries.NewRepository(db),
	}
}

// Ping reports whether the underlying pool can reach the database.
func (c *Container) Ping(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	return c.pool.Ping(ctx)
}

// Tx is a tx-scoped set of repositories.
type Tx struct {
	Entries entries.Store
}

// WithTx runs fn atomically. Entries read through tx.Entries are row-locked
// until the transaction ends. The transaction is committed only if fn returns nil.
//
// A container built without a pool runs fn directly against its own repositories.
func (c *Container) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	if c.pool == nil {
		if c.Entries == nil {
			return fmt.Errorf("storage container has neither pool nor repositories")
		}
		return fn(&Tx{Entries: c.Entries})
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	if err := fn(&Tx{Entries: entries.NewLockingRepository(tx)}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
