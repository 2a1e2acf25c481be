package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/authgate/internal/gateway/store"
	"github.com/aussiebroadwan/authgate/internal/gateway/store/drivers/sqlite/gen"
)

type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx, q: gen.New(tx)}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer Store owns the handle.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return sql.ErrTxDone }

func (t *txStore) Applications() store.Applications { return &applicationsRepo{q: t.q} }
func (t *txStore) Principals() store.Principals     { return &principalsRepo{q: t.q} }
func (t *txStore) MagicLinks() store.MagicLinks     { return &magicLinksRepo{q: t.q} }
func (t *txStore) AccessLogs() store.AccessLogs     { return &accessLogsRepo{q: t.q} }

// ApplyMigrations is a no-op inside a transaction.
func (t *txStore) ApplyMigrations() error { return nil }
