package repository

import (
	"context"

	"github.com/andy/billbook/internal/db"
)

// SQLTransactor runs repository work inside a database transaction
type SQLTransactor struct {
	db *db.DB
}

// NewTransactor creates a Transactor for the given database
func NewTransactor(database *db.DB) *SQLTransactor {
	return &SQLTransactor{db: database}
}

// WithTx implements Transactor
func (t *SQLTransactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return t.db.RunInTx(ctx, func(sqlTx *db.Tx) error {
		return fn(ctx, &sqlTxRepos{tx: sqlTx})
	})
}

type sqlTxRepos struct {
	tx *db.Tx
}

func (r *sqlTxRepos) Clients() ClientRepository   { return NewClientRepo(r.tx) }
func (r *sqlTxRepos) Invoices() InvoiceRepository { return NewInvoiceRepo(r.tx) }
func (r *sqlTxRepos) Counter() CounterRepository  { return NewCounterRepo(r.tx) }
