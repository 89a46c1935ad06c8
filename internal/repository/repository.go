package repository

import (
	"context"
	"errors"

	"github.com/andy/billbook/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist. An empty
// list is never reported as an error.
var ErrNotFound = errors.New("not found")

// ProductRepository manages catalog persistence
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// ClientRepository manages client persistence
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id string) error
}

// InvoiceRepository manages invoice persistence. Invoices are append/delete only.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	// List returns all invoices, newest first
	List(ctx context.Context) ([]*domain.Invoice, error)
	// MostRecent returns up to limit invoices ordered by creation time, newest first
	MostRecent(ctx context.Context, limit int) ([]*domain.Invoice, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// CounterRepository manages the invoice number sequence
type CounterRepository interface {
	// Increment atomically bumps the counter and returns the new value.
	// ok is false when the counter has not been seeded yet.
	Increment(ctx context.Context) (value int64, ok bool, err error)
	// Seed creates the counter with the given last value if it does not exist
	Seed(ctx context.Context, last int64) error
	// Reset removes the counter so the next allocation reseeds from history
	Reset(ctx context.Context) error
}

// SettingsRepository manages the singleton settings row
type SettingsRepository interface {
	// Get returns the stored settings, creating defaults on first use
	Get(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, settings *domain.Settings) error
}

// Tx exposes repositories bound to a single transaction
type Tx interface {
	Clients() ClientRepository
	Invoices() InvoiceRepository
	Counter() CounterRepository
}

// Transactor runs fn inside one transaction, committing when fn returns nil
// and rolling back otherwise
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
