package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestDB opens a migrated, encrypted database in a temp dir
func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "billbook.db"), "test-key")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, database.RunMigrations(context.Background()))
	return database
}

func sampleInvoice(number string, createdAt time.Time) *domain.Invoice {
	inv := &domain.Invoice{
		ID:            "inv-" + number,
		InvoiceNumber: number,
		ClientID:      "client-1",
		ClientName:    "Asha Traders",
		ClientPhone:   "+91 98765 43210",
		ClientAddress: "12 MG Road",
		Items: []domain.LineItem{
			{ProductID: "p-tea", Title: "Tea", UnitPrice: dec("10.50"), Quantity: 4},
			{ProductID: "p-cake", Title: "Cake", UnitPrice: dec("45"), Quantity: 1},
		},
		TaxRate:   dec("18"),
		Discount:  dec("5"),
		Currency:  "₹",
		CreatedAt: createdAt,
	}
	inv.ApplyTotals(domain.ComputeTotals(inv.Items, inv.TaxRate, inv.Discount))
	return inv
}

func TestMigrations_AreIdempotent(t *testing.T) {
	database := newTestDB(t)
	require.NoError(t, database.RunMigrations(context.Background()))
}

func TestProductRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(newTestDB(t))

	tea := domain.NewProduct("Tea", "Masala chai", dec("10.50"))
	cake := domain.NewProduct("Cake", "", dec("45"))
	require.NoError(t, repo.Create(ctx, tea))
	require.NoError(t, repo.Create(ctx, cake))

	got, err := repo.GetByID(ctx, tea.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tea", got.Title)
	assert.Equal(t, "Masala chai", got.Description)
	assert.True(t, got.Price.Equal(dec("10.5")))
	assert.True(t, got.CreatedAt.Equal(tea.CreatedAt))

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Cake", products[0].Title, "catalog is ordered by title")

	got.Price = dec("12")
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, tea.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(dec("12")))

	require.NoError(t, repo.Delete(ctx, tea.ID))
	_, err = repo.GetByID(ctx, tea.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, tea.ID), ErrNotFound)
}

func TestProductRepo_RejectsInvalid(t *testing.T) {
	repo := NewProductRepo(newTestDB(t))
	err := repo.Create(context.Background(), domain.NewProduct("", "", dec("1")))
	assert.Error(t, err)
}

func TestProductRepo_EmptyListIsNotAnError(t *testing.T) {
	products, err := NewProductRepo(newTestDB(t)).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestClientRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepo(newTestDB(t))

	client := domain.NewClient("Ravi", "98765 43210", "")
	require.NoError(t, repo.Create(ctx, client))

	client.Address = "5 Park Street"
	require.NoError(t, repo.Update(ctx, client))

	got, err := repo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "5 Park Street", got.Address)

	clients, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	require.NoError(t, repo.Delete(ctx, client.ID))
	_, err = repo.GetByID(ctx, client.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientRepo_UpdateMissing(t *testing.T) {
	repo := NewClientRepo(newTestDB(t))
	err := repo.Update(context.Background(), domain.NewClient("Ghost", "9876543210", ""))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepo(newTestDB(t))

	created := time.Date(2025, 3, 14, 10, 0, 0, 123456789, time.UTC)
	inv := sampleInvoice("INV-00001", created)
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.GetByNumber(ctx, "INV-00001")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, "Asha Traders", got.ClientName)
	assert.Equal(t, "₹", got.Currency)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.Subtotal.Equal(dec("87")))
	assert.True(t, got.Tax.Equal(dec("15.66")))
	assert.True(t, got.Total.Equal(dec("97.66")))

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Tea", got.Items[0].Title, "line items keep their order")
	assert.Equal(t, 4, got.Items[0].Quantity)
	assert.True(t, got.Items[0].UnitPrice.Equal(dec("10.50")))
	assert.Equal(t, "Cake", got.Items[1].Title)

	byID, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", byID.InvoiceNumber)

	_, err = repo.GetByNumber(ctx, "INV-99999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceRepo_NumbersAreUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepo(newTestDB(t))

	require.NoError(t, repo.Create(ctx, sampleInvoice("INV-00001", time.Now())))

	dup := sampleInvoice("INV-00001", time.Now())
	dup.ID = "another-id"
	assert.Error(t, repo.Create(ctx, dup))
}

func TestInvoiceRepo_ListAndMostRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepo(newTestDB(t))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, sampleInvoice("INV-00001", base)))
	require.NoError(t, repo.Create(ctx, sampleInvoice("INV-00003", base.Add(2*time.Hour))))
	require.NoError(t, repo.Create(ctx, sampleInvoice("INV-00002", base.Add(time.Hour))))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "INV-00003", all[0].InvoiceNumber)
	assert.Equal(t, "INV-00001", all[2].InvoiceNumber)
	assert.Len(t, all[1].Items, 2, "listed invoices carry their items")

	recent, err := repo.MostRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "INV-00003", recent[0].InvoiceNumber)

	none, err := repo.MostRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInvoiceRepo_Delete(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	repo := NewInvoiceRepo(database)

	inv := sampleInvoice("INV-00001", time.Now())
	require.NoError(t, repo.Create(ctx, inv))
	require.NoError(t, repo.Delete(ctx, inv.ID))

	_, err := repo.GetByID(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, inv.ID), ErrNotFound)

	var items int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoice_items`).Scan(&items))
	assert.Zero(t, items)
}

func TestInvoiceRepo_DeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepo(newTestDB(t))

	require.NoError(t, repo.Create(ctx, sampleInvoice("INV-00001", time.Now())))
	require.NoError(t, repo.Create(ctx, sampleInvoice("INV-00002", time.Now())))
	require.NoError(t, repo.DeleteAll(ctx))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCounterRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewCounterRepo(newTestDB(t))

	_, ok, err := repo.Increment(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "unseeded counter reports ok=false")

	require.NoError(t, repo.Seed(ctx, 42))
	require.NoError(t, repo.Seed(ctx, 7), "seeding twice keeps the first value")

	value, ok, err := repo.Increment(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(43), value)

	value, _, err = repo.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(44), value)

	require.NoError(t, repo.Reset(ctx))
	_, ok, err = repo.Increment(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsRepo_DefaultsAndSave(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepo(newTestDB(t))

	s, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCompanyName, s.CompanyName)
	assert.Equal(t, domain.DefaultCurrency, s.Currency)
	assert.True(t, s.TaxRate.IsZero())
	assert.False(t, s.DarkMode)

	s.CompanyName = "Asha Traders"
	s.TaxRate = dec("18")
	s.Currency = "$"
	s.DarkMode = true
	s.PinHash = "hash"
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha Traders", got.CompanyName)
	assert.True(t, got.TaxRate.Equal(dec("18")))
	assert.Equal(t, "$", got.Currency)
	assert.True(t, got.DarkMode)
	assert.True(t, got.IsPinSet())
}

func TestSettingsRepo_RejectsNegativeTax(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))
	s := domain.DefaultSettings()
	s.TaxRate = dec("-1")
	assert.Error(t, repo.Save(context.Background(), s))
}

func TestTransactor_CommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	transactor := NewTransactor(database)
	clients := NewClientRepo(database)

	kept := domain.NewClient("Kept", "9876543210", "")
	err := transactor.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Clients().Create(ctx, kept); err != nil {
			return err
		}
		return tx.Counter().Seed(ctx, 10)
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	dropped := domain.NewClient("Dropped", "9876543210", "")
	err = transactor.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Clients().Create(ctx, dropped); err != nil {
			return err
		}
		if _, _, err := tx.Counter().Increment(ctx); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = clients.GetByID(ctx, kept.ID)
	assert.NoError(t, err)
	_, err = clients.GetByID(ctx, dropped.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	value, ok, err := NewCounterRepo(database).Increment(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(11), value, "rolled back increment is not consumed")
}
