package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/andy/billbook/internal/config"
	"github.com/andy/billbook/internal/crypto"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(crypto.EnvKey, "test-key")

	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(home, "billbook.db")
	cfg.Invoice.OutputDir = filepath.Join(home, "invoices")
	cfg.Log = config.LogConfig{}

	a, err := NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestApp_ConcurrentOrdersGetGaplessNumbers(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	tea := domain.NewProduct("Tea", "", decimal.RequireFromString("10"))
	require.NoError(t, a.ProductRepo.Create(ctx, tea))

	settings, err := a.Settings(ctx)
	require.NoError(t, err)

	const orders = 8
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < orders; i++ {
		g.Go(func() error {
			cart := domain.NewCart()
			cart.Add(tea.ID, i+1)
			_, err := a.InvoiceService.CreateInvoice(ctx, service.CreateInvoiceRequest{
				Cart:   cart,
				Client: service.ClientInput{Name: fmt.Sprintf("Client %d", i), Phone: "9876543210"},
			}, settings)
			return err
		})
	}
	require.NoError(t, g.Wait())

	invoices, err := a.InvoiceService.ListInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, orders)

	seen := make(map[string]bool)
	for _, inv := range invoices {
		seen[inv.InvoiceNumber] = true
	}
	for n := int64(1); n <= orders; n++ {
		number := domain.FormatInvoiceNumber("INV", n, 5)
		assert.True(t, seen[number], "missing %s", number)
	}
}

func TestApp_SettingsSnapshotIntoInvoice(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	cake := domain.NewProduct("Cake", "", decimal.RequireFromString("100"))
	require.NoError(t, a.ProductRepo.Create(ctx, cake))

	settings, err := a.Settings(ctx)
	require.NoError(t, err)
	settings.TaxRate = decimal.RequireFromString("18")
	settings.Currency = "$"
	require.NoError(t, a.SettingsRepo.Save(ctx, settings))

	cart := domain.NewCart()
	cart.Add(cake.ID, 2)
	inv, err := a.InvoiceService.CreateInvoice(ctx, service.CreateInvoiceRequest{
		Cart:     cart,
		Client:   service.ClientInput{Name: "Meera", Phone: "9876543210"},
		Discount: decimal.RequireFromString("6"),
	}, settings)
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", inv.InvoiceNumber)

	// Later price and settings changes do not touch the saved invoice
	cake.Price = decimal.RequireFromString("150")
	require.NoError(t, a.ProductRepo.Update(ctx, cake))
	settings.Currency = "€"
	require.NoError(t, a.SettingsRepo.Save(ctx, settings))

	got, err := a.InvoiceService.GetInvoice(ctx, "INV-00001")
	require.NoError(t, err)
	assert.Equal(t, "$", got.Currency)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("100")))
	assert.True(t, got.Total.Equal(decimal.RequireFromString("230")))

	client, err := a.ClientRepo.GetByID(ctx, got.ClientID)
	require.NoError(t, err)
	assert.Equal(t, "Meera", client.Name)
}

func TestApp_GateStartsUnlockedWithoutPin(t *testing.T) {
	a := newTestApp(t)

	locked, err := a.Gate.IsLocked(context.Background())
	require.NoError(t, err)
	assert.False(t, locked)
}
