package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func allocate(t *testing.T, store *memStore, a *NumberAllocator) (string, error) {
	t.Helper()
	var number string
	err := (&mockTransactor{s: store}).WithTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		var err error
		number, err = a.Next(ctx, tx)
		return err
	})
	return number, err
}

func seedInvoice(store *memStore, number string, created time.Time) {
	store.invoices = append(store.invoices, &domain.Invoice{
		ID:            number,
		InvoiceNumber: number,
		CreatedAt:     created,
	})
}

func TestNumberAllocator_EmptyHistory(t *testing.T) {
	store := newMemStore()
	a := NewNumberAllocator("", 0, nil)

	number, err := allocate(t, store, a)
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", number)

	number, err = allocate(t, store, a)
	require.NoError(t, err)
	assert.Equal(t, "INV-00002", number)
}

func TestNumberAllocator_SeedsFromMostRecentInvoice(t *testing.T) {
	store := newMemStore()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seedInvoice(store, "INV-00007", base)
	seedInvoice(store, "INV-00042", base.Add(time.Hour))

	a := NewNumberAllocator("INV", 5, nil)

	number, err := allocate(t, store, a)
	require.NoError(t, err)
	assert.Equal(t, "INV-00043", number)

	// Subsequent allocations come from the counter, not history
	number, err = allocate(t, store, a)
	require.NoError(t, err)
	assert.Equal(t, "INV-00044", number)
}

func TestNumberAllocator_ClockFallback(t *testing.T) {
	tests := []struct {
		name   string
		millis int64
		want   string
	}{
		{name: "millis modulo 100000", millis: 1700000012345, want: "INV-12345"},
		{name: "zero maps to one", millis: 1700000000000, want: "INV-00001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			seedInvoice(store, "legacy-abc", time.Now())

			core, logs := observer.New(zap.WarnLevel)
			a := NewNumberAllocator("INV", 5, zap.New(core))
			a.now = func() time.Time { return time.UnixMilli(tt.millis) }

			number, err := allocate(t, store, a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, number)
			assert.Equal(t, 1, logs.FilterMessageSnippet("seeding counter from clock").Len())
		})
	}
}

func TestNumberAllocator_HistoryReadFailure(t *testing.T) {
	store := newMemStore()
	store.mostRecentErr = errors.New("disk I/O error")

	_, err := allocate(t, store, NewNumberAllocator("INV", 5, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Nil(t, store.counter, "counter must not be seeded when history cannot be read")
}

func TestNumberAllocator_WidthIsMinimum(t *testing.T) {
	store := newMemStore()
	last := int64(99999)
	store.counter = &last

	number, err := allocate(t, store, NewNumberAllocator("INV", 5, nil))
	require.NoError(t, err)
	assert.Equal(t, "INV-100000", number)
}

func TestNumberAllocator_CustomPrefix(t *testing.T) {
	store := newMemStore()
	seedInvoice(store, "BILL-0009", time.Now())

	number, err := allocate(t, store, NewNumberAllocator("BILL", 4, nil))
	require.NoError(t, err)
	assert.Equal(t, "BILL-0010", number)
}
