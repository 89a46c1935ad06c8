package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/repository"
	"go.uber.org/zap"
)

// fallbackModulus bounds clock-derived numbers to five digits
const fallbackModulus = 100000

// NumberAllocator hands out invoice numbers from the invoice_counter row.
// It must run inside the transaction that inserts the invoice: a rollback
// then returns the number to the pool.
type NumberAllocator struct {
	prefix string
	width  int
	now    func() time.Time
	logger *zap.Logger
}

// NewNumberAllocator creates an allocator. Empty prefix and non-positive
// width fall back to INV and 5.
func NewNumberAllocator(prefix string, width int, logger *zap.Logger) *NumberAllocator {
	if prefix == "" {
		prefix = domain.DefaultNumberPrefix
	}
	if width <= 0 {
		width = domain.DefaultNumberWidth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NumberAllocator{
		prefix: prefix,
		width:  width,
		now:    time.Now,
		logger: logger,
	}
}

// Next allocates the next invoice number within tx
func (a *NumberAllocator) Next(ctx context.Context, tx repository.Tx) (string, error) {
	counter := tx.Counter()

	n, ok, err := counter.Increment(ctx)
	if err != nil {
		return "", err
	}

	if !ok {
		last, err := a.lastIssued(ctx, tx.Invoices())
		if err != nil {
			return "", err
		}
		if err := counter.Seed(ctx, last); err != nil {
			return "", err
		}
		if n, ok, err = counter.Increment(ctx); err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("invoice counter missing after seeding")
		}
	}

	return domain.FormatInvoiceNumber(a.prefix, n, a.width), nil
}

// lastIssued derives the counter's starting value from the newest invoice
func (a *NumberAllocator) lastIssued(ctx context.Context, invoices repository.InvoiceRepository) (int64, error) {
	recent, err := invoices.MostRecent(ctx, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to read invoice history: %w", err)
	}
	if len(recent) == 0 {
		return 0, nil
	}

	number := recent[0].InvoiceNumber
	n, err := domain.ParseInvoiceNumber(a.prefix, number)
	if err == nil {
		return n, nil
	}

	fallback := a.now().UnixMilli() % fallbackModulus
	if fallback == 0 {
		fallback = 1
	}
	a.logger.Warn("unparseable invoice number, seeding counter from clock",
		zap.String("invoice_number", number),
		zap.Int64("next", fallback),
		zap.Error(err),
	)
	// Seed one below so the following increment lands on the fallback value.
	return fallback - 1, nil
}
