package repository

import (
	"context"
	"fmt"

	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
)

const invoiceColumns = `
	id, invoice_number, client_id, client_name, client_phone, client_address,
	subtotal, tax_rate, tax, discount, total, currency, created_at`

// InvoiceRepo is a SQL implementation of InvoiceRepository
type InvoiceRepo struct {
	db db.Querier
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(q db.Querier) *InvoiceRepo {
	return &InvoiceRepo{db: q}
}

// Create inserts an invoice and its line items. Run it inside a transaction
// so a failed item insert does not leave a partial invoice behind.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.ClientID,
		invoice.ClientName,
		invoice.ClientPhone,
		invoice.ClientAddress,
		invoice.Subtotal.String(),
		invoice.TaxRate.String(),
		invoice.Tax.String(),
		invoice.Discount.String(),
		invoice.Total.String(),
		invoice.Currency,
		formatTime(invoice.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	itemQuery := `
		INSERT INTO invoice_items (invoice_id, position, product_id, title, unit_price, quantity)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for pos, item := range invoice.Items {
		_, err := r.db.ExecContext(ctx, itemQuery,
			invoice.ID,
			pos,
			item.ProductID,
			item.Title,
			item.UnitPrice.String(),
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to add line item %d: %w", pos, err)
		}
	}

	return nil
}

// GetByID retrieves an invoice with its line items
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
}

// GetByNumber retrieves an invoice by invoice number
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = ?`, number)
}

func (r *InvoiceRepo) getOne(ctx context.Context, query string, arg any) (*domain.Invoice, error) {
	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, notFound("invoice", err)
	}

	if invoice.Items, err = r.getLineItems(ctx, invoice.ID); err != nil {
		return nil, err
	}
	return invoice, nil
}

// List retrieves all invoices, newest first
func (r *InvoiceRepo) List(ctx context.Context) ([]*domain.Invoice, error) {
	return r.list(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		ORDER BY created_at DESC, invoice_number DESC
	`)
}

// MostRecent retrieves the newest invoices by creation time
func (r *InvoiceRepo) MostRecent(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	if limit <= 0 {
		return []*domain.Invoice{}, nil
	}
	return r.list(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		ORDER BY created_at DESC, invoice_number DESC
		LIMIT ?
	`, limit)
}

func (r *InvoiceRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	// The SQLite pool has a single connection; release it before loading items.
	rows.Close()

	for _, invoice := range invoices {
		if invoice.Items, err = r.getLineItems(ctx, invoice.ID); err != nil {
			return nil, err
		}
	}

	return invoices, nil
}

// Delete removes an invoice and its line items. Run it inside a transaction
// so the items are never removed without the invoice.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	return expectOneRow("invoice", result)
}

// DeleteAll removes every invoice
func (r *InvoiceRepo) DeleteAll(ctx context.Context) error {
	for _, table := range []string{"invoice_items", "invoices"} {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// getLineItems retrieves the line items for an invoice in their original order
func (r *InvoiceRepo) getLineItems(ctx context.Context, invoiceID string) ([]domain.LineItem, error) {
	query := `
		SELECT product_id, title, unit_price, quantity
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		var unitPrice string

		if err := rows.Scan(&item.ProductID, &item.Title, &unitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		if item.UnitPrice, err = parseDecimal("unit_price", unitPrice); err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

// scanInvoice parses an invoice row without its line items
func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var subtotal, taxRate, tax, discount, total, createdAt string

	err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.ClientID,
		&invoice.ClientName,
		&invoice.ClientPhone,
		&invoice.ClientAddress,
		&subtotal,
		&taxRate,
		&tax,
		&discount,
		&total,
		&invoice.Currency,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if invoice.Subtotal, err = parseDecimal("subtotal", subtotal); err != nil {
		return nil, err
	}
	if invoice.TaxRate, err = parseDecimal("tax_rate", taxRate); err != nil {
		return nil, err
	}
	if invoice.Tax, err = parseDecimal("tax", tax); err != nil {
		return nil, err
	}
	if invoice.Discount, err = parseDecimal("discount", discount); err != nil {
		return nil, err
	}
	if invoice.Total, err = parseDecimal("total", total); err != nil {
		return nil, err
	}
	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return invoice, nil
}
