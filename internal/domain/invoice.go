package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineItem is one product-quantity-price entry, frozen when the invoice is created
type LineItem struct {
	ProductID string
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Amount returns unitPrice * quantity
func (li LineItem) Amount() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Totals is the result of pricing a set of line items
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals prices items with a tax rate in percent and a flat discount.
// Subtotal is exact, tax is rounded to 2 places, and total is
// subtotal + tax - discount without clamping, so it may be negative.
func ComputeTotals(items []LineItem, taxRate, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}

	tax := subtotal.Mul(taxRate).Div(hundred).Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}

// Invoice is an immutable record: client details, items, tax rate and
// currency are copies taken at creation time.
type Invoice struct {
	ID            string
	InvoiceNumber string
	ClientID      string
	ClientName    string
	ClientPhone   string
	ClientAddress string
	Items         []LineItem
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal // percent
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Currency      string
	CreatedAt     time.Time
}

// ApplyTotals copies computed totals onto the invoice
func (i *Invoice) ApplyTotals(t Totals) {
	i.Subtotal = t.Subtotal
	i.Tax = t.Tax
	i.Total = t.Total
}

// MatchesQuery reports whether the client name contains query (ignoring case)
// or the invoice number contains it verbatim
func (i *Invoice) MatchesQuery(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(i.ClientName), strings.ToLower(query)) ||
		strings.Contains(i.InvoiceNumber, query)
}

// Validate returns an error if the invoice is invalid
func (i *Invoice) Validate() error {
	if i.ID == "" {
		return errors.New("invoice ID is required")
	}
	if i.InvoiceNumber == "" {
		return errors.New("invoice number is required")
	}
	if strings.TrimSpace(i.ClientName) == "" {
		return ErrClientNameRequired
	}
	if strings.TrimSpace(i.ClientPhone) == "" {
		return ErrClientPhoneRequired
	}
	if len(i.Items) == 0 {
		return errors.New("invoice must have at least one item")
	}
	for _, item := range i.Items {
		if item.Quantity < 1 {
			return errors.New("item quantity must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			return errors.New("item price cannot be negative")
		}
	}
	if i.CreatedAt.IsZero() {
		return errors.New("created at is required")
	}
	return nil
}
