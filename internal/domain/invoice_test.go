package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []LineItem
		taxRate      string
		discount     string
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "single item with tax and discount",
			items:        []LineItem{{ProductID: "p1", Title: "Widget", UnitPrice: dec("100.00"), Quantity: 2}},
			taxRate:      "18",
			discount:     "10",
			wantSubtotal: "200",
			wantTax:      "36",
			wantTotal:    "226",
		},
		{
			name:         "discount larger than subtotal plus tax is not clamped",
			items:        []LineItem{{ProductID: "p1", Title: "Widget", UnitPrice: dec("100.00"), Quantity: 2}},
			taxRate:      "18",
			discount:     "500",
			wantSubtotal: "200",
			wantTax:      "36",
			wantTotal:    "-274",
		},
		{
			name: "tax rounds half away from zero to cents",
			items: []LineItem{
				{ProductID: "p1", Title: "A", UnitPrice: dec("0.05"), Quantity: 1},
			},
			taxRate:      "10",
			discount:     "0",
			wantSubtotal: "0.05",
			wantTax:      "0.01",
			wantTotal:    "0.06",
		},
		{
			name: "multiple items zero tax",
			items: []LineItem{
				{ProductID: "p1", Title: "A", UnitPrice: dec("19.99"), Quantity: 3},
				{ProductID: "p2", Title: "B", UnitPrice: dec("0.01"), Quantity: 7},
			},
			taxRate:      "0",
			discount:     "0",
			wantSubtotal: "60.04",
			wantTax:      "0",
			wantTotal:    "60.04",
		},
		{
			name: "fractional tax rate",
			items: []LineItem{
				{ProductID: "p1", Title: "A", UnitPrice: dec("49.95"), Quantity: 1},
			},
			taxRate:      "8.25",
			discount:     "0",
			wantSubtotal: "49.95",
			wantTax:      "4.12",
			wantTotal:    "54.07",
		},
		{
			name:         "no items",
			items:        nil,
			taxRate:      "18",
			discount:     "5",
			wantSubtotal: "0",
			wantTax:      "0",
			wantTotal:    "-5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, dec(tt.taxRate), dec(tt.discount))

			assert.True(t, got.Subtotal.Equal(dec(tt.wantSubtotal)), "Subtotal = %s, want %s", got.Subtotal, tt.wantSubtotal)
			assert.True(t, got.Tax.Equal(dec(tt.wantTax)), "Tax = %s, want %s", got.Tax, tt.wantTax)
			assert.True(t, got.Total.Equal(dec(tt.wantTotal)), "Total = %s, want %s", got.Total, tt.wantTotal)
		})
	}
}

func TestComputeTotals_NoSummationDrift(t *testing.T) {
	// 0.1 is not representable in binary floating point; a float sum of
	// 1000 of these drifts away from 100.
	items := make([]LineItem, 1000)
	for i := range items {
		items[i] = LineItem{ProductID: "p", Title: "Dime", UnitPrice: dec("0.10"), Quantity: 1}
	}

	forward := ComputeTotals(items, decimal.Zero, decimal.Zero)

	reversed := make([]LineItem, len(items))
	for i, item := range items {
		reversed[len(items)-1-i] = item
	}
	backward := ComputeTotals(reversed, decimal.Zero, decimal.Zero)

	assert.True(t, forward.Subtotal.Equal(dec("100")), "Subtotal = %s", forward.Subtotal)
	assert.True(t, forward.Subtotal.Equal(backward.Subtotal))
}

func TestComputeTotals_Idempotent(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", Title: "A", UnitPrice: dec("12.34"), Quantity: 3},
		{ProductID: "p2", Title: "B", UnitPrice: dec("5.55"), Quantity: 2},
	}

	first := ComputeTotals(items, dec("12.5"), dec("3"))
	second := ComputeTotals(items, dec("12.5"), dec("3"))

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, items[0].UnitPrice.Equal(dec("12.34")), "inputs must not be modified")
}

func TestInvoice_MatchesQuery(t *testing.T) {
	inv := &Invoice{InvoiceNumber: "INV-00042", ClientName: "Asha Traders"}

	assert.True(t, inv.MatchesQuery(""))
	assert.True(t, inv.MatchesQuery("asha"))
	assert.True(t, inv.MatchesQuery("00042"))
	assert.False(t, inv.MatchesQuery("inv-00042"), "number match is case sensitive")
	assert.False(t, inv.MatchesQuery("ravi"))
}
