package render

import (
	"bytes"
	"encoding/csv"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleInvoice() *domain.Invoice {
	inv := &domain.Invoice{
		ID:            "b2c6a9a0-0000-4000-8000-000000000001",
		InvoiceNumber: "INV-00042",
		ClientID:      "c1",
		ClientName:    "Asha Traders",
		ClientPhone:   "+91 98765-43210",
		ClientAddress: "12 MG Road",
		Items: []domain.LineItem{
			{ProductID: "p1", Title: "Widget", UnitPrice: dec("100.00"), Quantity: 2},
			{ProductID: "p2", Title: "Gadget, large", UnitPrice: dec("12.50"), Quantity: 1},
		},
		TaxRate:   dec("18"),
		Discount:  dec("10"),
		Currency:  "₹",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local),
	}
	inv.ApplyTotals(domain.ComputeTotals(inv.Items, inv.TaxRate, inv.Discount))
	return inv
}

func sampleSettings() *domain.Settings {
	s := domain.DefaultSettings()
	s.CompanyName = "Chai Corner"
	s.CompanyPhone = "080-1234567"
	return s
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "₹226.00", FormatMoney("₹", dec("226")))
	assert.Equal(t, "-₹274.00", FormatMoney("₹", dec("-274")))
	assert.Equal(t, "$0.10", FormatMoney("$", dec("0.1")))
}

func TestWhatsAppLink(t *testing.T) {
	inv := sampleInvoice()
	link := WhatsAppLink(inv, sampleSettings())

	require.True(t, strings.HasPrefix(link, "https://wa.me/919876543210?text="), link)
	assert.NotContains(t, link, "+", "spaces are encoded as %20")

	u, err := url.Parse(link)
	require.NoError(t, err)
	msg := u.Query().Get("text")

	assert.Equal(t, WhatsAppMessage(inv, sampleSettings()), msg)
	assert.True(t, strings.HasPrefix(msg, "Hello Asha Traders,\n"))
	assert.Contains(t, msg, "📋 Invoice No: #INV-00042")
	assert.Contains(t, msg, "📅 Date: 01 Jun 2025")
	assert.Contains(t, msg, "• Widget x2 = ₹200.00")
	assert.Contains(t, msg, "• Gadget, large x1 = ₹12.50")
	assert.Contains(t, msg, "💰 Total: ₹240.75")
	assert.True(t, strings.HasSuffix(msg, "— Chai Corner"))
}

func TestWriteInvoicesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInvoicesCSV(&buf, []*domain.Invoice{sampleInvoice()}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, []string{
		"INV-00042", "Asha Traders", "+91 98765-43210", "2025-06-01",
		"212.50", "38.25", "10.00", "240.75",
	}, records[1])
}

func TestWriteInvoicesCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInvoicesCSV(&buf, nil))
	assert.Equal(t, "Invoice No,Client,Phone,Date,Subtotal,Tax,Discount,Total\n", buf.String())
}

func TestNewInvoicePDF(t *testing.T) {
	pdf := NewInvoicePDF(sampleInvoice(), sampleSettings())
	pdf.SetCompression(false)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	for _, want := range []string{
		"Chai Corner", "INVOICE", "Invoice #: INV-00042", "Bill To:", "Asha Traders",
		"Widget", "Subtotal:", "Tax:", "Discount:", "Grand Total:", "Rs.240.75",
		"Thank you for your business!",
	} {
		assert.Contains(t, out, want)
	}
}

func TestNewInvoicePDF_OmitsZeroTaxAndDiscount(t *testing.T) {
	inv := sampleInvoice()
	inv.TaxRate = decimal.Zero
	inv.Discount = decimal.Zero
	inv.ApplyTotals(domain.ComputeTotals(inv.Items, inv.TaxRate, inv.Discount))

	pdf := NewInvoicePDF(inv, sampleSettings())
	pdf.SetCompression(false)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	out := buf.String()
	assert.NotContains(t, out, "(Tax:)")
	assert.NotContains(t, out, "(Discount:)")
	assert.Contains(t, out, "Grand Total:")
}

func TestSavePDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "invoices")

	path, err := SavePDF(dir, sampleInvoice(), sampleSettings())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "INV-00042.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
