package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/andy/billbook/internal/domain"
)

// CSVHeader is the first row of an invoice export
var CSVHeader = []string{"Invoice No", "Client", "Phone", "Date", "Subtotal", "Tax", "Discount", "Total"}

// WriteInvoicesCSV writes one row per invoice in the order given
func WriteInvoicesCSV(w io.Writer, invoices []*domain.Invoice) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, inv := range invoices {
		record := []string{
			inv.InvoiceNumber,
			inv.ClientName,
			inv.ClientPhone,
			inv.CreatedAt.Local().Format("2006-01-02"),
			inv.Subtotal.StringFixed(2),
			inv.Tax.StringFixed(2),
			inv.Discount.StringFixed(2),
			inv.Total.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write invoice %s: %w", inv.InvoiceNumber, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
