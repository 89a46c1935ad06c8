package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andy/billbook/internal/domain"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Layout in millimetres on an A4 portrait page
const (
	marginLeft  = 14.0
	marginRight = 196.0
	totalsLabel = 140.0
	pageCenter  = 105.0
	footerY     = 280.0
	tableStartY = 82.0
	rowHeight   = 8.0
)

var columnWidths = []float64{80, 25, 35, 35}

// The core PDF fonts only cover cp1252; symbols outside it get a readable stand-in.
var pdfCurrency = map[string]string{
	"₹": "Rs.",
	"₽": "RUB ",
	"₩": "KRW ",
	"₦": "NGN ",
}

// NewInvoicePDF lays out an invoice on a single A4 page
func NewInvoicePDF(inv *domain.Invoice, settings *domain.Settings) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, 10, 210-marginRight)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(inv.InvoiceNumber, true)
	pdf.SetAuthor(settings.DisplayName(), true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	currency := inv.Currency
	if currency == "" {
		currency = settings.CurrencySymbol()
	}
	if alt, ok := pdfCurrency[currency]; ok {
		currency = alt
	}
	money := func(amount decimal.Decimal) string {
		return tr(FormatMoney(currency, amount))
	}

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(marginLeft, 25, tr(settings.DisplayName()))

	pdf.SetFont("Helvetica", "", 10)
	if settings.CompanyAddress != "" {
		pdf.Text(marginLeft, 33, tr(settings.CompanyAddress))
	}
	if settings.CompanyPhone != "" {
		pdf.Text(marginLeft, 39, tr("Phone: "+settings.CompanyPhone))
	}

	// Invoice info
	pdf.SetFont("Helvetica", "B", 18)
	rightText(pdf, 25, "INVOICE")

	pdf.SetFont("Helvetica", "", 10)
	rightText(pdf, 33, tr("Invoice #: "+inv.InvoiceNumber))
	rightText(pdf, 39, "Date: "+inv.CreatedAt.Local().Format(DateLayout))

	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, 45, marginRight, 45)

	// Bill to
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(marginLeft, 55, "Bill To:")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(marginLeft, 62, tr(inv.ClientName))
	pdf.Text(marginLeft, 68, tr("Phone: "+inv.ClientPhone))
	if inv.ClientAddress != "" {
		pdf.Text(marginLeft, 74, tr(inv.ClientAddress))
	}

	// Items
	pdf.SetXY(marginLeft, tableStartY)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(0, 0, 0)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetLineWidth(0.2)
	for i, head := range []string{"Item", "Qty", "Price", "Total"} {
		pdf.CellFormat(columnWidths[i], rowHeight, head, "1", 0, columnAlign(i), true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, item := range inv.Items {
		cells := []string{
			tr(item.Title),
			fmt.Sprintf("%d", item.Quantity),
			money(item.UnitPrice),
			money(item.Amount()),
		}
		for i, cell := range cells {
			pdf.CellFormat(columnWidths[i], rowHeight, cell, "1", 0, columnAlign(i), false, 0, "")
		}
		pdf.Ln(-1)
	}

	// Totals
	y := pdf.GetY() + 10
	pdf.SetFont("Helvetica", "", 10)
	totalLine(pdf, y, "Subtotal:", money(inv.Subtotal))

	totalY := y + 7
	if inv.Tax.IsPositive() {
		totalLine(pdf, totalY, "Tax:", money(inv.Tax))
		totalY += 7
	}
	if inv.Discount.IsPositive() {
		totalLine(pdf, totalY, "Discount:", "-"+money(inv.Discount))
		totalY += 7
	}
	pdf.SetLineWidth(0.5)
	pdf.Line(totalsLabel, totalY-3, marginRight, totalY-3)

	pdf.SetFont("Helvetica", "B", 13)
	totalLine(pdf, totalY+4, "Grand Total:", money(inv.Total))

	// Footer
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(pageCenter-pdf.GetStringWidth(footerText)/2, footerY, footerText)

	return pdf
}

const footerText = "Thank you for your business!"

// WritePDF renders the invoice to w
func WritePDF(w io.Writer, inv *domain.Invoice, settings *domain.Settings) error {
	pdf := NewInvoicePDF(inv, settings)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// SavePDF writes <invoiceNumber>.pdf into dir and returns its path
func SavePDF(dir string, inv *domain.Invoice, settings *domain.Settings) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, PDFFileName(inv))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create PDF file: %w", err)
	}

	if err := WritePDF(f, inv, settings); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close PDF file: %w", err)
	}

	return path, nil
}

// PDFFileName is the file name an invoice is saved under
func PDFFileName(inv *domain.Invoice) string {
	return inv.InvoiceNumber + ".pdf"
}

func rightText(pdf *gofpdf.Fpdf, y float64, s string) {
	pdf.Text(marginRight-pdf.GetStringWidth(s), y, s)
}

func totalLine(pdf *gofpdf.Fpdf, y float64, label, value string) {
	pdf.Text(totalsLabel, y, label)
	rightText(pdf, y, value)
}

func columnAlign(i int) string {
	switch i {
	case 0:
		return "LM"
	case 1:
		return "CM"
	default:
		return "RM"
	}
}
