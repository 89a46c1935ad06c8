package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/render"
	"github.com/andy/billbook/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long:  `Create, list, search, render, share, and export invoices.`,
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice from products",
	Long: `Create an invoice from products in the catalog.

Examples:
  billbook invoices create --item Tea:2 --item 3f9a1c2e:1 --name "Asha" --phone "+91 98765 43210"
  billbook invoices create --item Tea:4 --client Asha --discount 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		items, _ := cmd.Flags().GetStringArray("item")
		cart, err := buildCart(ctx, items)
		if err != nil {
			return err
		}

		var input service.ClientInput
		if ref, _ := cmd.Flags().GetString("client"); ref != "" {
			client, err := resolveClient(ctx, ref)
			if err != nil {
				return err
			}
			input.ID = client.ID
		}
		input.Name, _ = cmd.Flags().GetString("name")
		input.Phone, _ = cmd.Flags().GetString("phone")
		input.Address, _ = cmd.Flags().GetString("address")

		discount := decimal.Zero
		if cmd.Flags().Changed("discount") {
			discountStr, _ := cmd.Flags().GetString("discount")
			if discount, err = decimal.NewFromString(discountStr); err != nil {
				return fmt.Errorf("invalid discount %q: %w", discountStr, err)
			}
		}

		settings, err := currentSettings(ctx)
		if err != nil {
			return err
		}

		invoice, err := appInstance.InvoiceService.CreateInvoice(ctx, service.CreateInvoiceRequest{
			Cart:     cart,
			Client:   input,
			Discount: discount,
		}, settings)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Invoice %s created!\n\n", invoice.InvoiceNumber)
		printInvoice(invoice)

		if pdf, _ := cmd.Flags().GetBool("pdf"); pdf {
			path, err := render.SavePDF(appInstance.Config.Invoice.OutputDir, invoice, settings)
			if err != nil {
				return err
			}
			fmt.Printf("\n✓ PDF saved: %s\n", path)
		}

		return nil
	},
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		search, _ := cmd.Flags().GetString("search")

		invoices, err := appInstance.InvoiceService.SearchInvoices(ctx, search)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		// Print table header
		fmt.Printf("%-12s %-26s %-12s %14s\n", "Number", "Client", "Date", "Total")
		fmt.Println("-------------------------------------------------------------------")

		for _, invoice := range invoices {
			fmt.Printf("%-12s %-26s %-12s %14s\n",
				invoice.InvoiceNumber,
				truncate(invoice.ClientName, 26),
				invoice.CreatedAt.Local().Format("2006-01-02"),
				render.FormatMoney(invoice.Currency, invoice.Total),
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [number]",
	Short: "Show invoice details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := appInstance.InvoiceService.GetInvoice(context.Background(), args[0])
		if err != nil {
			return err
		}

		printInvoice(invoice)
		return nil
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [number]",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		force, _ := cmd.Flags().GetBool("yes")
		if !force && !confirmPrompt(fmt.Sprintf("Delete invoice %s?", args[0])) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.InvoiceService.DeleteInvoice(ctx, args[0]); err != nil {
			return err
		}

		fmt.Printf("✓ Invoice deleted: %s\n", args[0])
		return nil
	},
}

var invoicesPDFCmd = &cobra.Command{
	Use:   "pdf [number]",
	Short: "Render an invoice as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := appInstance.InvoiceService.GetInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		settings, err := currentSettings(ctx)
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("out")
		if dir == "" {
			dir = appInstance.Config.Invoice.OutputDir
		}

		path, err := render.SavePDF(dir, invoice, settings)
		if err != nil {
			return err
		}

		fmt.Printf("✓ PDF saved: %s\n", path)
		return nil
	},
}

var invoicesShareCmd = &cobra.Command{
	Use:   "share [number]",
	Short: "Print a WhatsApp link that sends the invoice summary to the client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := appInstance.InvoiceService.GetInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		settings, err := currentSettings(ctx)
		if err != nil {
			return err
		}

		if show, _ := cmd.Flags().GetBool("message"); show {
			fmt.Println(render.WhatsAppMessage(invoice, settings))
			fmt.Println()
		}
		fmt.Println(render.WhatsAppLink(invoice, settings))
		return nil
	},
}

var invoicesExportCmd = &cobra.Command{
	Use:   "export-csv",
	Short: "Export all invoices as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoices, err := appInstance.InvoiceService.ListInvoices(ctx)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}
		if len(invoices) == 0 {
			fmt.Println("No invoices to export")
			return nil
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "-" {
			return render.WriteInvoicesCSV(os.Stdout, invoices)
		}
		if out == "" {
			out = filepath.Join(appInstance.Config.Invoice.OutputDir, "invoices.csv")
		}

		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer f.Close()

		if err := render.WriteInvoicesCSV(f, invoices); err != nil {
			return err
		}

		fmt.Printf("✓ Exported %d invoice(s) to %s\n", len(invoices), out)
		return nil
	},
}

var invoicesReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize sales for a day or a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		settings, err := currentSettings(ctx)
		if err != nil {
			return err
		}
		currency := settings.CurrencySymbol()

		if cmd.Flags().Changed("year") {
			year, _ := cmd.Flags().GetInt("year")
			revenue, err := appInstance.ReportService.GetRevenueByMonth(ctx, year)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			fmt.Printf("Revenue %d\n", year)
			fmt.Println("--------------------------")
			total := decimal.Zero
			for m := time.January; m <= time.December; m++ {
				fmt.Printf("%-10s %15s\n", m.String(), render.FormatMoney(currency, revenue[m]))
				total = total.Add(revenue[m])
			}
			fmt.Println("--------------------------")
			fmt.Printf("%-10s %15s\n", "Total", render.FormatMoney(currency, total))
			return nil
		}

		day := time.Now()
		if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
			if day, err = time.ParseInLocation("2006-01-02", dateStr, time.Local); err != nil {
				return fmt.Errorf("invalid date (want YYYY-MM-DD): %w", err)
			}
		}

		summary, err := appInstance.ReportService.GetDailySummary(ctx, day)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		fmt.Printf("Sales on %s\n\n", day.Format(render.DateLayout))
		fmt.Printf("  Invoices: %d\n", summary.InvoiceCount)
		fmt.Printf("  Subtotal: %s\n", render.FormatMoney(currency, summary.Subtotal))
		fmt.Printf("  Tax:      %s\n", render.FormatMoney(currency, summary.Tax))
		fmt.Printf("  Discount: %s\n", render.FormatMoney(currency, summary.Discount))
		fmt.Printf("  Total:    %s\n", render.FormatMoney(currency, summary.Total))

		if len(summary.Products) > 0 {
			fmt.Println("\n  Best sellers:")
			for _, p := range summary.Products {
				fmt.Printf("    %-28s x%-5d %s\n", truncate(p.Title, 28), p.Quantity, render.FormatMoney(currency, p.Revenue))
			}
		}
		return nil
	},
}

func printInvoice(inv *domain.Invoice) {
	fmt.Printf("Invoice:  %s\n", inv.InvoiceNumber)
	fmt.Printf("Date:     %s\n", inv.CreatedAt.Local().Format(render.DateLayout))
	fmt.Printf("Bill To:  %s (%s)\n", inv.ClientName, inv.ClientPhone)
	if inv.ClientAddress != "" {
		fmt.Printf("          %s\n", inv.ClientAddress)
	}
	fmt.Println()

	fmt.Printf("  %-30s %5s %12s %12s\n", "Item", "Qty", "Price", "Total")
	fmt.Println("  ---------------------------------------------------------------")
	for _, item := range inv.Items {
		fmt.Printf("  %-30s %5d %12s %12s\n",
			truncate(item.Title, 30),
			item.Quantity,
			render.FormatMoney(inv.Currency, item.UnitPrice),
			render.FormatMoney(inv.Currency, item.Amount()),
		)
	}
	fmt.Println("  ---------------------------------------------------------------")

	fmt.Printf("  %49s %12s\n", "Subtotal:", render.FormatMoney(inv.Currency, inv.Subtotal))
	if inv.Tax.IsPositive() {
		fmt.Printf("  %49s %12s\n", fmt.Sprintf("Tax (%s%%):", inv.TaxRate.String()), render.FormatMoney(inv.Currency, inv.Tax))
	}
	if inv.Discount.IsPositive() {
		fmt.Printf("  %49s %12s\n", "Discount:", "-"+render.FormatMoney(inv.Currency, inv.Discount))
	}
	fmt.Printf("  %49s %12s\n", "Grand Total:", render.FormatMoney(inv.Currency, inv.Total))
}

func init() {
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesPDFCmd)
	invoicesCmd.AddCommand(invoicesShareCmd)
	invoicesCmd.AddCommand(invoicesExportCmd)
	invoicesCmd.AddCommand(invoicesReportCmd)

	// Create flags
	invoicesCreateCmd.Flags().StringArrayP("item", "i", nil, "Product and quantity as product:qty (repeatable)")
	invoicesCreateCmd.Flags().StringP("client", "c", "", "Existing client ID, name, or phone")
	invoicesCreateCmd.Flags().String("name", "", "Client name (new client, or override)")
	invoicesCreateCmd.Flags().String("phone", "", "Client phone (new client, or override)")
	invoicesCreateCmd.Flags().String("address", "", "Client address")
	invoicesCreateCmd.Flags().String("discount", "0", "Flat discount amount")
	invoicesCreateCmd.Flags().Bool("pdf", false, "Also save the PDF")

	// List flags
	invoicesListCmd.Flags().StringP("search", "s", "", "Filter by client name or invoice number")

	// Delete flags
	invoicesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	// PDF flags
	invoicesPDFCmd.Flags().StringP("out", "o", "", "Output directory (default from config)")

	// Share flags
	invoicesShareCmd.Flags().Bool("message", false, "Also print the message text")

	// Export flags
	invoicesExportCmd.Flags().StringP("out", "o", "", "Output file, or - for stdout (default <output_dir>/invoices.csv)")

	// Report flags
	invoicesReportCmd.Flags().String("date", "", "Day to summarize (YYYY-MM-DD, default today)")
	invoicesReportCmd.Flags().Int("year", 0, "Show revenue by month for a year")
}
