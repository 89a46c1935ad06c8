package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/andy/billbook/internal/db"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Examples:
  billbook reset invoices   # Delete all invoices; numbering restarts at INV-00001
  billbook reset all        # Wipe invoices, clients, and products (settings are kept)`,
}

var resetInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Delete all invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL invoices. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.InvoiceService.ResetInvoices(context.Background()); err != nil {
			return err
		}

		fmt.Println("All invoices have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: invoices, clients, products",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL data (invoices, clients, products). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		ctx := context.Background()

		// Order matters due to foreign keys
		tables := []string{
			"invoice_items",
			"invoices",
			"invoice_counter",
			"clients",
			"products",
		}

		err := appInstance.DB.RunInTx(ctx, func(tx *db.Tx) error {
			for _, table := range tables {
				if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
					return fmt.Errorf("failed to clear %s: %w", table, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		appInstance.Logger.Warn("all data deleted")
		fmt.Println("All data has been deleted.")
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetInvoicesCmd)
	resetCmd.AddCommand(resetAllCmd)
}
