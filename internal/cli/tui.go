package cli

import (
	"github.com/andy/billbook/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal UI",
	Long: `Launch the interactive terminal user interface for billbook.

Build orders from the catalog, create and share invoices, and manage
products, clients and settings. When a PIN is set the UI asks for it first.`,
	RunE: launchTUI,
}

func launchTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(appInstance)
}
