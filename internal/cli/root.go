package cli

import (
	"context"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/lock"
	"github.com/spf13/cobra"
)

var appInstance *app.App

// skipGate marks commands that must work while the app is locked
const skipGate = "skip-gate"

var rootCmd = &cobra.Command{
	Use:   "billbook",
	Short: "Invoicing for small shops",
	Long: `Billbook keeps your product catalog and clients, turns orders into numbered
invoices, renders them as PDF, and shares them over WhatsApp.

By default, running billbook without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	// Default behavior: launch TUI
	RunE: launchTUI,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

// checkGate refuses to run commands while a PIN is set and this machine is locked.
// The TUI asks for the PIN itself.
func checkGate(cmd *cobra.Command, args []string) error {
	if appInstance == nil {
		return nil
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipGate] == "true" {
			return nil
		}
	}
	if cmd == rootCmd || cmd == tuiCmd {
		return nil
	}

	locked, err := appInstance.Gate.IsLocked(context.Background())
	if err != nil {
		return err
	}
	if locked {
		return lock.ErrLocked
	}
	return nil
}

func init() {
	rootCmd.PersistentPreRunE = checkGate

	// Add all subcommands
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
