package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change business settings",
	Long: `Show or change the business profile printed on invoices.

Tax rate and currency are copied into each invoice when it is created;
changing them does not alter existing invoices.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := currentSettings(context.Background())
		if err != nil {
			return err
		}

		pin := "not set"
		if settings.IsPinSet() {
			pin = "set"
		}

		fmt.Printf("Company:   %s\n", settings.DisplayName())
		fmt.Printf("Address:   %s\n", settings.CompanyAddress)
		fmt.Printf("Phone:     %s\n", settings.CompanyPhone)
		fmt.Printf("Logo:      %s\n", settings.CompanyLogo)
		fmt.Printf("Tax rate:  %s%%\n", settings.TaxRate.String())
		fmt.Printf("Currency:  %s\n", settings.CurrencySymbol())
		fmt.Printf("Dark mode: %t\n", settings.DarkMode)
		fmt.Printf("PIN:       %s\n", pin)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update settings",
	Example: `  billbook settings set --company "Chai Corner" --tax-rate 5
  billbook settings set --currency "$" --dark-mode=true`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		settings, err := currentSettings(ctx)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("company") {
			settings.CompanyName, _ = flags.GetString("company")
		}
		if flags.Changed("address") {
			settings.CompanyAddress, _ = flags.GetString("address")
		}
		if flags.Changed("phone") {
			settings.CompanyPhone, _ = flags.GetString("phone")
		}
		if flags.Changed("logo") {
			settings.CompanyLogo, _ = flags.GetString("logo")
		}
		if flags.Changed("tax-rate") {
			rateStr, _ := flags.GetString("tax-rate")
			if settings.TaxRate, err = parseMoney("tax rate", rateStr); err != nil {
				return err
			}
		}
		if flags.Changed("currency") {
			settings.Currency, _ = flags.GetString("currency")
		}
		if flags.Changed("dark-mode") {
			settings.DarkMode, _ = flags.GetBool("dark-mode")
		}

		if err := appInstance.SettingsRepo.Save(ctx, settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}

		fmt.Println("✓ Settings saved")
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	settingsSetCmd.Flags().String("company", "", "Company name")
	settingsSetCmd.Flags().String("address", "", "Company address")
	settingsSetCmd.Flags().String("phone", "", "Company phone")
	settingsSetCmd.Flags().String("logo", "", "Logo path or URL")
	settingsSetCmd.Flags().String("tax-rate", "", "Tax rate in percent, e.g. 18")
	settingsSetCmd.Flags().String("currency", "", "Currency symbol, e.g. ₹")
	settingsSetCmd.Flags().Bool("dark-mode", false, "Use the dark TUI theme")
}
