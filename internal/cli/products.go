package cli

import (
	"context"
	"fmt"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/render"
	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"catalog"},
	Short:   "Manage the product catalog",
	Long:    `List, search, add, edit, and delete products.`,
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		search, _ := cmd.Flags().GetString("search")

		products, err := appInstance.ProductRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}

		settings, err := currentSettings(ctx)
		if err != nil {
			return err
		}

		shown := 0
		for _, p := range products {
			if !p.MatchesTitle(search) {
				continue
			}
			if shown == 0 {
				fmt.Printf("%-10s %-30s %12s  %s\n", "ID", "Title", "Price", "Description")
				fmt.Println("----------------------------------------------------------------------------")
			}
			fmt.Printf("%-10s %-30s %12s  %s\n",
				shortID(p.ID),
				truncate(p.Title, 30),
				render.FormatMoney(settings.CurrencySymbol(), p.Price),
				truncate(p.Description, 30),
			)
			shown++
		}

		if shown == 0 {
			fmt.Println("No products found")
			return nil
		}

		fmt.Printf("\nTotal: %d product(s)\n", shown)
		return nil
	},
}

var productsAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		priceStr, _ := cmd.Flags().GetString("price")
		price, err := parseMoney("price", priceStr)
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		image, _ := cmd.Flags().GetString("image")

		product := domain.NewProduct(args[0], description, price)
		product.Image = image

		if err := product.Validate(); err != nil {
			return fmt.Errorf("invalid product: %w", err)
		}

		if err := appInstance.ProductRepo.Create(ctx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		fmt.Printf("✓ Product created: %s (ID: %s)\n", product.Title, shortID(product.ID))
		fmt.Printf("  Price: %s\n", product.Price.StringFixed(2))
		return nil
	},
}

var productsEditCmd = &cobra.Command{
	Use:   "edit [id_or_title]",
	Short: "Edit a product",
	Long:  `Edit a product. Invoices already issued keep the title and price they were created with.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		product, err := resolveProduct(ctx, args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("title") {
			product.Title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("price") {
			priceStr, _ := cmd.Flags().GetString("price")
			if product.Price, err = parseMoney("price", priceStr); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("description") {
			product.Description, _ = cmd.Flags().GetString("description")
		}
		if cmd.Flags().Changed("image") {
			product.Image, _ = cmd.Flags().GetString("image")
		}

		if err := appInstance.ProductRepo.Update(ctx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		fmt.Printf("✓ Product updated: %s\n", product.Title)
		return nil
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete [id_or_title]",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		product, err := resolveProduct(ctx, args[0])
		if err != nil {
			return err
		}

		if err := appInstance.ProductRepo.Delete(ctx, product.ID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		fmt.Printf("✓ Product deleted: %s\n", product.Title)
		return nil
	},
}

func init() {
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsEditCmd)
	productsCmd.AddCommand(productsDeleteCmd)

	// List flags
	productsListCmd.Flags().StringP("search", "s", "", "Filter by title")

	// Add flags
	productsAddCmd.Flags().StringP("price", "p", "", "Unit price (required)")
	productsAddCmd.Flags().StringP("description", "d", "", "Description")
	productsAddCmd.Flags().String("image", "", "Image path or URL")
	_ = productsAddCmd.MarkFlagRequired("price")

	// Edit flags
	productsEditCmd.Flags().String("title", "", "New title")
	productsEditCmd.Flags().StringP("price", "p", "", "New unit price")
	productsEditCmd.Flags().StringP("description", "d", "", "New description")
	productsEditCmd.Flags().String("image", "", "New image path or URL")
}
