package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// shortID shows enough of a UUID to pass back as an argument
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// parseMoney parses a non-negative decimal flag value
func parseMoney(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative", name)
	}
	return d, nil
}

// resolveProduct finds a product by full ID, unique ID prefix, or exact title
func resolveProduct(ctx context.Context, ref string) (*domain.Product, error) {
	product, err := appInstance.ProductRepo.GetByID(ctx, ref)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	products, err := appInstance.ProductRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var matches []*domain.Product
	for _, p := range products {
		if strings.HasPrefix(p.ID, ref) || strings.EqualFold(p.Title, ref) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("product %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%q matches %d products, use a longer ID", ref, len(matches))
	}
}

// resolveClient finds a client by full ID, unique ID prefix, exact name, or phone
func resolveClient(ctx context.Context, ref string) (*domain.Client, error) {
	client, err := appInstance.ClientRepo.GetByID(ctx, ref)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	clients, err := appInstance.ClientRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	refDigits := domain.PhoneDigits(ref)
	var matches []*domain.Client
	for _, c := range clients {
		if strings.HasPrefix(c.ID, ref) || strings.EqualFold(c.Name, ref) ||
			(refDigits != "" && refDigits == domain.PhoneDigits(c.Phone)) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("client %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%q matches %d clients, use a longer ID", ref, len(matches))
	}
}

// buildCart turns product:qty pairs into a cart. Repeated products add up.
func buildCart(ctx context.Context, items []string) (*domain.Cart, error) {
	cart := domain.NewCart()

	for _, item := range items {
		ref, qtyStr, found := strings.Cut(item, ":")
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return nil, fmt.Errorf("missing product in %q", item)
		}

		qty := 1
		if found {
			n, err := strconv.Atoi(qtyStr)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid quantity in %q", item)
			}
			qty = n
		}

		product, err := resolveProduct(ctx, ref)
		if err != nil {
			return nil, err
		}
		cart.Add(product.ID, qty)
	}

	return cart, nil
}

// readPin reads a PIN without echo
func readPin(prompt string) (string, error) {
	fmt.Print(prompt)
	pin, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}
	return strings.TrimSpace(string(pin)), nil
}

func currentSettings(ctx context.Context) (*domain.Settings, error) {
	settings, err := appInstance.SettingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}
