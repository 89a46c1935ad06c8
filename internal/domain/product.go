package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Image       string // path or URL, optional
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct creates a catalog product with a fresh ID
func NewProduct(title, description string, price decimal.Decimal) *Product {
	now := time.Now()
	return &Product{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Price:       price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate returns an error if the product is invalid
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("product title is required")
	}
	if p.Price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	return nil
}

// MatchesTitle reports whether the title contains query, ignoring case
func (p *Product) MatchesTitle(query string) bool {
	return strings.Contains(strings.ToLower(p.Title), strings.ToLower(strings.TrimSpace(query)))
}
