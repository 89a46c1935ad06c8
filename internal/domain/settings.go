package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultCompanyName = "My Business"
	DefaultCurrency    = "₹"
)

// Settings holds the business profile. TaxRate and Currency are
// snapshotted into every invoice at creation time.
type Settings struct {
	CompanyName    string
	CompanyLogo    string
	CompanyAddress string
	CompanyPhone   string
	TaxRate        decimal.Decimal // percent, e.g. 18 for 18%
	Currency       string          // display symbol only
	DarkMode       bool
	PinHash        string // bcrypt hash, empty when no PIN is set
	UpdatedAt      time.Time
}

// DefaultSettings returns the settings used before the user saves any
func DefaultSettings() *Settings {
	return &Settings{
		CompanyName: DefaultCompanyName,
		TaxRate:     decimal.Zero,
		Currency:    DefaultCurrency,
		UpdatedAt:   time.Now(),
	}
}

// CurrencySymbol returns the configured symbol, falling back to the default
func (s *Settings) CurrencySymbol() string {
	if strings.TrimSpace(s.Currency) == "" {
		return DefaultCurrency
	}
	return s.Currency
}

// DisplayName returns the company name, falling back to the default
func (s *Settings) DisplayName() string {
	if strings.TrimSpace(s.CompanyName) == "" {
		return DefaultCompanyName
	}
	return s.CompanyName
}

// IsPinSet reports whether a PIN protects the app
func (s *Settings) IsPinSet() bool {
	return s.PinHash != ""
}

// Validate returns an error if the settings are invalid
func (s *Settings) Validate() error {
	if s.TaxRate.IsNegative() {
		return errors.New("tax rate cannot be negative")
	}
	return nil
}
