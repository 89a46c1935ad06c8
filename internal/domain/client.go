package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrClientNameRequired  = errors.New("client name is required")
	ErrClientPhoneRequired = errors.New("client phone is required")
	ErrInvalidPhone        = errors.New("client phone is malformed")
)

// Phone numbers need between minPhoneDigits and maxPhoneDigits digits (E.164 allows 15)
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

type Client struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewClient creates a new client with a fresh ID
func NewClient(name, phone, address string) *Client {
	now := time.Now()
	return &Client{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Phone:     strings.TrimSpace(phone),
		Address:   strings.TrimSpace(address),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrClientNameRequired
	}
	return ValidatePhone(c.Phone)
}

// ValidatePhone accepts digits with optional separators (space, '-', '.', '(', ')')
// and a single leading '+'.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrClientPhoneRequired
	}

	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return ErrInvalidPhone
		}
	}

	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return ErrInvalidPhone
	}
	return nil
}

// PhoneDigits strips everything except digits, e.g. for wa.me links
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
