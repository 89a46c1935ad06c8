package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
)

// SettingsRepo is a SQL implementation of SettingsRepository
type SettingsRepo struct {
	db db.Querier
}

// NewSettingsRepo creates a new SettingsRepo
func NewSettingsRepo(q db.Querier) *SettingsRepo {
	return &SettingsRepo{db: q}
}

// Get returns the stored settings, saving defaults the first time
func (r *SettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	query := `
		SELECT company_name, company_logo, company_address, company_phone,
		       tax_rate, currency, dark_mode, pin_hash, updated_at
		FROM settings
		WHERE id = 1
	`

	s := &domain.Settings{}
	var taxRate, updatedAt string
	var darkMode int

	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.CompanyName,
		&s.CompanyLogo,
		&s.CompanyAddress,
		&s.CompanyPhone,
		&taxRate,
		&s.Currency,
		&darkMode,
		&s.PinHash,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := domain.DefaultSettings()
		if err := r.Save(ctx, defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	if s.TaxRate, err = parseDecimal("tax_rate", taxRate); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	s.DarkMode = darkMode != 0

	return s, nil
}

// Save writes the settings row, creating it when missing
func (r *SettingsRepo) Save(ctx context.Context, s *domain.Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	s.UpdatedAt = time.Now()

	args := []any{
		s.CompanyName,
		s.CompanyLogo,
		s.CompanyAddress,
		s.CompanyPhone,
		s.TaxRate.String(),
		s.Currency,
		boolToInt(s.DarkMode),
		s.PinHash,
		formatTime(s.UpdatedAt),
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE settings
		SET company_name = ?, company_logo = ?, company_address = ?, company_phone = ?,
		    tax_rate = ?, currency = ?, dark_mode = ?, pin_hash = ?, updated_at = ?
		WHERE id = 1
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, company_name, company_logo, company_address, company_phone,
		                      tax_rate, currency, dark_mode, pin_hash, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to create settings: %w", err)
	}
	return nil
}
