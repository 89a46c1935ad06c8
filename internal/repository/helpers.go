package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// timeLayout is fixed-width and always UTC so that TEXT columns sort chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// parseTime parses a stored timestamp
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// formatTime renders t for storage
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseDecimal parses a stored money value
func parseDecimal(column, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return d, nil
}

// notFound maps sql.ErrNoRows onto ErrNotFound
func notFound(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// expectOneRow reports ErrNotFound when an update or delete matched nothing
func expectOneRow(what string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return nil
}

// boolToInt stores booleans portably across SQLite and Postgres INTEGER columns
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
