package repository

import (
	"context"
	"fmt"

	"github.com/andy/billbook/internal/db"
)

// CounterRepo is a SQL implementation of CounterRepository backed by the
// invoice_counter singleton row
type CounterRepo struct {
	db db.Querier
}

// NewCounterRepo creates a new CounterRepo
func NewCounterRepo(q db.Querier) *CounterRepo {
	return &CounterRepo{db: q}
}

// Increment bumps last_value and returns the new value. The UPDATE runs
// first so the row is write-locked before it is read back.
func (r *CounterRepo) Increment(ctx context.Context) (int64, bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE invoice_counter SET last_value = last_value + 1 WHERE id = 1`)
	if err != nil {
		return 0, false, fmt.Errorf("failed to increment invoice counter: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return 0, false, nil
	}

	var value int64
	if err := r.db.QueryRowContext(ctx, `SELECT last_value FROM invoice_counter WHERE id = 1`).Scan(&value); err != nil {
		return 0, false, fmt.Errorf("failed to read invoice counter: %w", err)
	}
	return value, true, nil
}

// Seed creates the counter row. An existing row is left untouched.
func (r *CounterRepo) Seed(ctx context.Context, last int64) error {
	query := `
		INSERT INTO invoice_counter (id, last_value)
		VALUES (1, ?)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, last); err != nil {
		return fmt.Errorf("failed to seed invoice counter: %w", err)
	}
	return nil
}

// Reset deletes the counter row
func (r *CounterRepo) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM invoice_counter`); err != nil {
		return fmt.Errorf("failed to reset invoice counter: %w", err)
	}
	return nil
}
