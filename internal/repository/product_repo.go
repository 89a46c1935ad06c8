package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
)

const productColumns = `id, title, description, price, image, created_at, updated_at`

// ProductRepo is a SQL implementation of ProductRepository
type ProductRepo struct {
	db db.Querier
}

// NewProductRepo creates a new ProductRepo
func NewProductRepo(q db.Querier) *ProductRepo {
	return &ProductRepo{db: q}
}

// Create inserts a new product into the catalog
func (r *ProductRepo) Create(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Title,
		product.Description,
		product.Price.String(),
		product.Image,
		formatTime(product.CreatedAt),
		formatTime(product.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound("product", err)
	}
	return product, nil
}

// List retrieves the whole catalog ordered by title
func (r *ProductRepo) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY title`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update updates an existing product. Line items on issued invoices are unaffected.
func (r *ProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	product.UpdatedAt = time.Now()

	query := `
		UPDATE products
		SET title = ?, description = ?, price = ?, image = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		product.Title,
		product.Description,
		product.Price.String(),
		product.Image,
		formatTime(product.UpdatedAt),
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return expectOneRow("product", result)
}

// Delete removes a product from the catalog
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return expectOneRow("product", result)
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var price, createdAt, updatedAt string

	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&price,
		&product.Image,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if product.Price, err = parseDecimal("price", price); err != nil {
		return nil, err
	}
	if product.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if product.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return product, nil
}
