package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-backend/internal/domains/product/model"
)

// RepositoryInterface is the catalog surface the import engine writes through.
type RepositoryInterface interface {
	Create(ctx context.Context, product *model.Product) error
	// FindBySKU returns (nil, nil) when no product matches.
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	// UpdateStock replaces the stock level (absolute set, not a delta).
	UpdateStock(ctx context.Context, id string, stock int) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
        INSERT INTO products (
            id, name, sku, price, cost_price, stock, unit, category_id,
            description, barcode, alert_stock, weight_unit, is_active,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.SKU,
		product.Price,
		product.CostPrice,
		product.Stock,
		product.Unit,
		product.CategoryID,
		product.Description,
		product.Barcode,
		product.AlertStock,
		product.WeightUnit,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	query := `
        SELECT id, name, sku, price, cost_price, stock, unit, category_id,
               description, barcode, alert_stock, weight_unit, is_active,
               created_at, updated_at
        FROM products
        WHERE sku = $1
    `

	var p model.Product
	err := r.pool.QueryRow(ctx, query, sku).Scan(
		&p.ID,
		&p.Name,
		&p.SKU,
		&p.Price,
		&p.CostPrice,
		&p.Stock,
		&p.Unit,
		&p.CategoryID,
		&p.Description,
		&p.Barcode,
		&p.AlertStock,
		&p.WeightUnit,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by sku: %w", err)
	}

	return &p, nil
}

func (r *productRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, sku).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check sku: %w", err)
	}

	return exists, nil
}

func (r *productRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	query := `
        UPDATE products
        SET stock = $1,
            updated_at = NOW()
        WHERE id = $2
    `

	tag, err := r.pool.Exec(ctx, query, stock, id)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found", id)
	}

	return nil
}
