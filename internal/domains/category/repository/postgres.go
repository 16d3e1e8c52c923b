package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-backend/internal/domains/category/model"
)

// RepositoryInterface is the category lookup surface the import engine needs.
type RepositoryInterface interface {
	// FindByNameCaseInsensitive returns (nil, nil) when no category matches.
	FindByNameCaseInsensitive(ctx context.Context, name string) (*model.Category, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) FindByNameCaseInsensitive(ctx context.Context, name string) (*model.Category, error) {
	query := `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM categories
        WHERE LOWER(name) = LOWER($1)
    `

	var c model.Category
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return &c, nil
}
