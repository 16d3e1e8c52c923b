package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-backend/internal/domains/user/model"
)

// RepositoryInterface covers the three sub-steps of provisioning an imported
// user (identity, profile, role) plus the compensating delete.
type RepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	CreateProfile(ctx context.Context, profile *model.Profile) error
	AssignRole(ctx context.Context, userID uuid.UUID, role string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByEmail returns (nil, nil) when no user matches.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
        INSERT INTO users (id, email, password_hash, email_confirmed_at, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.EmailConfirmedAt,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) CreateProfile(ctx context.Context, profile *model.Profile) error {
	query := `
        INSERT INTO profiles (user_id, full_name, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
    `

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.FullName,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (r *userRepository) AssignRole(ctx context.Context, userID uuid.UUID, role string) error {
	query := `
        INSERT INTO user_roles (user_id, role, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
    `

	_, err := r.pool.Exec(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return nil
}

// Delete removes the identity and, through ON DELETE CASCADE, any profile or
// role rows already written for it.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, email, password_hash, email_confirmed_at, is_active, created_at, updated_at
        FROM users
        WHERE LOWER(email) = LOWER($1)
    `

	var u model.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.EmailConfirmedAt,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return &u, nil
}
