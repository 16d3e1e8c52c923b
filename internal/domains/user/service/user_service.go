package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"pos-backend/internal/domains/user/model"
	"pos-backend/internal/domains/user/repository"
	"pos-backend/internal/shared/utils"
)

// ServiceInterface provisions accounts on behalf of the users import.
type ServiceInterface interface {
	// CreateImportedUser creates an auth identity with a generated password
	// and a confirmed email, then the profile and role assignment. If a later
	// sub-step fails the identity is deleted again so no orphan remains.
	CreateImportedUser(ctx context.Context, email, fullName, role string) (uuid.UUID, error)
}

type userService struct {
	repo repository.RepositoryInterface
}

func NewUserService(repo repository.RepositoryInterface) ServiceInterface {
	return &userService{repo: repo}
}

func (s *userService) CreateImportedUser(ctx context.Context, email, fullName, role string) (uuid.UUID, error) {
	password, err := utils.GeneratePassword(16)
	if err != nil {
		return uuid.Nil, err
	}

	// bcrypt cost 12: same cost used for interactively registered accounts
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	u := &model.User{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     string(passwordHash),
		EmailConfirmedAt: &now,
		IsActive:         true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return uuid.Nil, err
	}

	if err := s.repo.CreateProfile(ctx, &model.Profile{
		UserID:   u.ID,
		FullName: fullName,
	}); err != nil {
		s.compensate(ctx, u.ID)
		return uuid.Nil, err
	}

	if err := s.repo.AssignRole(ctx, u.ID, role); err != nil {
		s.compensate(ctx, u.ID)
		return uuid.Nil, err
	}

	log.Info().
		Str("user_id", u.ID.String()).
		Str("email", email).
		Str("role", role).
		Msg("Provisioned imported user")

	return u.ID, nil
}

// compensate removes a half-provisioned identity; best effort, the row error
// already carries the original cause.
func (s *userService) compensate(ctx context.Context, id uuid.UUID) {
	if err := s.repo.Delete(ctx, id); err != nil {
		log.Error().
			Err(err).
			Str("user_id", id.String()).
			Msg("Failed to delete half-provisioned user")
	}
}
