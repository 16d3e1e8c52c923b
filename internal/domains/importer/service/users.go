package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ozzo/ozzo-validation/v4/is"

	"pos-backend/internal/domains/importer/model"
	"pos-backend/internal/domains/importer/spreadsheet"
	usermodel "pos-backend/internal/domains/user/model"
	userrepo "pos-backend/internal/domains/user/repository"
	userservice "pos-backend/internal/domains/user/service"
)

// userProcessor provisions accounts from spreadsheet rows. Account creation
// is delegated to the user service so imported accounts get the same
// password, profile and role handling as registered ones.
type userProcessor struct {
	users   userservice.ServiceInterface
	lookups userrepo.RepositoryInterface
}

func NewUserProcessor(users userservice.ServiceInterface, lookups userrepo.RepositoryInterface) RowProcessor {
	return &userProcessor{users: users, lookups: lookups}
}

func (p *userProcessor) Kind() model.ImportKind {
	return model.KindUsers
}

func (p *userProcessor) Process(ctx context.Context, row map[string]string, rowNumber int) (string, error) {
	fields := spreadsheet.UserFields

	email := strings.ToLower(fields.Get(row, "email"))
	if email == "" || is.Email.Validate(email) != nil {
		return "", model.NewRowError("Email inválido")
	}

	fullName := fields.Get(row, "full_name")
	if fullName == "" {
		return "", model.NewRowError("Nombre completo requerido")
	}

	role := strings.ToLower(fields.Get(row, "role"))
	if role == "" {
		role = usermodel.RoleUser
	}
	if !usermodel.ValidRole(role) {
		return "", model.NewRowError("Rol inválido")
	}

	existing, err := p.lookups.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return "", model.NewRowError("Email ya existe")
	}

	userID, err := p.users.CreateImportedUser(ctx, email, fullName, role)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return userID.String(), nil
}
