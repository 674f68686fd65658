package bootstrap

import (
	"context"
	"errors"
	"strings"

	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/repository"
	"github.com/noah-isme/internship-api/internal/service"
)

// ErrUserExists is returned when the requested administrator e-mail is already registered.
var ErrUserExists = errors.New("user with this email already exists")

// AdminInput holds the details collected by the create-admin command.
type AdminInput struct {
	Email    string
	FullName string
	Phone    string
	Password string
}

// CreateAdmin inserts an active administrator directly through the user repository. Administrators
// carry no profile row.
func CreateAdmin(ctx context.Context, identity service.IdentityService, users repository.UserRepository, hasher *service.PasswordHasher, input AdminInput) (models.User, error) {
	email := service.NormalizeEmail(input.Email)
	if email == "" {
		return models.User{}, errors.New("email is required")
	}
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		return models.User{}, errors.New("full name is required")
	}
	if err := service.CheckPasswordPolicy(input.Password); err != nil {
		return models.User{}, err
	}

	existing, err := identity.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if existing != nil {
		return models.User{}, ErrUserExists
	}

	hash, err := hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     name,
		Phone:        strings.TrimSpace(input.Phone),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, &user); err != nil {
		if repository.IsUniqueViolation(err) {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	return user, nil
}
