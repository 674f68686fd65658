package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/models"
)

// UserRepository provides access to identity records.
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error)
	UpdatePasswordHash(ctx context.Context, id uint, hash string) (int64, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	CountByEmail(ctx context.Context, email string) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := database.Conn(ctx, r.db).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := database.Conn(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := database.Conn(ctx, r.db).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	result := database.Conn(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update user %d: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) (int64, error) {
	result := database.Conn(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update password for user %d: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}

// TouchLastLogin moves last_login forward to at. An older timestamp never overwrites a newer one.
func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := database.Conn(ctx, r.db).
		Model(&models.User{}).
		Where("id = ? AND (last_login IS NULL OR last_login < ?)", id, at).
		Update("last_login", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last login for user %d: %w", id, err)
	}
	return nil
}

func (r *userRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	if err := database.Conn(ctx, r.db).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
