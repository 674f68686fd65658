package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/models"
)

// ProfileRepository reads and writes the role-specific profile tables.
type ProfileRepository interface {
	FindStudent(ctx context.Context, userID uint) (models.Student, error)
	FindHOD(ctx context.Context, userID uint) (models.HOD, error)
	FindSupervisor(ctx context.Context, userID uint) (models.OrganizationSupervisor, error)
	CreateStudent(ctx context.Context, profile *models.Student) error
	CreateHOD(ctx context.Context, profile *models.HOD) error
	CreateSupervisor(ctx context.Context, profile *models.OrganizationSupervisor) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs a profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindStudent(ctx context.Context, userID uint) (models.Student, error) {
	var profile models.Student
	if err := database.Conn(ctx, r.db).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.Student{}, err
	}
	return profile, nil
}

func (r *profileRepository) FindHOD(ctx context.Context, userID uint) (models.HOD, error) {
	var profile models.HOD
	if err := database.Conn(ctx, r.db).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.HOD{}, err
	}
	return profile, nil
}

func (r *profileRepository) FindSupervisor(ctx context.Context, userID uint) (models.OrganizationSupervisor, error) {
	var profile models.OrganizationSupervisor
	if err := database.Conn(ctx, r.db).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.OrganizationSupervisor{}, err
	}
	return profile, nil
}

func (r *profileRepository) CreateStudent(ctx context.Context, profile *models.Student) error {
	if err := database.Conn(ctx, r.db).Omit("User").Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create student profile: %w", err)
	}
	return nil
}

func (r *profileRepository) CreateHOD(ctx context.Context, profile *models.HOD) error {
	if err := database.Conn(ctx, r.db).Omit("User").Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create hod profile: %w", err)
	}
	return nil
}

func (r *profileRepository) CreateSupervisor(ctx context.Context, profile *models.OrganizationSupervisor) error {
	if err := database.Conn(ctx, r.db).Omit("User").Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create supervisor profile: %w", err)
	}
	return nil
}
