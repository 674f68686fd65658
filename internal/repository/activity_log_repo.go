package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/models"
)

// ActivityLogFilter narrows the audit trail. Zero values match everything; a non-positive
// PageSize returns every matching row.
type ActivityLogFilter struct {
	Page       int
	PageSize   int
	UserID     *uint
	Action     string
	EntityType string
}

// ActivityLogRepository is append-only: entries are written once and only ever read back.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return database.Conn(ctx, r.db).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	matching := database.Conn(ctx, r.db).Model(&models.ActivityLog{}).Scopes(filter.matches)

	var total int64
	if err := matching.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.ActivityLog{}, 0, nil
	}

	var entries []models.ActivityLog
	err := matching.
		Scopes(filter.window, newestFirst).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (f ActivityLogFilter) matches(tx *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		tx = tx.Where("user_id = ?", *f.UserID)
	}
	if f.Action != "" {
		tx = tx.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		tx = tx.Where("entity_type = ?", f.EntityType)
	}
	return tx
}

func (f ActivityLogFilter) window(tx *gorm.DB) *gorm.DB {
	if f.PageSize <= 0 {
		return tx
	}
	page := max(f.Page, 1)
	return tx.Offset((page - 1) * f.PageSize).Limit(f.PageSize)
}

// newestFirst orders by id as well so rows written within the same clock tick stay stable.
func newestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("created_at DESC").Order("id DESC")
}
