package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is an append-only audit entry written on behalf of an identity.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"not null;index" json:"user_id"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType *string           `gorm:"size:64" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	IPAddress  *string           `gorm:"size:64" json:"ip_address"`
	UserAgent  *string           `gorm:"type:text" json:"user_agent"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}
