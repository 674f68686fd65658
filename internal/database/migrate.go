package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/internship-api/internal/models"
)

// Schema lists every table owned by the identity core, parents first.
func Schema() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Student{},
		&models.HOD{},
		&models.OrganizationSupervisor{},
		&models.ActivityLog{},
		&models.Notification{},
	}
}

// Migrate creates or updates the schema. It is safe to run on every start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Schema()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Reset drops every table and recreates the schema.
func Reset(db *gorm.DB) error {
	tables := Schema()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return Migrate(db)
}
