package repository

import (
	"fmt"

	"ice-breakun/backend/internal/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the users and messages tables.
// Users must exist before messages so the cascading foreign key can be declared.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
