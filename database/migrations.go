package database

import (
	"goaltracker/logger"
	"goaltracker/models"

	"gorm.io/gorm"
)

// RunMigrations creates or updates every table the application uses.
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Goal{},
		&models.Task{},
		&models.Event{},
		&models.RevokedSession{},
	)
	if err != nil {
		logger.Error("Migration failed", "error", err)
		return err
	}
	return nil
}
