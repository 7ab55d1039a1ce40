package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rojgarhq/rojgar-backend/internal/models"
)

// Connect opens the Postgres connection.
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Migrate runs auto-migration for every entity the service owns.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Proposal{},
		&models.Task{},
		&models.Message{},
		&models.File{},
		&models.Profile{},
		&models.Payment{},
		&models.Milestone{},
	)
}
