package db

import (
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/models"
)

// Migrate applies the schema for every model.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Professional{},
		&models.Appointment{},
	)
}
