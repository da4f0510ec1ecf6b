package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/config"
)

// Connect opens the postgres connection described by the config. The
// handle is returned to the caller instead of being parked in a package
// variable.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
}
