package database

import (
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Product{},
		&models.Bracelet{},
		&models.DailyFortune{},
	}

	if err := db.SQL.AutoMigrate(modelsToMigrate...); err != nil {
		return log.Err("failed to migrate models", err)
	}

	log.Info("Database migration completed", "models", len(modelsToMigrate))
	return nil
}
