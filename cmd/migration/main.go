package main

import (
	"os"

	"github.com/pawaovo/nfc-bracelet-fortune/cmd/migration/seed"
	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
)

// Applies the GORM schema and, with SEED=true, loads development data.
func main() {
	log := logger.New("migration")

	cfg, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Er("failed to initialize database", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.MigrateModels(); err != nil {
		log.Er("migration failed", err)
		os.Exit(1)
	}
	log.Info("Migration complete")

	if os.Getenv("SEED") == "true" {
		if err := seed.Run(db); err != nil {
			log.Er("seeding failed", err)
			os.Exit(1)
		}
		log.Info("Seeding complete")
	}
}
