package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lottoplay/housie-backend/models"
)

var DB *gorm.DB

// SetupDatabase connects to Postgres and runs migrations.
func SetupDatabase(databaseURL string) (*gorm.DB, error) {
	// TranslateError turns driver duplicate-key failures into
	// gorm.ErrDuplicatedKey, which claim arbitration relies on.
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}

// Migrate runs gorm auto-migration for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Game{},
		&models.Ticket{},
		&models.WinRecord{},
		&models.Payment{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
