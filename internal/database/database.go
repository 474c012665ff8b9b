package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"rust-trader/internal/models"

	log "github.com/sirupsen/logrus"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto migrate the schema
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, err
	}

	log.Println("Database initialized successfully")
	return db, nil
}
