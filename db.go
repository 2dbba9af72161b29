package main

import (
	"fmt"

	"github.com/polgussi23/BeerWrapped-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openDB connects to Postgres and migrates the schema. Migration order
// matters: refresh_tokens carries a user_id index against users.
func openDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		return nil, fmt.Errorf("migrate refresh_tokens: %w", err)
	}
	return db, nil
}
