package services

import (
	"affilink/internal/config"
	"affilink/internal/repository"

	"gorm.io/gorm"
)

func setupTestDB() *gorm.DB {
	db, err := repository.InitDB(config.Config{DatabaseURL: "sqlite://:memory:"})
	if err != nil {
		panic(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		panic(err)
	}
	return db
}
