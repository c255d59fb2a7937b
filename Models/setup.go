package Models

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the local sqlite database that holds operator accounts
// and the API audit log. Dealership records live in the document store,
// not here.
func Connect(path string) error {
	connection, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	DB = connection

	if err := DB.AutoMigrate(&User{}, &RequestLog{}); err != nil {
		return fmt.Errorf("migrate local tables: %w", err)
	}
	return nil
}
