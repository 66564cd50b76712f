package migration

import (
	"fmt"

	"purchases-api/entities"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.Purchase{}); err != nil {
		return fmt.Errorf("error migrating purchases table: %w", err)
	}

	log.Info("Database migration complete")
	return nil
}
