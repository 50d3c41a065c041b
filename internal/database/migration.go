package database

import (
	"fmt"

	"github.com/spacedlevo/betting-syndicate/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Season{},
		&models.Player{},
		&models.PlayerSeason{},
		&models.Week{},
		&models.WeekAssignment{},
		&models.Bet{},
		&models.Entry{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
