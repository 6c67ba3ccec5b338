package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
)

// MigrateDB brings the schema up to date for all persisted models.
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate with nil DB connection")
	}
	err := db.AutoMigrate(
		&domain.User{},
		&domain.Room{},
		&domain.Membership{},
		&domain.Message{},
		&domain.CodeFile{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	logrus.Info("Database migration completed")
	return nil
}
