package repositories

import (
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the PostgreSQL tables.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Friendship{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupInvite{},
		&models.Notification{},
	)
	return errors.Wrap(err, "auto migrate")
}
