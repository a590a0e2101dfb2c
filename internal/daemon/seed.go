package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/config"
	"github.com/procureflow/procureflow/internal/db/models"
)

func seed(_ *config.Config, db *gorm.DB) {
	// Seed a default admin when the user table is empty.

	var count int64
	db.Model(&models.User{}).Count(&count)

	if count == 0 {
		db.Create(
			&models.User{
				Email:    "admin@procureflow.local",
				Password: models.HashPassword("changeme"),
				Name:     "Administrator",
				Role:     models.RoleAdmin,
				Active:   true,
			},
		)

		log.Warn().Msg("seeded default admin user, change its password")
	}
}
