// Package daemon boots the database and the web service.
package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/config"
	"github.com/procureflow/procureflow/internal/db/dsn"
	"github.com/procureflow/procureflow/internal/db/models"
	"github.com/procureflow/procureflow/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.GormEngine {
	case "postgres":
		return gormpostgres.Open(dsn.Create(cfg))
	default:
		return gormmysql.Open(dsn.Create(cfg))
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.PSR{},
		&models.Sequence{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}
