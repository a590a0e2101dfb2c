// Package health provides the liveness endpoint.
package health

import (
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/config"
	"github.com/procureflow/procureflow/internal/web/handler"
)

// Path is the liveness endpoint path.
const Path = handler.APIPath + "/health"

// Service provides the liveness endpoint.
type Service struct {
	handler.Service
	cfg   *config.Config
	db    *gorm.DB
	alive *atomic.Bool
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers the route. The alive flag is cleared during graceful
// shutdown so load balancers drain the instance.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, alive *atomic.Bool) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.alive = alive

	app.Get(Path, s.Check)
}

// Check reports whether the service accepts traffic.
func (s *Service) Check(c *fiber.Ctx) error {
	if s.alive != nil && !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "shutting_down",
			"message": "Server is draining",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "OK",
		"message": "Server is running",
	})
}
