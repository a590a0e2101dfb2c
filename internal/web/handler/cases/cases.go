// Package cases provides the read-only Salesforce case mirror endpoints.
package cases

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/auth"
	"github.com/procureflow/procureflow/internal/config"
	"github.com/procureflow/procureflow/internal/db/models"
	"github.com/procureflow/procureflow/internal/salesforce"
	"github.com/procureflow/procureflow/internal/web/handler"
)

// Path is the base path for case mirror endpoints.
const Path = handler.APIPath + "/cases"

// Service provides the case mirror endpoints.
type Service struct {
	handler.Service
	cfg    *config.Config
	db     *gorm.DB
	client *salesforce.Client
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.client = salesforce.New(cfg.Salesforce)

	authed := auth.RequireAuth(authService)
	review := auth.RequireRole(models.RoleProcurement, models.RoleAdmin)

	app.Get(Path+"/test", authed, auth.RequireRole(models.RoleAdmin), s.Test)
	app.Get(Path, authed, review, s.List)
	app.Get(Path+"/:caseNumber", authed, review, s.Get)
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, salesforce.ErrNotConfigured):
		return handler.Fail(c, fiber.StatusServiceUnavailable, handler.KindUnavailable,
			"Salesforce integration is not configured")
	case errors.Is(err, salesforce.ErrCaseNotFound):
		return handler.Fail(c, fiber.StatusNotFound, handler.KindNotFound, "Case not found")
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("Salesforce request failed")

		return handler.Fail(c, fiber.StatusBadGateway, handler.KindUnavailable,
			"Failed to fetch cases from Salesforce")
	}
}

// List returns cases matching the query filters, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	list, err := s.client.ListCases(c.Context(), salesforce.CaseFilters{
		Status:        c.Query("status"),
		CaseNumber:    c.Query("caseNumber"),
		RequestorName: c.Query("requestorName"),
		VendorName:    c.Query("vendorName"),
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"cases":     list.Cases,
		"totalSize": list.TotalSize,
		"count":     len(list.Cases),
	})
}

// Get returns a single case by case number.
func (s *Service) Get(c *fiber.Ctx) error {
	view, err := s.client.GetCase(c.Context(), c.Params("caseNumber"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"case": view})
}

// Test verifies the Salesforce connection and returns a sample.
func (s *Service) Test(c *fiber.Ctx) error {
	list, err := s.client.Test(c.Context())
	if err != nil {
		return fail(c, err)
	}

	sample := list.Cases
	if len(sample) > 3 {
		sample = sample[:3]
	}

	return c.JSON(fiber.Map{
		"message":     "Salesforce connection successful",
		"instanceUrl": s.client.InstanceURL(),
		"totalCases":  list.TotalSize,
		"sampleCases": sample,
	})
}
