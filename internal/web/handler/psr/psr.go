// Package psr provides the procurement request endpoints.
package psr

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/auth"
	"github.com/procureflow/procureflow/internal/config"
	"github.com/procureflow/procureflow/internal/db/models"
	"github.com/procureflow/procureflow/internal/psr"
	"github.com/procureflow/procureflow/internal/web/handler"
)

// Path is the base path for procurement request endpoints.
const Path = handler.APIPath + "/psr"

// Service provides the procurement request endpoints.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
	engine    *psr.Engine
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
	s.validator = validator.New()
	s.engine = psr.NewEngine(db)

	authed := auth.RequireAuth(authService)
	review := auth.RequirePermission(auth.PermApproveRequests)

	// Fixed paths are registered before the :id routes so fiber does
	// not capture them as identifiers.
	app.Get(Path+"/my-requests", authed, s.ListMine)
	app.Get(Path+"/pending", authed, review, s.ListPending)
	app.Get(Path+"/approved", authed, s.ListApproved)
	app.Get(Path+"/statistics/summary", authed, s.Statistics)

	app.Get(Path, authed, s.List)
	app.Post(Path, authed, auth.RequirePermission(auth.PermCreatePSR), s.Create)
	app.Get(Path+"/:id", authed, s.Get)
	app.Put(Path+"/:id", authed, s.Update)
	app.Delete(Path+"/:id", authed, s.Delete)

	app.Post(Path+"/:id/submit", authed, s.Submit)
	app.Post(Path+"/:id/approve", authed, review, s.Approve)
	app.Post(Path+"/:id/reject", authed, review, s.Reject)
	app.Post(Path+"/:id/start", authed, review, s.Start)
	app.Post(Path+"/:id/comment", authed, s.Comment)
}

// fail maps engine sentinels onto the error envelope.
func fail(c *fiber.Ctx, err error) error {
	var verr *psr.ValidationError

	switch {
	case errors.Is(err, psr.ErrNotFound):
		return handler.Fail(c, fiber.StatusNotFound, handler.KindNotFound, "PSR not found")
	case errors.Is(err, psr.ErrAccessDenied):
		return handler.Fail(c, fiber.StatusForbidden, handler.KindForbidden, "Access denied")
	case errors.Is(err, psr.ErrInvalidTransition):
		return handler.Fail(c, fiber.StatusConflict, handler.KindInvalidTransition,
			"PSR is not in a valid status for this operation")
	case errors.Is(err, psr.ErrInvalidStatus):
		return handler.Fail(c, fiber.StatusBadRequest, handler.KindInvalidStatus,
			"Can only delete draft PSRs")
	case errors.As(err, &verr):
		return handler.Fail(c, fiber.StatusBadRequest, handler.KindValidation, verr.Error())
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("PSR operation failed")

		return handler.Internal(c)
	}
}

// List returns requests visible to the caller, filtered by query
// parameters.
func (s *Service) List(c *fiber.Ctx) error {
	filter := psr.Filter{
		Status:     models.Status(c.Query("status")),
		Department: c.Query("department"),
		Priority:   models.Priority(c.Query("priority")),
	}

	if raw := c.Query("requestorId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return handler.Fail(c, fiber.StatusBadRequest, handler.KindValidation,
				"Invalid value for field 'requestorId'")
		}

		filter.RequestorID = id
	}

	records, err := s.engine.List(auth.CurrentUser(c), filter)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"psrs": records, "count": len(records)})
}

// ListMine returns the caller's own requests.
func (s *Service) ListMine(c *fiber.Ctx) error {
	records, err := s.engine.ListMine(auth.CurrentUser(c), models.Status(c.Query("status")))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"psrs": records, "count": len(records)})
}

// ListPending returns the review queue.
func (s *Service) ListPending(c *fiber.Ctx) error {
	records, err := s.engine.ListPending(auth.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"psrs": records, "count": len(records)})
}

// ListApproved returns approved requests visible to the caller.
func (s *Service) ListApproved(c *fiber.Ctx) error {
	records, err := s.engine.ListApproved(auth.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"psrs": records, "count": len(records)})
}

// Statistics returns per-status counts over the caller's visible set.
func (s *Service) Statistics(c *fiber.Ctx) error {
	stats, err := s.engine.Statistics(auth.CurrentUser(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(stats)
}

// Get returns a single request.
func (s *Service) Get(c *fiber.Ctx) error {
	record, err := s.engine.Get(auth.CurrentUser(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"psr": record})
}

type createBody struct {
	Title       string  `json:"title"       validate:"required,max=255"`
	Description string  `json:"description" validate:"max=4000"`
	Department  string  `json:"department"  validate:"max=255"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Amount      float64 `json:"amount"      validate:"min=0"`
	Currency    string  `json:"currency"    validate:"max=8"`
	Category    string  `json:"category"    validate:"max=255"`
}

// Create creates a new request in draft.
func (s *Service) Create(c *fiber.Ctx) error {
	var in createBody
	if err := c.BodyParser(&in); err != nil {
		return handler.BadBody(c)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFail(c, err)
	}

	record, err := s.engine.Create(auth.CurrentUser(c), psr.CreateInput{
		Title:       in.Title,
		Description: in.Description,
		Department:  in.Department,
		Priority:    models.Priority(in.Priority),
		Amount:      in.Amount,
		Currency:    in.Currency,
		Category:    in.Category,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "PSR created successfully",
		"psr":     record,
	})
}

type updateBody struct {
	Title       *string  `json:"title"       validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Department  *string  `json:"department"  validate:"omitempty,max=255"`
	Priority    *string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Amount      *float64 `json:"amount"      validate:"omitempty,min=0"`
	Currency    *string  `json:"currency"    validate:"omitempty,max=8"`
	Category    *string  `json:"category"    validate:"omitempty,max=255"`
}

// Update applies a partial field update to a draft or pending request.
func (s *Service) Update(c *fiber.Ctx) error {
	var in updateBody
	if err := c.BodyParser(&in); err != nil {
		return handler.BadBody(c)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFail(c, err)
	}

	update := psr.UpdateInput{
		Title:       in.Title,
		Description: in.Description,
		Department:  in.Department,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Category:    in.Category,
	}
	if in.Priority != nil {
		priority := models.Priority(*in.Priority)
		update.Priority = &priority
	}

	record, err := s.engine.Update(auth.CurrentUser(c), c.Params("id"), update)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "PSR updated successfully",
		"psr":     record,
	})
}

// Submit moves a draft request into the pending queue.
func (s *Service) Submit(c *fiber.Ctx) error {
	record, err := s.engine.Submit(auth.CurrentUser(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "PSR submitted successfully",
		"psr":     record,
	})
}

// Approve approves a pending request.
func (s *Service) Approve(c *fiber.Ctx) error {
	record, err := s.engine.Approve(auth.CurrentUser(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "PSR approved successfully",
		"psr":     record,
	})
}

// Reject rejects a pending request with a reason.
func (s *Service) Reject(c *fiber.Ctx) error {
	var in struct {
		Reason string `json:"reason"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.BadBody(c)
	}

	record, err := s.engine.Reject(auth.CurrentUser(c), c.Params("id"), in.Reason)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "PSR rejected",
		"psr":     record,
	})
}

// Start moves an approved request into progress.
func (s *Service) Start(c *fiber.Ctx) error {
	record, err := s.engine.Start(auth.CurrentUser(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "PSR started",
		"psr":     record,
	})
}

// Comment appends a comment to a request.
func (s *Service) Comment(c *fiber.Ctx) error {
	var in struct {
		Text string `json:"text" validate:"required,max=4000"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.BadBody(c)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFail(c, err)
	}

	record, err := s.engine.AddComment(auth.CurrentUser(c), c.Params("id"), in.Text)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Comment added successfully",
		"psr":     record,
	})
}

// Delete removes a draft request.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.engine.Delete(auth.CurrentUser(c), c.Params("id")); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "PSR deleted successfully",
	})
}
