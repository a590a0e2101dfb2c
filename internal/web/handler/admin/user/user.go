// Package user provides the admin endpoints for managing accounts.
package user

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
	"github.com/procureflow/procureflow/internal/web/handler"
)

// Path is the base path for user management endpoints.
const Path = handler.APIPath + "/users"

// Service provides CRUD operations for user accounts.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	validator   *validator.Validate
	authService *auth.Service
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
	s.authService = authService

	authed := auth.RequireAuth(authService)
	admin := auth.RequirePermission(auth.PermManageUsers)

	app.Post(Path, authed, admin, s.Create)
	app.Get(Path, authed, admin, s.List)
	app.Get(Path+"/:id", authed, admin, s.Get)
	app.Put(Path+"/:id", authed, admin, s.Update)
	app.Delete(Path+"/:id", authed, admin, s.Delete)
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.Fail(c, fiber.StatusNotFound, handler.KindNotFound, "User not found")
	case errors.Is(err, auth.ErrEmailExists):
		return handler.Fail(c, fiber.StatusBadRequest, handler.KindDuplicateEmail,
			"User already exists with this email")
	case errors.Is(err, auth.ErrSelfDeletion):
		return handler.Fail(c, fiber.StatusBadRequest, handler.KindSelfDeletion,
			"Cannot delete your own account")
	case errors.Is(err, auth.ErrUnknownRole):
		return handler.Fail(c, fiber.StatusBadRequest, handler.KindValidation,
			"Invalid value for field 'role'")
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("user operation failed")

		return handler.Internal(c)
	}
}

func parseID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

// Create creates a user with an explicit role.
func (s *Service) Create(c *fiber.Ctx) error {
	var in struct {
		Email      string `json:"email"      validate:"required,email,max=255"`
		Password   string `json:"password"   validate:"required,min=6,max=128"`
		Name       string `json:"name"       validate:"required,max=255"`
		Role       string `json:"role"       validate:"required,oneof=admin procurement_team requestor guest"`
		Department string `json:"department" validate:"max=255"`
		EmployeeID string `json:"employeeId" validate:"max=64"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.BadBody(c)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFail(c, err)
	}

	user, err := s.authService.CreateUser(in.Email, in.Password, in.Name, models.Role(in.Role), in.Department, in.EmployeeID)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// List returns users, optionally filtered by role or a name/email search.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := s.authService.ListUsers(models.Role(c.Query("role")), c.Query("search"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"users": users, "count": len(users)})
}

// Get returns a single user.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusNotFound, handler.KindNotFound, "User not found")
	}

	user, err := s.authService.GetUser(id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

// Update applies a partial update to a user. A new password, when
// present, is rehashed.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusNotFound, handler.KindNotFound, "User not found")
	}

	var in struct {
		Name       *string `json:"name"       validate:"omitempty,max=255"`
		Role       *string `json:"role"       validate:"omitempty,oneof=admin procurement_team requestor guest"`
		Department *string `json:"department" validate:"omitempty,max=255"`
		EmployeeID *string `json:"employeeId" validate:"omitempty,max=64"`
		Active     *bool   `json:"isActive"`
		Password   *string `json:"password"   validate:"omitempty,min=6,max=128"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.BadBody(c)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFail(c, err)
	}

	update := auth.UserUpdate{
		Name:       in.Name,
		Department: in.Department,
		EmployeeID: in.EmployeeID,
		Active:     in.Active,
	}
	if in.Role != nil {
		role := models.Role(*in.Role)
		update.Role = &role
	}

	user, err := s.authService.UpdateUser(id, update)
	if err != nil {
		return fail(c, err)
	}

	if in.Password != nil {
		if err := s.authService.ChangePassword(id, *in.Password); err != nil {
			return fail(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// Delete removes a user. Admins cannot delete their own account.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return handler.Fail(c, fiber.StatusNotFound, handler.KindNotFound, "User not found")
	}

	actor := auth.CurrentUser(c)
	if err := s.authService.DeleteUser(actor.ID, id); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
