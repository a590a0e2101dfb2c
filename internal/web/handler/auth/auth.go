// Package auth provides the registration, login and session endpoints.
package auth

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/auth"
	"github.com/procureflow/procureflow/internal/config"
	"github.com/procureflow/procureflow/internal/db/models"
	"github.com/procureflow/procureflow/internal/web/handler"
)

// Path is the base path for authentication endpoints.
const Path = handler.APIPath + "/auth"

// Service provides the authentication endpoints.
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

	app.Post(Path+"/register", s.Register)
	app.Post(Path+"/login", s.Login)
	app.Get(Path+"/me", auth.RequireAuth(authService), s.Me)
	app.Post(Path+"/logout", auth.RequireAuth(authService), s.Logout)
}

// userPayload is the user representation returned by auth endpoints.
type userPayload struct {
	ID          uint64             `json:"id"`
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	Role        models.Role        `json:"role"`
	Permissions auth.PermissionSet `json:"permissions"`
	Department  string             `json:"department,omitempty"`
	EmployeeID  string             `json:"employeeId,omitempty"`
	LoginTime   string             `json:"loginTime,omitempty"`
}

func payloadFor(user *models.User) userPayload {
	return userPayload{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		Permissions: auth.PermissionsFor(user.Role),
		Department:  user.Department,
		EmployeeID:  user.EmployeeID,
	}
}

// Register creates a new account and signs the caller in.
func (s *Service) Register(c *fiber.Ctx) error {
	var in struct {
		Email      string `json:"email"      validate:"required,email,max=255"`
		Password   string `json:"password"   validate:"required,min=6,max=128"`
		Name       string `json:"name"       validate:"required,max=255"`
		Department string `json:"department" validate:"max=255"`
		EmployeeID string `json:"employeeId" validate:"max=64"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.BadBody(c)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFail(c, err)
	}

	user, err := s.authService.Register(in.Email, in.Password, in.Name, models.RoleGuest, in.Department, in.EmployeeID)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			return handler.Fail(c, fiber.StatusBadRequest, handler.KindDuplicateEmail,
				"User already exists with this email")
		}

		log.Error().Err(err).Msg("registration failed")

		return handler.Internal(c)
	}

	token, err := s.authService.Tokens().Sign(user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("token signing failed")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   token,
		"user":    payloadFor(user),
	})
}

// Login authenticates the caller and issues a token.
func (s *Service) Login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.BadBody(c)
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.ValidationFail(c, err)
	}

	user, err := s.authService.Authenticate(in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountInactive) {
			return handler.Fail(c, fiber.StatusUnauthorized, handler.KindUnauthenticated,
				"Account is inactive. Please contact administrator")
		}

		return handler.Fail(c, fiber.StatusUnauthorized, handler.KindUnauthenticated,
			"Invalid email or password")
	}

	token, err := s.authService.Tokens().Sign(user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("token signing failed")

		return handler.Internal(c)
	}

	payload := payloadFor(user)
	payload.LoginTime = time.Now().UTC().Format(time.RFC3339)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    payload,
	})
}

// Me returns the authenticated user with the effective permission set.
func (s *Service) Me(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)

	return c.JSON(fiber.Map{
		"user": payloadFor(user),
	})
}

// Logout acknowledges the logout. Tokens are stateless, so the client
// discards its copy.
func (s *Service) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}
