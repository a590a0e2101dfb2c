// Package auth implements the identity model, the authentication gate and
// the user management service of the portal.
package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/db/models"
)

const whereEmail = "email = ?"

// Service provides authentication and user management over the user store.
type Service struct {
	db    *gorm.DB
	codec *TokenCodec
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, codec *TokenCodec) *Service {
	return &Service{db: db, codec: codec}
}

// Tokens exposes the codec so handlers can issue tokens after registration.
func (s *Service) Tokens() *TokenCodec {
	return s.codec
}

// Authenticate verifies an email/password pair.
// Lookup is case-insensitive. An inactive account fails with
// ErrAccountInactive; any other mismatch with ErrInvalidCredentials.
// On success the user's last login timestamp is persisted.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	var user models.User

	err := s.db.Where(whereEmail, models.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrAccountInactive
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now

	if err := s.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("last_login", now).Error; err != nil {
		return nil, fmt.Errorf("failed to record last login: %w", err)
	}

	return &user, nil
}

// ResolveToken verifies a bearer token and loads the user it refers to.
func (s *Service) ResolveToken(token string) (*models.User, error) {
	userID, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Active {
		return nil, ErrAccountInactive
	}

	return &user, nil
}

// Register creates a self-registered account.
// Role defaults to guest; an admin promotes the account later.
func (s *Service) Register(email, password, name string, role models.Role, department, employeeID string) (*models.User, error) {
	if role == "" {
		role = models.RoleGuest
	}

	return s.createUser(email, password, name, role, department, employeeID)
}

func (s *Service) createUser(email, password, name string, role models.Role, department, employeeID string) (*models.User, error) {
	if !role.Known() {
		return nil, ErrUnknownRole
	}

	email = models.NormalizeEmail(email)

	var existing models.User

	err := s.db.Where(whereEmail, email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Active:     true,
		Email:      email,
		Password:   models.HashPassword(password),
		Name:       name,
		Role:       role,
		Department: department,
		EmployeeID: employeeID,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}
