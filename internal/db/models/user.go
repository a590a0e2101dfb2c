package models

import (
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// Role represents the access level assigned to a user account.
// The set of roles is closed; authorization logic switches exhaustively
// over these four values and treats anything else as no access.
type Role string

const (
	// RoleAdmin has full access including user management.
	RoleAdmin Role = "admin"
	// RoleProcurement reviews, approves and rejects submitted requests.
	RoleProcurement Role = "procurement_team"
	// RoleRequestor creates and owns procurement requests.
	RoleRequestor Role = "requestor"
	// RoleGuest has no capabilities until an admin assigns a role.
	RoleGuest Role = "guest"
)

// Known reports whether r is one of the four defined roles.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleProcurement, RoleRequestor, RoleGuest:
		return true
	}

	return false
}

// User represents a portal account.
// Emails are stored lowercase so lookups are case-insensitive.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Active indicates whether the account may authenticate.
	Active bool `json:"isActive"`
	// Email is the unique login identifier, always lowercase.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	// Password is the Argon2id hashed password. Never serialized.
	Password string `gorm:"size:255" json:"-"`
	// Name is the user's display name.
	Name string `gorm:"size:255;not null" json:"name"`
	// Role is one of the four defined roles.
	Role Role `gorm:"type:varchar(32);not null;default:'guest'" json:"role"`
	// Department the user belongs to.
	Department string `gorm:"size:255" json:"department"`
	// EmployeeID is the internal HR identifier.
	EmployeeID string `gorm:"size:100" json:"employeeId"`
	// LastLogin is set on each successful authentication.
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	// CreatedAt is managed by GORM.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is managed by GORM.
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// NormalizeEmail folds an email address to its stored form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the stored hash.
// It uses constant-time comparison to prevent timing attacks.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
