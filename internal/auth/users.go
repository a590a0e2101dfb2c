package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/db/models"
)

// UserUpdate carries a partial user update; nil fields are left unchanged.
// A role change takes effect on the target's next authorization check,
// since the middleware re-reads the user on every request.
type UserUpdate struct {
	Name       *string
	Role       *models.Role
	Department *string
	EmployeeID *string
	Active     *bool
}

// CreateUser creates an account on behalf of an admin.
// Unlike Register, the role must be given explicitly.
func (s *Service) CreateUser(email, password, name string, role models.Role, department, employeeID string) (*models.User, error) {
	return s.createUser(email, password, name, role, department, employeeID)
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(id uint64) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &user, nil
}

// ListUsers returns accounts, newest first, optionally filtered by role
// and a name/email substring search.
func (s *Service) ListUsers(role models.Role, search string) ([]models.User, error) {
	tx := s.db.Model(&models.User{})

	if role != "" {
		tx = tx.Where("role = ?", role)
	}

	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var users []models.User
	if err := tx.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateUser applies a partial update to a user.
func (s *Service) UpdateUser(id uint64, in UserUpdate) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if in.Name != nil {
		updates["name"] = *in.Name
	}

	if in.Role != nil {
		if !in.Role.Known() {
			return nil, ErrUnknownRole
		}

		updates["role"] = *in.Role
	}

	if in.Department != nil {
		updates["department"] = *in.Department
	}

	if in.EmployeeID != nil {
		updates["employee_id"] = *in.EmployeeID
	}

	if in.Active != nil {
		updates["active"] = *in.Active
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ChangePassword replaces a user's password with a fresh hash.
func (s *Service) ChangePassword(id uint64, newPassword string) error {
	result := s.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("password", models.HashPassword(newPassword))
	if result.Error != nil {
		return fmt.Errorf("failed to change password: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteUser removes an account. An admin can never delete themselves.
func (s *Service) DeleteUser(actorID, id uint64) error {
	if actorID == id {
		return ErrSelfDeletion
	}

	if _, err := s.GetUser(id); err != nil {
		return err
	}

	if err := s.db.Delete(&models.User{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
