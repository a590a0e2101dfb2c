package psr

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/db/models"
)

// Filter narrows a listing. Requestors are always scoped to their own
// records; the RequestorID filter only applies to reviewing roles.
type Filter struct {
	Status      models.Status
	Department  string
	Priority    models.Priority
	RequestorID uint64
}

// Statistics are per-status counts over the actor's visible set.
type Statistics struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Approved   int64 `json:"approved"`
	Rejected   int64 `json:"rejected"`
	InProgress int64 `json:"inProgress"`
	Draft      int64 `json:"draft"`
}

// scoped applies the row-level visibility rule: a requestor only ever sees
// their own records, no matter what filters the caller supplied.
func scoped(tx *gorm.DB, actor *models.User) *gorm.DB {
	if actor.Role == models.RoleRequestor {
		return tx.Where("requestor_id = ?", actor.ID)
	}

	return tx
}

// List returns requests visible to the actor, newest first.
func (e *Engine) List(actor *models.User, filter Filter) ([]models.PSR, error) {
	tx := scoped(e.db.Model(&models.PSR{}), actor)

	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}

	if filter.Department != "" {
		tx = tx.Where("department = ?", filter.Department)
	}

	if filter.Priority != "" {
		tx = tx.Where("priority = ?", filter.Priority)
	}

	if filter.RequestorID != 0 && actor.Role != models.RoleRequestor {
		tx = tx.Where("requestor_id = ?", filter.RequestorID)
	}

	var records []models.PSR
	if err := tx.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list PSRs: %w", err)
	}

	return records, nil
}

// ListMine returns the actor's own requests, optionally by status.
func (e *Engine) ListMine(actor *models.User, status models.Status) ([]models.PSR, error) {
	tx := e.db.Model(&models.PSR{}).Where("requestor_id = ?", actor.ID)

	if status != "" {
		tx = tx.Where("status = ?", status)
	}

	var records []models.PSR
	if err := tx.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list own PSRs: %w", err)
	}

	return records, nil
}

// ListPending returns the review queue: highest priority first, oldest
// first within the same priority. Reviewing roles only.
func (e *Engine) ListPending(actor *models.User) ([]models.PSR, error) {
	if !canReview(actor) {
		return nil, ErrAccessDenied
	}

	var records []models.PSR

	err := e.db.Model(&models.PSR{}).
		Where("status = ?", models.StatusPending).
		Order("priority_rank DESC, created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending PSRs: %w", err)
	}

	return records, nil
}

// ListApproved returns approved requests visible to the actor, most
// recently approved first.
func (e *Engine) ListApproved(actor *models.User) ([]models.PSR, error) {
	tx := scoped(e.db.Model(&models.PSR{}), actor).
		Where("status = ?", models.StatusApproved)

	var records []models.PSR
	if err := tx.Order("approved_date DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list approved PSRs: %w", err)
	}

	return records, nil
}

// Get returns a single request by its public id.
// A requestor reaching for someone else's record gets ErrAccessDenied.
func (e *Engine) Get(actor *models.User, id string) (*models.PSR, error) {
	record, err := load(e.db, id)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleRequestor && record.RequestorID != actor.ID {
		return nil, ErrAccessDenied
	}

	return record, nil
}

// CountAll reports the number of stored requests, unscoped.
func (e *Engine) CountAll() (int64, error) {
	var n int64
	if err := e.db.Model(&models.PSR{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count PSRs: %w", err)
	}

	return n, nil
}

// Statistics returns per-status counts over the actor's visible set.
func (e *Engine) Statistics(actor *models.User) (*Statistics, error) {
	var stats Statistics

	count := func(status models.Status, dst *int64) error {
		tx := scoped(e.db.Model(&models.PSR{}), actor)
		if status != "" {
			tx = tx.Where("status = ?", status)
		}

		if err := tx.Count(dst).Error; err != nil {
			return fmt.Errorf("failed to count PSRs: %w", err)
		}

		return nil
	}

	steps := []struct {
		status models.Status
		dst    *int64
	}{
		{"", &stats.Total},
		{models.StatusPending, &stats.Pending},
		{models.StatusApproved, &stats.Approved},
		{models.StatusRejected, &stats.Rejected},
		{models.StatusInProgress, &stats.InProgress},
		{models.StatusDraft, &stats.Draft},
	}

	for _, step := range steps {
		if err := count(step.status, step.dst); err != nil {
			return nil, err
		}
	}

	return &stats, nil
}
