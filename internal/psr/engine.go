// Package psr implements the lifecycle engine and the query service for
// procurement service requests.
package psr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/procureflow/procureflow/internal/auth"
	"github.com/procureflow/procureflow/internal/db/controller/sequence"
	"github.com/procureflow/procureflow/internal/db/models"
)

// SequenceName is the counter backing request id allocation.
const SequenceName = "psr"

const defaultCurrency = "INR"

// Engine owns the request state machine.
//
// Every mutating operation runs inside one transaction whose final write is
// conditioned on the status the operation read, so a raced transition fails
// with ErrInvalidTransition and leaves nothing behind.
type Engine struct {
	db *gorm.DB
}

// NewEngine creates a lifecycle engine over the given store.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// CreateInput carries the fields of a new request.
type CreateInput struct {
	Title       string
	Description string
	Department  string
	Priority    models.Priority
	Amount      float64
	Currency    string
	Category    string
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Department  *string
	Priority    *models.Priority
	Amount      *float64
	Currency    *string
	Category    *string
}

// canReview reports whether the actor may decide on submitted requests.
func canReview(actor *models.User) bool {
	return auth.PermissionsFor(actor.Role).Has(auth.PermApproveRequests)
}

// Create opens a new request in draft for the acting user.
// The request id is allocated from an atomic counter inside the same
// transaction, so concurrent creations never collide.
func (e *Engine) Create(actor *models.User, in CreateInput) (*models.PSR, error) {
	if !auth.PermissionsFor(actor.Role).Has(auth.PermCreatePSR) {
		return nil, ErrAccessDenied
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, invalidField("title", "Title is required")
	}

	if strings.TrimSpace(in.Department) == "" {
		return nil, invalidField("department", "Department is required")
	}

	if in.Amount < 0 {
		return nil, invalidField("budget.amount", "Budget amount cannot be negative")
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	if !priority.Known() {
		return nil, invalidField("priority", "Unknown priority")
	}

	currency := in.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	now := time.Now()

	record := models.PSR{
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Department:     strings.TrimSpace(in.Department),
		RequestorID:    actor.ID,
		RequestorName:  actor.Name,
		RequestorEmail: actor.Email,
		Status:         models.StatusDraft,
		Priority:       priority,
		PriorityRank:   priority.Rank(),
		Budget: models.Budget{
			Amount:   in.Amount,
			Currency: currency,
			Display:  models.BudgetDisplay(in.Amount, currency),
		},
		Category:      in.Category,
		RequestedDate: now,
		History: models.HistoryLog{{
			Action:    "created",
			UserID:    actor.ID,
			UserName:  actor.Name,
			Timestamp: now,
			Details:   "PSR created as draft",
		}},
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		n, err := sequence.Next(tx, SequenceName)
		if err != nil {
			return fmt.Errorf("failed to allocate PSR id: %w", err)
		}

		record.PSRID = models.FormatPSRID(n)

		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create PSR: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Update applies a partial field update.
// Only the owning requestor may update, and only while the request is in
// draft or pending. The budget display string is recomputed whenever the
// budget changes.
func (e *Engine) Update(actor *models.User, id string, in UpdateInput) (*models.PSR, error) {
	var out *models.PSR

	err := e.db.Transaction(func(tx *gorm.DB) error {
		record, err := load(tx, id)
		if err != nil {
			return err
		}

		if record.RequestorID != actor.ID {
			return ErrAccessDenied
		}

		if record.Status != models.StatusDraft && record.Status != models.StatusPending {
			return ErrInvalidTransition
		}

		updates := map[string]interface{}{}

		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return invalidField("title", "Title is required")
			}

			updates["title"] = strings.TrimSpace(*in.Title)
		}

		if in.Description != nil {
			updates["description"] = *in.Description
		}

		if in.Department != nil {
			if strings.TrimSpace(*in.Department) == "" {
				return invalidField("department", "Department is required")
			}

			updates["department"] = strings.TrimSpace(*in.Department)
		}

		if in.Priority != nil {
			if !in.Priority.Known() {
				return invalidField("priority", "Unknown priority")
			}

			updates["priority"] = *in.Priority
			updates["priority_rank"] = in.Priority.Rank()
		}

		if in.Category != nil {
			updates["category"] = *in.Category
		}

		if in.Amount != nil || in.Currency != nil {
			amount := record.Budget.Amount
			if in.Amount != nil {
				if *in.Amount < 0 {
					return invalidField("budget.amount", "Budget amount cannot be negative")
				}

				amount = *in.Amount
			}

			currency := record.Budget.Currency
			if in.Currency != nil && *in.Currency != "" {
				currency = *in.Currency
			}

			updates["budget_amount"] = amount
			updates["budget_currency"] = currency
			updates["budget_display"] = models.BudgetDisplay(amount, currency)
		}

		updates["history"] = appendHistory(record, actor, "updated", "PSR updated")

		if err := applyConditional(tx, record, updates); err != nil {
			return err
		}

		out, err = load(tx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Submit moves a draft to the pending queue.
func (e *Engine) Submit(actor *models.User, id string) (*models.PSR, error) {
	return e.transition(id, transitionSpec{
		from: models.StatusDraft,
		to:   models.StatusPending,
		guard: func(record *models.PSR) error {
			if record.RequestorID != actor.ID {
				return ErrAccessDenied
			}

			return nil
		},
		actor:   actor,
		action:  "submitted",
		details: "PSR submitted for approval",
	})
}

// Approve accepts a pending request.
func (e *Engine) Approve(actor *models.User, id string) (*models.PSR, error) {
	now := time.Now()

	return e.transition(id, transitionSpec{
		from: models.StatusPending,
		to:   models.StatusApproved,
		guard: func(*models.PSR) error {
			if !canReview(actor) {
				return ErrAccessDenied
			}

			return nil
		},
		actor:   actor,
		action:  "approved",
		details: "PSR approved",
		extra: map[string]interface{}{
			"approved_by_id": actor.ID,
			"approved_date":  now,
		},
	})
}

// Reject declines a pending request. The reason is mandatory and is kept
// on the record as well as in the history entry.
func (e *Engine) Reject(actor *models.User, id, reason string) (*models.PSR, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalidField("reason", "Rejection reason is required")
	}

	now := time.Now()

	return e.transition(id, transitionSpec{
		from: models.StatusPending,
		to:   models.StatusRejected,
		guard: func(*models.PSR) error {
			if !canReview(actor) {
				return ErrAccessDenied
			}

			return nil
		},
		actor:   actor,
		action:  "rejected",
		details: "PSR rejected: " + reason,
		extra: map[string]interface{}{
			"rejected_by_id":   actor.ID,
			"rejected_date":    now,
			"rejection_reason": reason,
		},
	})
}

// Start marks an approved request as being fulfilled.
// The move to in_progress is operator-triggered: someone on the
// procurement side starts working the approved request.
func (e *Engine) Start(actor *models.User, id string) (*models.PSR, error) {
	return e.transition(id, transitionSpec{
		from: models.StatusApproved,
		to:   models.StatusInProgress,
		guard: func(*models.PSR) error {
			if !canReview(actor) {
				return ErrAccessDenied
			}

			return nil
		},
		actor:   actor,
		action:  "started",
		details: "PSR work started",
	})
}

// AddComment appends a comment. Requestors may only comment on their own
// requests; reviewers on any. Comments never touch the history log.
func (e *Engine) AddComment(actor *models.User, id, text string) (*models.PSR, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalidField("comment", "Comment is required")
	}

	var out *models.PSR

	err := e.db.Transaction(func(tx *gorm.DB) error {
		record, err := load(tx, id)
		if err != nil {
			return err
		}

		if record.RequestorID != actor.ID && !canReview(actor) {
			return ErrAccessDenied
		}

		comments := append(record.Comments, models.Comment{
			UserID:    actor.ID,
			UserName:  actor.Name,
			Comment:   text,
			CreatedAt: time.Now(),
		})

		if err := tx.Model(&models.PSR{}).
			Where("id = ?", record.ID).
			Update("comments", comments).Error; err != nil {
			return fmt.Errorf("failed to add comment: %w", err)
		}

		out, err = load(tx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes a request. Only the owner may delete, and only drafts.
func (e *Engine) Delete(actor *models.User, id string) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		record, err := load(tx, id)
		if err != nil {
			return err
		}

		if record.RequestorID != actor.ID {
			return ErrAccessDenied
		}

		if record.Status != models.StatusDraft {
			return ErrInvalidStatus
		}

		result := tx.Where("id = ? AND status = ?", record.ID, models.StatusDraft).
			Delete(&models.PSR{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete PSR: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			return ErrInvalidStatus
		}

		return nil
	})
}

// transitionSpec describes one edge of the state machine.
type transitionSpec struct {
	from    models.Status
	to      models.Status
	guard   func(*models.PSR) error
	actor   *models.User
	action  string
	details string
	extra   map[string]interface{}
}

func (e *Engine) transition(id string, spec transitionSpec) (*models.PSR, error) {
	var out *models.PSR

	err := e.db.Transaction(func(tx *gorm.DB) error {
		record, err := load(tx, id)
		if err != nil {
			return err
		}

		if err := spec.guard(record); err != nil {
			return err
		}

		if record.Status != spec.from {
			return ErrInvalidTransition
		}

		updates := map[string]interface{}{
			"status":  spec.to,
			"history": appendHistory(record, spec.actor, spec.action, spec.details),
		}

		for k, v := range spec.extra {
			updates[k] = v
		}

		if err := applyConditional(tx, record, updates); err != nil {
			return err
		}

		out, err = load(tx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// applyConditional writes the update only when the row still carries the
// status the transaction read. Zero matched rows means a concurrent writer
// won the race; the caller's transaction rolls back untouched.
func applyConditional(tx *gorm.DB, record *models.PSR, updates map[string]interface{}) error {
	result := tx.Model(&models.PSR{}).
		Where("id = ? AND status = ?", record.ID, record.Status).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update PSR: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}

	return nil
}

func appendHistory(record *models.PSR, actor *models.User, action, details string) models.HistoryLog {
	return append(record.History, models.HistoryEntry{
		Action:    action,
		UserID:    actor.ID,
		UserName:  actor.Name,
		Timestamp: time.Now(),
		Details:   details,
	})
}

func load(tx *gorm.DB, id string) (*models.PSR, error) {
	var record models.PSR
	if err := tx.Where("psr_id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to load PSR: %w", err)
	}

	return &record, nil
}
