package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Status represents the lifecycle state of a procurement service request.
type Status string

const (
	// StatusDraft is the initial state; only the owner can see and edit it.
	StatusDraft Status = "draft"
	// StatusPending means the request awaits a procurement decision.
	StatusPending Status = "pending"
	// StatusApproved means procurement accepted the request.
	StatusApproved Status = "approved"
	// StatusRejected means procurement declined the request.
	StatusRejected Status = "rejected"
	// StatusInProgress means an approved request is being fulfilled.
	StatusInProgress Status = "in_progress"
)

// Known reports whether s is one of the five defined statuses.
func (s Status) Known() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusInProgress:
		return true
	}

	return false
}

// Priority represents the urgency of a request.
type Priority string

const (
	// PriorityLow for requests without time pressure.
	PriorityLow Priority = "low"
	// PriorityMedium is the default priority.
	PriorityMedium Priority = "medium"
	// PriorityHigh for urgent requests.
	PriorityHigh Priority = "high"
)

// Known reports whether p is one of the three defined priorities.
func (p Priority) Known() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}

	return false
}

// Rank returns a numeric ordering value so the pending queue can sort
// high priority first in SQL. Unknown priorities rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}

	return 0
}

// Budget holds the requested amount with a precomputed display string.
// Display is derived from Amount and Currency on every write.
type Budget struct {
	Amount   float64 `gorm:"column:budget_amount" json:"amount"`
	Currency string  `gorm:"column:budget_currency;size:8" json:"currency"`
	Display  string  `gorm:"column:budget_display;size:64" json:"display"`
}

// BudgetDisplay renders an amount in the portal's compact money format:
// millions as "CUR 2.5M", thousands as "CUR 45.0K", smaller amounts verbatim.
func BudgetDisplay(amount float64, currency string) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("%s %.1fM", currency, amount/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("%s %.1fK", currency, amount/1_000)
	}

	return fmt.Sprintf("%s %s", currency, strconv.FormatFloat(amount, 'f', -1, 64))
}

// Comment is a discussion entry attached to a request.
// UserName is a snapshot so the thread stays readable if the account changes.
type Comment struct {
	UserID    uint64    `json:"userId"`
	UserName  string    `json:"userName"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attachment is a file reference attached to a request.
type Attachment struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Path         string    `json:"path"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// HistoryEntry is one record in a request's append-only audit trail.
type HistoryEntry struct {
	Action    string    `json:"action"`
	UserID    uint64    `json:"userId"`
	UserName  string    `json:"userName"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}

// CommentList is stored as a JSON column.
type CommentList []Comment

// Value implements driver.Valuer.
func (l CommentList) Value() (driver.Value, error) { return jsonValue(l) }

// Scan implements sql.Scanner.
func (l *CommentList) Scan(src interface{}) error { return jsonScan(src, l) }

// AttachmentList is stored as a JSON column.
type AttachmentList []Attachment

// Value implements driver.Valuer.
func (l AttachmentList) Value() (driver.Value, error) { return jsonValue(l) }

// Scan implements sql.Scanner.
func (l *AttachmentList) Scan(src interface{}) error { return jsonScan(src, l) }

// HistoryLog is stored as a JSON column. Entries are only ever appended.
type HistoryLog []HistoryEntry

// Value implements driver.Valuer.
func (l HistoryLog) Value() (driver.Value, error) { return jsonValue(l) }

// Scan implements sql.Scanner.
func (l *HistoryLog) Scan(src interface{}) error { return jsonScan(src, l) }

func jsonValue(v interface{}) (driver.Value, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode json column")
	}

	return string(out), nil
}

func jsonScan(src, dst interface{}) error {
	if src == nil {
		return nil
	}

	var raw []byte

	switch s := src.(type) {
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		return errors.Errorf("unsupported json column type %T", src)
	}

	if len(raw) == 0 {
		return nil
	}

	return errors.Wrap(json.Unmarshal(raw, dst), "failed to decode json column")
}

// PSR represents a procurement service request.
//
// RequestorName and RequestorEmail are deliberate snapshots of the owning
// user at creation time: the audit trail stays meaningful even if the
// account is later renamed or deleted.
type PSR struct {
	ID uint64 `gorm:"primaryKey" json:"-"`
	// PSRID is the human-readable identifier, e.g. "REQ-042".
	// Assigned exactly once at first persistence and never changed.
	PSRID       string `gorm:"uniqueIndex;size:32;not null" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Department  string `gorm:"size:255;not null;index" json:"department"`

	RequestorID    uint64 `gorm:"not null;index:idx_psrs_requestor_status" json:"requestorId"`
	RequestorName  string `gorm:"size:255;not null" json:"requestorName"`
	RequestorEmail string `gorm:"size:255;not null" json:"requestorEmail"`

	Status Status `gorm:"type:varchar(20);not null;default:'draft';index;index:idx_psrs_requestor_status" json:"status"`

	Priority Priority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	// PriorityRank mirrors Priority numerically for SQL ordering.
	PriorityRank int `gorm:"not null;default:2;index" json:"-"`

	Budget   Budget `gorm:"embedded" json:"budget"`
	Category string `gorm:"size:255" json:"category"`

	RequestedDate   time.Time  `json:"requestedDate"`
	ApprovedDate    *time.Time `json:"approvedDate,omitempty"`
	ApprovedByID    *uint64    `json:"approvedBy,omitempty"`
	RejectedDate    *time.Time `json:"rejectedDate,omitempty"`
	RejectedByID    *uint64    `json:"rejectedBy,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejectionReason,omitempty"`

	Comments    CommentList    `gorm:"type:text" json:"comments"`
	Attachments AttachmentList `gorm:"type:text" json:"attachments"`
	History     HistoryLog     `gorm:"type:text" json:"history"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the PSR model.
func (PSR) TableName() string {
	return "psrs"
}

// FormatPSRID renders a sequence number in the portal's request id format.
func FormatPSRID(n uint64) string {
	return fmt.Sprintf("REQ-%03d", n)
}
