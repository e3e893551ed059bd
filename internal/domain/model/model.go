// Package model contains domain models passed between layers.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task statuses.
const (
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Score trends.
const (
	TrendUp     = "up"
	TrendStable = "stable"
)

// Employee statuses.
const (
	EmployeeActive   = "active"
	EmployeeInactive = "inactive"
)

// StringList is a []string stored as a JSON-encoded text column.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), s)
	case []byte:
		return json.Unmarshal(v, s)
	default:
		return fmt.Errorf("unsupported string list source %T", src)
	}
}

// Organization is the tenant boundary. Every employee, task and score row
// carries its organization id.
type Organization struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex" json:"slug"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (o *Organization) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Employee belongs to one organization.
type Employee struct {
	ID            string     `gorm:"primaryKey;type:uuid" json:"id"`
	OrgID         string     `gorm:"index;not null" json:"org_id"`
	Name          string     `gorm:"not null" json:"name"`
	Email         string     `gorm:"index" json:"email"`
	Role          string     `json:"role"`
	Department    string     `json:"department"`
	Skills        StringList `gorm:"type:text" json:"skills"`
	WalletAddress *string    `json:"wallet_address,omitempty"`
	Status        string     `gorm:"default:active" json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (e *Employee) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = EmployeeActive
	}
	return nil
}

// Task is a unit of work owned by an organization, optionally assigned to an
// employee. Invariant: CompletedAt is non-nil iff Status == completed.
type Task struct {
	ID             string     `gorm:"primaryKey;type:uuid" json:"id"`
	OrgID          string     `gorm:"index;not null" json:"org_id"`
	Title          string     `gorm:"not null" json:"title"`
	Description    string     `json:"description"`
	Priority       string     `gorm:"default:medium" json:"priority"`
	Status         string     `gorm:"default:assigned" json:"status"`
	AssignedTo     *string    `gorm:"index" json:"assigned_to,omitempty"`
	CreatedBy      *string    `json:"created_by,omitempty"`
	RequiredSkills StringList `gorm:"type:text" json:"required_skills"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (t *Task) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusAssigned
	}
	return nil
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	return s == StatusAssigned || s == StatusInProgress || s == StatusCompleted
}

// Breakdown is the structured snapshot recorded with every score.
type Breakdown struct {
	TotalAssigned     int `json:"total_assigned"`
	TotalCompleted    int `json:"total_completed"`
	CompletionRatePct int `json:"completion_rate_pct"`
}

// Value implements driver.Valuer.
func (b Breakdown) Value() (driver.Value, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode breakdown: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (b *Breakdown) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*b = Breakdown{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), b)
	case []byte:
		return json.Unmarshal(v, b)
	default:
		return fmt.Errorf("unsupported breakdown source %T", src)
	}
}

// Score is the derived productivity row, one per employee. It is always
// recomputed wholesale from the employee's current task set, never patched.
type Score struct {
	ID                 string    `gorm:"primaryKey;type:uuid" json:"id"`
	OrgID              string    `gorm:"index;not null" json:"org_id"`
	EmployeeID         string    `gorm:"uniqueIndex;not null" json:"employee_id"`
	ProductivityScore  int       `json:"productivity_score"`
	TaskCompletionRate float64   `json:"task_completion_rate"`
	Trend              string    `json:"trend"`
	ScoreBreakdown     Breakdown `gorm:"type:text" json:"score_breakdown"`
	ComputedAt         time.Time `json:"computed_at"`
}

func (s *Score) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// TaskCompletedPayload is published when a task transitions to completed
// while it has an assignee.
type TaskCompletedPayload struct {
	TaskID     string `json:"taskId"`
	OrgID      string `json:"orgId"`
	EmployeeID string `json:"employeeId"`
}

// TaskCreatedPayload is published after a task is persisted.
type TaskCreatedPayload struct {
	TaskID string `json:"taskId"`
	OrgID  string `json:"orgId"`
	Title  string `json:"title"`
}

// EmployeeAddedPayload is published after an employee is persisted.
type EmployeeAddedPayload struct {
	EmployeeID string `json:"employeeId"`
	OrgID      string `json:"orgId"`
}
