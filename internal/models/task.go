package models

import (
	"fmt"
	"math"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusOnHold     Status = "ON_HOLD"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusOnHold, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status ends a task's active life.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank orders priorities from LOW (1) to URGENT (4).
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q", s)
	}
	return p, nil
}

// Task is the single persisted entity of the service.
type Task struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"size:100;not null"`
	Description    string     `json:"description,omitempty" gorm:"size:500"`
	DueDate        *Date      `json:"dueDate,omitempty" gorm:"column:due_date;type:date"`
	Status         Status     `json:"status" gorm:"size:20;not null;default:'TODO'"`
	Priority       Priority   `json:"priority" gorm:"size:10;not null;default:'MEDIUM'"`
	Category       string     `json:"category" gorm:"size:50;not null;default:'General'"`
	AssignedTo     *string    `json:"assignedTo,omitempty" gorm:"column:assigned_to;size:100"`
	EstimatedHours *int       `json:"estimatedHours,omitempty" gorm:"column:estimated_hours"`
	CompletionDate *time.Time `json:"completionDate,omitempty" gorm:"column:completion_date"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"column:created_at;not null"`
	UpdatedAt      time.Time  `json:"updatedAt" gorm:"column:updated_at;not null"`
	CreatedBy      *string    `json:"createdBy,omitempty" gorm:"column:created_by;size:100"`
}

func (Task) TableName() string { return "tasks" }

// IsOverdue reports whether the due date has passed and the task is still active.
func (t *Task) IsOverdue() bool {
	return t.DueDate != nil && t.DueDate.Before(Today()) && !t.Status.Terminal()
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// MarkCompleted transitions the task to COMPLETED and stamps the completion time.
func (t *Task) MarkCompleted() {
	t.Status = StatusCompleted
	now := time.Now()
	t.CompletionDate = &now
}

func (t *Task) MarkInProgress() {
	t.Status = StatusInProgress
}

// DaysUntilDue returns the number of days until the due date, negative when
// overdue, MaxInt64 when no due date is set.
func (t *Task) DaysUntilDue() int64 {
	if t.DueDate == nil {
		return math.MaxInt64
	}
	return int64(t.DueDate.Sub(Today().Time).Hours() / 24)
}
