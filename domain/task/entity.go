// Package task defines the core task entity, its closed enumerations, and
// the pure query/transform rules derived from it.
package task

import "time"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is a member of the status enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// weight returns the board-column order of the status: TODO, IN_PROGRESS,
// DONE. Unknown values sort last.
func (s Status) weight() int {
	switch s {
	case StatusTodo:
		return 0
	case StatusInProgress:
		return 1
	case StatusDone:
		return 2
	default:
		return 3
	}
}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is a member of the priority enumeration.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// weight returns the severity order of the priority, HIGH first. Unknown
// values sort last.
func (p Priority) weight() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Task is the persisted unit of work tracked by the system. The store owns
// the authoritative copy; any client-held task is a snapshot valid only
// until the next fetch.
//
// ID is assigned by the store on creation and never reused after deletion
// (SQLite AUTOINCREMENT). A nil Description means "no description provided";
// a nil DueDate means the task has no deadline and is never classified as
// due today or overdue. CreatedAt and UpdatedAt are managed by GORM;
// UpdatedAt is refreshed on every successful mutation.
type Task struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description *string    `gorm:"size:2000" json:"description"`
	DueDate     *time.Time `gorm:"index" json:"dueDate"`
	Status      Status     `gorm:"size:16;not null;default:TODO" json:"status"`
	Priority    Priority   `gorm:"size:16;not null;default:MEDIUM" json:"priority"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}
