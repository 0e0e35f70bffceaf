package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Task belongs to exactly one column at a time. Column is a weak reference
// by name, not a containment relation: column deletion is blocked while
// tasks reference it. Status and Column are independently settable.
//
// EstimatedHours and TotalHoursSpent are denormalized projections of the
// estimate and time-entry ledgers; only the time ledger code writes them.
type Task struct {
	ID              uint64         `gorm:"primarykey" json:"id"`
	ProjectID       uint64         `gorm:"not null;index" json:"project_id"`
	Column          string         `gorm:"column:board_column;type:varchar(100);not null" json:"column"`
	Text            string         `gorm:"type:text;not null" json:"text"`
	Status          string         `gorm:"type:varchar(50);not null" json:"status"`
	Priority        TaskPriority   `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	AssigneeID      *uint64        `gorm:"index" json:"assignee_id"`
	Position        *int           `json:"position"`
	EstimatedHours  *float64       `json:"estimated_hours"`
	TotalHoursSpent float64        `gorm:"not null;default:0" json:"total_hours_spent"`
	DueDate         *time.Time     `json:"due_date"`
	CreatedBy       uint64         `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project      Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Creator      User             `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Assignee     *User            `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Subtasks     []Subtask        `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
	Dependencies []TaskDependency `gorm:"foreignKey:TaskID" json:"dependencies,omitempty"`
	Tags         []TaskTag        `gorm:"foreignKey:TaskID" json:"tags,omitempty"`
}
