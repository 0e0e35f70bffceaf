package models

import (
	"time"

	"gorm.io/gorm"
)

// Subtask is a checklist item owned exclusively by its parent task and
// removed with it. Completion does not propagate to the parent status.
type Subtask struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	TaskID     uint64         `gorm:"not null;index" json:"task_id"`
	Text       string         `gorm:"type:text;not null" json:"text"`
	AssigneeID *uint64        `json:"assignee_id"`
	DueDate    *time.Time     `json:"due_date"`
	Completed  bool           `gorm:"not null;default:false" json:"completed"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Task     Task  `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Assignee *User `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
}
