package models

import "time"

// Estimate is an append-only revision of a task's projected effort. The
// task's EstimatedHours field is a denormalized copy of the latest record.
type Estimate struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	TaskID         uint64    `gorm:"not null;index" json:"task_id"`
	EstimatedHours float64   `gorm:"not null" json:"estimated_hours"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	CreatedBy      uint64    `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}
