package models

import "time"

// TimeEntry is an append-only record of hours actually spent. The task's
// TotalHoursSpent is recomputed as the full sum on every insert.
type TimeEntry struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	TaskID      uint64    `gorm:"not null;index" json:"task_id"`
	Hours       float64   `gorm:"not null" json:"hours"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	CreatedBy   uint64    `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Creator User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}
