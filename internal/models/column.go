package models

import (
	"time"

	"gorm.io/gorm"
)

// Column is a named lane of a project board. Order values are not required
// to be unique; rendering sorts by (order, id) for determinism.
type Column struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	ProjectID uint64         `gorm:"not null;index" json:"project_id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Order     int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
