package models

import "time"

type DependencyType string

const (
	DependencyBlocks    DependencyType = "blocks"
	DependencyBlockedBy DependencyType = "blocked_by"
	DependencyRelatesTo DependencyType = "relates_to"
)

// OrderingRelevant reports whether edges of this type participate in the
// acyclicity invariant. relates_to edges are exempt.
func (t DependencyType) OrderingRelevant() bool {
	return t == DependencyBlocks || t == DependencyBlockedBy
}

// Valid reports whether t is one of the known dependency types.
func (t DependencyType) Valid() bool {
	switch t {
	case DependencyBlocks, DependencyBlockedBy, DependencyRelatesTo:
		return true
	}
	return false
}

// TaskDependency is a directed edge attached to the source task's outgoing
// collection. DependentTaskID is held by id only: the target task may be
// deleted out from under the edge and readers must treat that as absent.
type TaskDependency struct {
	ID              uint64         `gorm:"primarykey" json:"id"`
	TaskID          uint64         `gorm:"not null;index" json:"task_id"`
	DependentTaskID uint64         `gorm:"not null;index" json:"dependent_task_id"`
	Type            DependencyType `gorm:"type:varchar(20);not null" json:"type"`
	CreatedBy       uint64         `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
