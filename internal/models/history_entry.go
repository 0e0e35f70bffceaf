package models

import "time"

type HistoryScope string

const (
	ScopeTask    HistoryScope = "task"
	ScopeProject HistoryScope = "project"
)

// History actions recorded by the engine.
const (
	ActionTaskCreated       = "task_created"
	ActionTaskUpdated       = "task_updated"
	ActionTaskMoved         = "task_moved"
	ActionTaskDeleted       = "task_deleted"
	ActionTasksReordered    = "tasks_reordered"
	ActionColumnCreated     = "column_created"
	ActionColumnDeleted     = "column_deleted"
	ActionColumnsReordered  = "columns_reordered"
	ActionDependencyAdded   = "dependency_added"
	ActionDependencyDeleted = "dependency_deleted"
	ActionSubtaskAdded      = "subtask_added"
	ActionSubtaskUpdated    = "subtask_updated"
	ActionSubtaskDeleted    = "subtask_deleted"
	ActionTagAdded          = "tag_added"
	ActionTagDeleted        = "tag_deleted"
	ActionEstimateAdded     = "estimate_added"
	ActionTimeLogged        = "time_logged"
)

// HistoryEntry is an append-only audit record. Details holds a JSON object
// serialized by the recording service; it is never parsed back except by
// readers that want the raw payload.
type HistoryEntry struct {
	ID        uint64       `gorm:"primarykey" json:"id"`
	Scope     HistoryScope `gorm:"type:varchar(20);not null;index" json:"scope"`
	ProjectID uint64       `gorm:"not null;index" json:"project_id"`
	TaskID    *uint64      `gorm:"index" json:"task_id,omitempty"`
	Action    string       `gorm:"type:varchar(50);not null;index" json:"action"`
	Details   string       `gorm:"type:text" json:"details,omitempty"`
	UserID    uint64       `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
}
