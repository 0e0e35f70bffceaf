package services

import (
	"encoding/json"
	"log"

	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
)

// HistoryRecorder appends audit entries after successful mutations. Appends
// are best effort: a failed append is logged and never rolls back or fails
// the primary mutation.
type HistoryRecorder struct {
	historyRepo repository.HistoryRepository
}

// NewHistoryRecorder creates a new HistoryRecorder
func NewHistoryRecorder(historyRepo repository.HistoryRepository) *HistoryRecorder {
	return &HistoryRecorder{historyRepo: historyRepo}
}

// RecordTask appends a task-scoped history entry.
func (r *HistoryRecorder) RecordTask(projectID, taskID, userID uint64, action string, details map[string]any) {
	r.record(models.HistoryEntry{
		Scope:     models.ScopeTask,
		ProjectID: projectID,
		TaskID:    &taskID,
		Action:    action,
		UserID:    userID,
	}, details)
}

// RecordProject appends a project-scoped history entry.
func (r *HistoryRecorder) RecordProject(projectID, userID uint64, action string, details map[string]any) {
	r.record(models.HistoryEntry{
		Scope:     models.ScopeProject,
		ProjectID: projectID,
		Action:    action,
		UserID:    userID,
	}, details)
}

func (r *HistoryRecorder) record(entry models.HistoryEntry, details map[string]any) {
	if len(details) > 0 {
		payload, err := json.Marshal(details)
		if err != nil {
			log.Printf("history: failed to encode details for %s: %v", entry.Action, err)
		} else {
			entry.Details = string(payload)
		}
	}

	if err := r.historyRepo.Append(&entry); err != nil {
		log.Printf("history: failed to append %s entry for project %d: %v", entry.Action, entry.ProjectID, err)
	}
}
