package dto

import (
	"encoding/json"
	"time"

	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/utils"
)

// HistoryEntryDTO represents an audit record in API responses. Details is
// the raw JSON payload recorded with the entry.
type HistoryEntryDTO struct {
	ID        uint64          `json:"id"`
	Scope     string          `json:"scope"`
	ProjectID uint64          `json:"project_id"`
	TaskID    *uint64         `json:"task_id,omitempty"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details,omitempty"`
	UserID    uint64          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
}

// HistoryListResponse represents a paginated list of history entries
type HistoryListResponse struct {
	Entries    []HistoryEntryDTO        `json:"entries"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToHistoryEntryDTO converts a HistoryEntry model to HistoryEntryDTO
func ToHistoryEntryDTO(entry models.HistoryEntry) HistoryEntryDTO {
	dto := HistoryEntryDTO{
		ID:        entry.ID,
		Scope:     string(entry.Scope),
		ProjectID: entry.ProjectID,
		TaskID:    entry.TaskID,
		Action:    entry.Action,
		UserID:    entry.UserID,
		CreatedAt: entry.CreatedAt,
	}
	if entry.Details != "" {
		dto.Details = json.RawMessage(entry.Details)
	}
	return dto
}

// ToHistoryListResponse converts entries plus pagination state to a list response
func ToHistoryListResponse(entries []models.HistoryEntry, params utils.PaginationParams, total int64) HistoryListResponse {
	dtos := make([]HistoryEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = ToHistoryEntryDTO(entry)
	}
	return HistoryListResponse{
		Entries: dtos,
		Pagination: utils.PaginationResponse{
			Limit:      params.Limit,
			Total:      total,
			NextCursor: utils.NextCursor(params, total),
		},
	}
}
