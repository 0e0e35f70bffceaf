package dto

import (
	"time"

	"github.com/minatogawa/project-board-api/internal/models"
)

// EstimateDTO represents an estimate revision in API responses
type EstimateDTO struct {
	ID             uint64    `json:"id"`
	TaskID         uint64    `json:"task_id"`
	EstimatedHours float64   `json:"estimated_hours"`
	Description    string    `json:"description,omitempty"`
	CreatedBy      uint64    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// TimeEntryDTO represents a logged time entry in API responses
type TimeEntryDTO struct {
	ID          uint64    `json:"id"`
	TaskID      uint64    `json:"task_id"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedBy   uint64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TimeEntryCreatedResponse returns the new entry together with the task's
// recomputed running total.
type TimeEntryCreatedResponse struct {
	Entry           TimeEntryDTO `json:"entry"`
	TotalHoursSpent float64      `json:"total_hours_spent"`
}

// ToEstimateDTO converts an Estimate model to EstimateDTO
func ToEstimateDTO(estimate models.Estimate) EstimateDTO {
	return EstimateDTO{
		ID:             estimate.ID,
		TaskID:         estimate.TaskID,
		EstimatedHours: estimate.EstimatedHours,
		Description:    estimate.Description,
		CreatedBy:      estimate.CreatedBy,
		CreatedAt:      estimate.CreatedAt,
	}
}

// ToEstimateDTOs converts a slice of Estimate models
func ToEstimateDTOs(estimates []models.Estimate) []EstimateDTO {
	dtos := make([]EstimateDTO, len(estimates))
	for i, estimate := range estimates {
		dtos[i] = ToEstimateDTO(estimate)
	}
	return dtos
}

// ToTimeEntryDTO converts a TimeEntry model to TimeEntryDTO
func ToTimeEntryDTO(entry models.TimeEntry) TimeEntryDTO {
	return TimeEntryDTO{
		ID:          entry.ID,
		TaskID:      entry.TaskID,
		Hours:       entry.Hours,
		Description: entry.Description,
		Date:        entry.Date,
		CreatedBy:   entry.CreatedBy,
		CreatedAt:   entry.CreatedAt,
	}
}

// ToTimeEntryDTOs converts a slice of TimeEntry models
func ToTimeEntryDTOs(entries []models.TimeEntry) []TimeEntryDTO {
	dtos := make([]TimeEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = ToTimeEntryDTO(entry)
	}
	return dtos
}
