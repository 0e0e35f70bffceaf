package dto

import (
	"time"

	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/services"
	"github.com/minatogawa/project-board-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// TagDTO represents a task tag in API responses
type TagDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// SubtaskDTO represents a subtask in API responses
type SubtaskDTO struct {
	ID         uint64     `json:"id"`
	TaskID     uint64     `json:"task_id"`
	Text       string     `json:"text"`
	AssigneeID *uint64    `json:"assignee_id"`
	DueDate    *time.Time `json:"due_date"`
	Completed  bool       `json:"completed"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// DependencyDTO represents an outgoing dependency edge in API responses.
// DependentTask is the resolved target snapshot and is omitted when the
// target no longer exists.
type DependencyDTO struct {
	ID              uint64                `json:"id"`
	TaskID          uint64                `json:"task_id"`
	DependentTaskID uint64                `json:"dependent_task_id"`
	Type            models.DependencyType `json:"type"`
	CreatedBy       uint64                `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
	DependentTask   *TaskListItemDTO      `json:"dependent_task,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID              uint64              `json:"id"`
	ProjectID       uint64              `json:"project_id"`
	Column          string              `json:"column"`
	Text            string              `json:"text"`
	Status          string              `json:"status"`
	Priority        models.TaskPriority `json:"priority"`
	AssigneeID      *uint64             `json:"assignee_id"`
	Position        *int                `json:"position"`
	EstimatedHours  *float64            `json:"estimated_hours"`
	TotalHoursSpent float64             `json:"total_hours_spent"`
	DueDate         *time.Time          `json:"due_date"`
	CreatedBy       uint64              `json:"created_by"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Creator         *UserDTO            `json:"creator,omitempty"`
	Assignee        *UserDTO            `json:"assignee,omitempty"`
	Subtasks        []SubtaskDTO        `json:"subtasks,omitempty"`
	Tags            []TagDTO            `json:"tags,omitempty"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID              uint64              `json:"id"`
	Column          string              `json:"column"`
	Text            string              `json:"text"`
	Status          string              `json:"status"`
	Priority        models.TaskPriority `json:"priority"`
	AssigneeID      *uint64             `json:"assignee_id"`
	Position        *int                `json:"position"`
	EstimatedHours  *float64            `json:"estimated_hours"`
	TotalHoursSpent float64             `json:"total_hours_spent"`
	DueDate         *time.Time          `json:"due_date"`
	CreatedAt       time.Time           `json:"created_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskListItemDTO        `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// SuggestedSubtasksResponse carries AI subtask proposals. Nothing in it is
// persisted; the client decides what to create.
type SuggestedSubtasksResponse struct {
	Suggestions []services.SuggestedSubtask `json:"suggestions"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToTagDTO converts a TaskTag model to TagDTO
func ToTagDTO(tag models.TaskTag) TagDTO {
	return TagDTO{
		ID:    tag.ID,
		Name:  tag.Name,
		Color: tag.Color,
	}
}

// ToSubtaskDTO converts a Subtask model to SubtaskDTO
func ToSubtaskDTO(subtask models.Subtask) SubtaskDTO {
	return SubtaskDTO{
		ID:         subtask.ID,
		TaskID:     subtask.TaskID,
		Text:       subtask.Text,
		AssigneeID: subtask.AssigneeID,
		DueDate:    subtask.DueDate,
		Completed:  subtask.Completed,
		CreatedAt:  subtask.CreatedAt,
		UpdatedAt:  subtask.UpdatedAt,
	}
}

// ToSubtaskDTOs converts a slice of Subtask models
func ToSubtaskDTOs(subtasks []models.Subtask) []SubtaskDTO {
	dtos := make([]SubtaskDTO, len(subtasks))
	for i, subtask := range subtasks {
		dtos[i] = ToSubtaskDTO(subtask)
	}
	return dtos
}

// ToDependencyDTO converts a resolved dependency edge to DependencyDTO
func ToDependencyDTO(dep services.ResolvedDependency) DependencyDTO {
	dto := DependencyDTO{
		ID:              dep.ID,
		TaskID:          dep.TaskID,
		DependentTaskID: dep.DependentTaskID,
		Type:            dep.Type,
		CreatedBy:       dep.CreatedBy,
		CreatedAt:       dep.CreatedAt,
	}

	if dep.DependentTask != nil {
		item := ToTaskListItemDTO(*dep.DependentTask)
		dto.DependentTask = &item
	}

	return dto
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:              task.ID,
		ProjectID:       task.ProjectID,
		Column:          task.Column,
		Text:            task.Text,
		Status:          task.Status,
		Priority:        task.Priority,
		AssigneeID:      task.AssigneeID,
		Position:        task.Position,
		EstimatedHours:  task.EstimatedHours,
		TotalHoursSpent: task.TotalHoursSpent,
		DueDate:         task.DueDate,
		CreatedBy:       task.CreatedBy,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	// Include assignee if preloaded
	if task.Assignee != nil && task.Assignee.ID != 0 {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	if len(task.Subtasks) > 0 {
		dto.Subtasks = ToSubtaskDTOs(task.Subtasks)
	}

	if len(task.Tags) > 0 {
		dto.Tags = make([]TagDTO, len(task.Tags))
		for i, tag := range task.Tags {
			dto.Tags[i] = ToTagDTO(tag)
		}
	}

	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	return TaskListItemDTO{
		ID:              task.ID,
		Column:          task.Column,
		Text:            task.Text,
		Status:          task.Status,
		Priority:        task.Priority,
		AssigneeID:      task.AssigneeID,
		Position:        task.Position,
		EstimatedHours:  task.EstimatedHours,
		TotalHoursSpent: task.TotalHoursSpent,
		DueDate:         task.DueDate,
		CreatedAt:       task.CreatedAt,
	}
}

// ToTaskListResponse converts tasks plus pagination state to a list response
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskListItemDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskListItemDTO(task)
	}
	return TaskListResponse{
		Tasks: items,
		Pagination: utils.PaginationResponse{
			Limit:      params.Limit,
			Total:      total,
			NextCursor: utils.NextCursor(params, total),
		},
	}
}
