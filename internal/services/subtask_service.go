package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSubtaskNotFound     = errors.New("subtask not found")
	ErrSubtaskTextRequired = errors.New("subtask text is required")
)

// SubtaskService manages a task's checklist items. Completion toggling does
// not propagate to the parent task status; callers update the task
// explicitly if they want that.
type SubtaskService struct {
	subtaskRepo repository.SubtaskRepository
	taskRepo    repository.TaskRepository
	recorder    *HistoryRecorder
}

// NewSubtaskService creates a new SubtaskService
func NewSubtaskService(subtaskRepo repository.SubtaskRepository, taskRepo repository.TaskRepository, recorder *HistoryRecorder) *SubtaskService {
	return &SubtaskService{
		subtaskRepo: subtaskRepo,
		taskRepo:    taskRepo,
		recorder:    recorder,
	}
}

// AddSubtaskInput represents input for adding a subtask
type AddSubtaskInput struct {
	TaskID     uint64
	Text       string
	AssigneeID *uint64
	DueDate    *time.Time
}

// AddSubtask appends a checklist item to a task.
func (s *SubtaskService) AddSubtask(actor Actor, input AddSubtaskInput) (*models.Subtask, error) {
	if !actor.IsMember {
		return nil, ErrNotProjectMember
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrSubtaskTextRequired
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	subtask := &models.Subtask{
		TaskID:     input.TaskID,
		Text:       input.Text,
		AssigneeID: input.AssigneeID,
		DueDate:    input.DueDate,
	}

	if err := s.subtaskRepo.Create(subtask); err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}

	s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionSubtaskAdded, map[string]any{
		"subtask_id": subtask.ID,
	})

	return subtask, nil
}

// UpdateSubtaskInput represents input for updating a subtask
type UpdateSubtaskInput struct {
	Text         *string
	AssigneeID   *uint64
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
}

// UpdateSubtask updates a checklist item.
func (s *SubtaskService) UpdateSubtask(actor Actor, subtaskID uint64, input UpdateSubtaskInput) (*models.Subtask, error) {
	if !actor.IsMember {
		return nil, ErrNotProjectMember
	}

	subtask, err := s.subtaskRepo.FindByID(subtaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("failed to find subtask: %w", err)
	}

	task, err := s.taskRepo.FindByID(subtask.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	changed := make(map[string]any)

	if input.Text != nil {
		if strings.TrimSpace(*input.Text) == "" {
			return nil, ErrSubtaskTextRequired
		}
		subtask.Text = *input.Text
		changed["text"] = true
	}
	if input.AssigneeID != nil {
		subtask.AssigneeID = input.AssigneeID
		changed["assignee_id"] = *input.AssigneeID
	}
	if input.ClearDueDate {
		subtask.DueDate = nil
		changed["due_date"] = nil
	} else if input.DueDate != nil {
		subtask.DueDate = input.DueDate
		changed["due_date"] = input.DueDate
	}
	if input.Completed != nil {
		subtask.Completed = *input.Completed
		changed["completed"] = *input.Completed
	}

	if err := s.subtaskRepo.Update(subtask); err != nil {
		return nil, fmt.Errorf("failed to update subtask: %w", err)
	}

	s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionSubtaskUpdated, changed)

	return subtask, nil
}

// DeleteSubtask removes a checklist item.
func (s *SubtaskService) DeleteSubtask(actor Actor, subtaskID uint64) error {
	if !actor.IsManager {
		return ErrManagerRequired
	}

	subtask, err := s.subtaskRepo.FindByID(subtaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubtaskNotFound
		}
		return fmt.Errorf("failed to find subtask: %w", err)
	}

	task, err := s.taskRepo.FindByID(subtask.TaskID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.subtaskRepo.Delete(subtaskID); err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
	}

	if task != nil {
		s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionSubtaskDeleted, map[string]any{
			"subtask_id": subtask.ID,
		})
	}

	return nil
}

// ListSubtasks lists a task's checklist items.
func (s *SubtaskService) ListSubtasks(taskID uint64) ([]models.Subtask, error) {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	subtasks, err := s.subtaskRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return subtasks, nil
}
