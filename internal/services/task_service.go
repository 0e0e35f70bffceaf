package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/minatogawa/project-board-api/internal/config"
	"github.com/minatogawa/project-board-api/internal/constants"
	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotProjectMember     = errors.New("user is not a member of the project")
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskPermissionDenied = errors.New("user does not have permission to modify this task")
	ErrTaskTextRequired     = errors.New("task text is required")
	ErrInvalidPriority      = errors.New("unknown task priority")
	ErrAssigneeNotMember    = errors.New("assignee is not a member of the project team")
	ErrAssigneeNotFound     = errors.New("assignee does not exist")
	ErrEmptyTaskReorder     = errors.New("at least one task id is required")
	ErrInvalidPosition      = errors.New("position must be zero or positive")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo        repository.TaskRepository
	columnRepo      repository.ColumnRepository
	projectRepo     repository.ProjectRepository
	userRepo        repository.UserRepository
	historyRepo     repository.HistoryRepository
	recorder        *HistoryRecorder
	notifier        Notifier
	onMissingColumn config.MissingColumnPolicy
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	columnRepo repository.ColumnRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	historyRepo repository.HistoryRepository,
	recorder *HistoryRecorder,
	notifier Notifier,
	onMissingColumn config.MissingColumnPolicy,
) *TaskService {
	return &TaskService{
		taskRepo:        taskRepo,
		columnRepo:      columnRepo,
		projectRepo:     projectRepo,
		userRepo:        userRepo,
		historyRepo:     historyRepo,
		recorder:        recorder,
		notifier:        notifier,
		onMissingColumn: onMissingColumn,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID  uint64
	Column     string
	Text       string
	Status     string
	Priority   models.TaskPriority
	AssigneeID *uint64
	Position   *int
	DueDate    *time.Time
}

// CreateTask creates a new task on the board. The column must exist for the
// project unless the missing-column policy is auto_create, in which case it
// is invented with a default order. Status defaults to the column name,
// priority to medium.
func (s *TaskService) CreateTask(actor Actor, input CreateTaskInput) (*models.Task, error) {
	if !actor.IsMember {
		return nil, ErrNotProjectMember
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrTaskTextRequired
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !validPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}
	if input.Position != nil && *input.Position < 0 {
		return nil, ErrInvalidPosition
	}

	if err := s.resolveColumn(actor, input.ProjectID, input.Column); err != nil {
		return nil, err
	}

	if input.AssigneeID != nil {
		if err := s.validateAssignee(actor, input.ProjectID, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	if input.Status == "" {
		input.Status = input.Column
	}

	task := &models.Task{
		ProjectID:  input.ProjectID,
		Column:     input.Column,
		Text:       input.Text,
		Status:     input.Status,
		Priority:   input.Priority,
		AssigneeID: input.AssigneeID,
		Position:   input.Position,
		DueDate:    input.DueDate,
		CreatedBy:  actor.UserID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionTaskCreated, map[string]any{
		"column": task.Column,
		"status": task.Status,
	})

	if task.AssigneeID != nil && *task.AssigneeID != actor.UserID {
		s.notifier.Notify(*task.AssigneeID, Event{
			Type:      "task_assigned",
			ProjectID: task.ProjectID,
			TaskID:    task.ID,
			Message:   "You were assigned a new task",
		})
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee")
}

// UpdateTaskInput represents input for updating a task. Nil pointers leave
// the field untouched.
type UpdateTaskInput struct {
	Text          *string
	Status        *string
	Priority      *models.TaskPriority
	Column        *string
	AssigneeID    *uint64
	ClearAssignee bool
	Position      *int
	DueDate       *time.Time
	ClearDueDate  bool
}

// statusOnly reports whether the update touches nothing but Status.
func (in UpdateTaskInput) statusOnly() bool {
	return in.Text == nil && in.Priority == nil && in.Column == nil &&
		in.AssigneeID == nil && !in.ClearAssignee && in.Position == nil &&
		in.DueDate == nil && !in.ClearDueDate
}

// UpdateTask updates an existing task. Managers may change any field; a
// plain team member may only change status, and only on tasks assigned to
// themselves. A rejected update applies nothing.
func (s *TaskService) UpdateTask(actor Actor, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !actor.IsManager {
		if !actor.IsMember {
			return nil, ErrNotProjectMember
		}
		selfAssigned := task.AssigneeID != nil && *task.AssigneeID == actor.UserID
		if !selfAssigned || !input.statusOnly() {
			return nil, ErrTaskPermissionDenied
		}
	}

	changed := make(map[string]any)

	if input.Text != nil {
		if strings.TrimSpace(*input.Text) == "" {
			return nil, ErrTaskTextRequired
		}
		task.Text = *input.Text
		changed["text"] = true
	}
	if input.Priority != nil {
		if !validPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
		changed["priority"] = *input.Priority
	}
	if input.Column != nil {
		if err := s.resolveColumn(actor, task.ProjectID, *input.Column); err != nil {
			return nil, err
		}
		task.Column = *input.Column
		changed["column"] = *input.Column
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
		changed["assignee_id"] = nil
	} else if input.AssigneeID != nil {
		if err := s.validateAssignee(actor, task.ProjectID, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
		changed["assignee_id"] = *input.AssigneeID
	}
	if input.Position != nil {
		if *input.Position < 0 {
			return nil, ErrInvalidPosition
		}
		task.Position = input.Position
		changed["position"] = *input.Position
	}
	if input.ClearDueDate {
		task.DueDate = nil
		changed["due_date"] = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
		changed["due_date"] = input.DueDate
	}
	if input.Status != nil {
		task.Status = *input.Status
		changed["status"] = *input.Status
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionTaskUpdated, changed)

	if id, ok := changed["assignee_id"].(uint64); ok && id != actor.UserID {
		s.notifier.Notify(id, Event{
			Type:      "task_assigned",
			ProjectID: task.ProjectID,
			TaskID:    task.ID,
			Message:   "You were assigned a task",
		})
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Assignee")
}

// MoveTask moves a task to another column, optionally at a position. Moving
// never touches status.
func (s *TaskService) MoveTask(actor Actor, taskID uint64, targetColumn string, position *int) (*models.Task, error) {
	if !actor.IsManager {
		return nil, ErrManagerRequired
	}
	if position != nil && *position < 0 {
		return nil, ErrInvalidPosition
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := s.columnRepo.FindByName(task.ProjectID, targetColumn); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, fmt.Errorf("failed to find target column: %w", err)
	}

	fromColumn := task.Column
	task.Column = targetColumn
	if position != nil {
		task.Position = position
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}

	details := map[string]any{
		"from_column": fromColumn,
		"to_column":   targetColumn,
	}
	if position != nil {
		details["position"] = *position
	}
	s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionTaskMoved, details)

	if task.AssigneeID != nil && *task.AssigneeID != actor.UserID {
		s.notifier.Notify(*task.AssigneeID, Event{
			Type:      "task_moved",
			ProjectID: task.ProjectID,
			TaskID:    task.ID,
			Message:   fmt.Sprintf("Task moved from %s to %s", fromColumn, targetColumn),
		})
	}

	return task, nil
}

// ReorderTasksInColumn rewrites positions for the listed tasks so that
// position equals the index in orderedTaskIDs, all-or-nothing.
func (s *TaskService) ReorderTasksInColumn(actor Actor, projectID uint64, column string, orderedTaskIDs []uint64) error {
	if !actor.IsManager {
		return ErrManagerRequired
	}
	if len(orderedTaskIDs) == 0 {
		return ErrEmptyTaskReorder
	}

	if _, err := s.columnRepo.FindByName(projectID, column); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrColumnNotFound
		}
		return fmt.Errorf("failed to find column: %w", err)
	}

	if err := s.taskRepo.ReorderInColumn(projectID, column, orderedTaskIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to reorder tasks: %w", err)
	}

	s.recorder.RecordProject(projectID, actor.UserID, models.ActionTasksReordered, map[string]any{
		"column": column,
		"count":  len(orderedTaskIDs),
	})

	return nil
}

// DeleteTask removes a task. Dependency edges on other tasks that point at
// the deleted task are left in place; readers resolve them as absent.
func (s *TaskService) DeleteTask(actor Actor, taskID uint64) error {
	if !actor.IsManager {
		return ErrManagerRequired
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.recorder.RecordProject(task.ProjectID, actor.UserID, models.ActionTaskDeleted, map[string]any{
		"task_id": task.ID,
		"column":  task.Column,
	})

	return nil
}

// GetTask returns a task with related data.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "Assignee", "Subtasks", "Tags")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns a filtered page of a project's tasks.
func (s *TaskService) ListTasks(filter repository.TaskFilter) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTaskHistory returns the audit trail of a single task, newest first.
func (s *TaskService) GetTaskHistory(projectID, taskID uint64, limit, offset int) ([]models.HistoryEntry, int64, error) {
	entries, total, err := s.historyRepo.List(repository.HistoryFilter{
		ProjectID: projectID,
		TaskID:    &taskID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list task history: %w", err)
	}
	return entries, total, nil
}

// resolveColumn checks that the column exists for the project. Under the
// auto_create policy a missing column is invented with its conventional
// order instead; this is logged because it usually signals client drift.
func (s *TaskService) resolveColumn(actor Actor, projectID uint64, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrColumnNameRequired
	}

	_, err := s.columnRepo.FindByName(projectID, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to find column: %w", err)
	}

	if s.onMissingColumn != config.MissingColumnAutoCreate {
		return ErrColumnNotFound
	}

	order, ok := constants.DefaultColumnOrders[name]
	if !ok {
		order = constants.DefaultColumnOrder
	}

	column := &models.Column{
		ProjectID: projectID,
		Name:      name,
		Order:     order,
	}
	if err := s.columnRepo.Create(column); err != nil {
		return fmt.Errorf("failed to auto-create column: %w", err)
	}

	log.Printf("auto-created missing column %q (order %d) for project %d", name, order, projectID)

	s.recorder.RecordProject(projectID, actor.UserID, models.ActionColumnCreated, map[string]any{
		"column_id":    column.ID,
		"name":         column.Name,
		"order":        column.Order,
		"auto_created": true,
	})

	return nil
}

// validateAssignee checks that the assignee may be set by the actor.
// Managers may assign anyone who exists; plain members only fellow team
// members.
func (s *TaskService) validateAssignee(actor Actor, projectID, assigneeID uint64) error {
	if actor.IsManager {
		if _, err := s.userRepo.FindByID(assigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssigneeNotFound
			}
			return fmt.Errorf("failed to verify assignee: %w", err)
		}
		return nil
	}

	if _, err := s.projectRepo.FindMember(projectID, assigneeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotMember
		}
		return fmt.Errorf("failed to verify assignee membership: %w", err)
	}
	return nil
}

func validPriority(p models.TaskPriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}
