package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minatogawa/project-board-api/internal/dto"
	apierrors "github.com/minatogawa/project-board-api/internal/errors"
	"github.com/minatogawa/project-board-api/internal/middleware"
	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"github.com/minatogawa/project-board-api/internal/services"
	"github.com/minatogawa/project-board-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
	aiService   *services.AIService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, aiService *services.AIService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		aiService:   aiService,
	}
}

// ListTasks returns a project's tasks, filtered and cursor-paginated.
// Supported filters: column, status, assignee_id, created_by, due_date_from,
// due_date_to and q (free-text search over task text).
func (h *TaskHandler) ListTasks(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		ProjectID: project.ID,
		Search:    c.Query("q"),
		Limit:     params.Limit,
		Offset:    params.Offset,
	}

	if column := c.Query("column"); column != "" {
		filter.Column = &column
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if assigneeStr := c.Query("assignee_id"); assigneeStr != "" {
		assigneeID, err := strconv.ParseUint(assigneeStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee_id")
			return
		}
		filter.AssigneeID = &assigneeID
	}
	if creatorStr := c.Query("created_by"); creatorStr != "" {
		creatorID, err := strconv.ParseUint(creatorStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid created_by")
			return
		}
		filter.CreatedBy = &creatorID
	}

	var err error
	if filter.DueDateFrom, err = parseDateQuery(c, "due_date_from"); err != nil {
		apierrors.BadRequest(c, "Invalid due_date_from")
		return
	}
	if filter.DueDateTo, err = parseDateQuery(c, "due_date_to"); err != nil {
		apierrors.BadRequest(c, "Invalid due_date_to")
		return
	}

	tasks, total, err := h.taskService.ListTasks(filter)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// CreateTask creates a task on the project board.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Column     string              `json:"column" binding:"required,min=1,max=100"`
		Text       string              `json:"text" binding:"required"`
		Status     string              `json:"status"`
		Priority   models.TaskPriority `json:"priority"`
		AssigneeID *uint64             `json:"assignee_id"`
		Position   *int                `json:"position"`
		DueDate    *time.Time          `json:"due_date"`
	}

	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(actor, services.CreateTaskInput{
		ProjectID:  project.ID,
		Column:     req.Column,
		Text:       req.Text,
		Status:     req.Status,
		Priority:   req.Priority,
		AssigneeID: req.AssigneeID,
		Position:   req.Position,
		DueDate:    req.DueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns the task loaded by RequireTaskAccess, with relations.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	full, err := h.taskService.GetTask(task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*full))
}

// UpdateTask applies a partial update to a task. Managers may change any
// field; a plain member may only change status on tasks assigned to them.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	type UpdateTaskRequest struct {
		Text          *string              `json:"text"`
		Status        *string              `json:"status"`
		Priority      *models.TaskPriority `json:"priority"`
		Column        *string              `json:"column"`
		AssigneeID    *uint64              `json:"assignee_id"`
		ClearAssignee bool                 `json:"clear_assignee"`
		Position      *int                 `json:"position"`
		DueDate       *time.Time           `json:"due_date"`
		ClearDueDate  bool                 `json:"clear_due_date"`
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(actor, task.ID, services.UpdateTaskInput{
		Text:          req.Text,
		Status:        req.Status,
		Priority:      req.Priority,
		Column:        req.Column,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
		Position:      req.Position,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// MoveTask places a task in another column without touching its status.
// Manager only; the target column must already exist.
func (h *TaskHandler) MoveTask(c *gin.Context) {
	type MoveTaskRequest struct {
		Column   string `json:"column" binding:"required,min=1,max=100"`
		Position *int   `json:"position"`
	}

	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	moved, err := h.taskService.MoveTask(actor, task.ID, req.Column, req.Position)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*moved))
}

// ReorderTasks rewrites task positions within one column, all-or-nothing.
// Manager only.
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	type ReorderTasksRequest struct {
		Column  string   `json:"column" binding:"required,min=1,max=100"`
		TaskIDs []uint64 `json:"task_ids" binding:"required"`
	}

	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var req ReorderTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.taskService.ReorderTasksInColumn(actor, project.ID, req.Column, req.TaskIDs); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tasks reordered successfully"})
}

// DeleteTask removes a task with its subtasks, tags, ledgers and outgoing
// dependency edges. Manager only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.taskService.DeleteTask(actor, task.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// GetTaskHistory returns a task's audit trail, newest first.
func (h *TaskHandler) GetTaskHistory(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, err := h.taskService.GetTaskHistory(task.ProjectID, task.ID, params.Limit, params.Offset)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToHistoryListResponse(entries, params, total))
}

// SuggestSubtasks asks the AI service for a subtask breakdown of the task.
// Suggestions are returned to the caller, never persisted.
func (h *TaskHandler) SuggestSubtasks(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	if h.aiService == nil {
		apierrors.ServiceUnavailable(c, "AI suggestions are not configured")
		return
	}

	suggestions, err := h.aiService.SuggestSubtasks(c.Request.Context(), task.Text)
	if err != nil {
		apierrors.ServiceUnavailable(c, "Failed to generate suggestions")
		return
	}

	c.JSON(http.StatusOK, dto.SuggestedSubtasksResponse{Suggestions: suggestions})
}

// parseDateQuery reads an optional date query parameter, accepting either a
// calendar date or a full RFC 3339 timestamp.
func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	value := c.Query(name)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrManagerRequired):
		apierrors.Forbidden(c, "Manager capability required")
	case errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, "You are not a member of this project")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, "You do not have permission to modify this task")
	case errors.Is(err, services.ErrTaskTextRequired):
		apierrors.BadRequest(c, "Task text is required")
	case errors.Is(err, services.ErrInvalidPriority):
		apierrors.BadRequest(c, "Unknown task priority")
	case errors.Is(err, services.ErrColumnNotFound):
		apierrors.BadRequest(c, "Column does not exist for this project")
	case errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.BadRequest(c, "Assignee is not a member of the project team")
	case errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.BadRequest(c, "Assignee does not exist")
	case errors.Is(err, services.ErrEmptyTaskReorder):
		apierrors.BadRequest(c, "At least one task id is required")
	case errors.Is(err, services.ErrInvalidPosition):
		apierrors.BadRequest(c, "Position must be zero or positive")
	default:
		apierrors.InternalError(c, "")
	}
}
