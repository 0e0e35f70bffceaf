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
	"github.com/minatogawa/project-board-api/internal/services"
)

// SubtaskHandler coordinates subtask HTTP handlers.
type SubtaskHandler struct {
	subtaskService *services.SubtaskService
}

// NewSubtaskHandler creates a new SubtaskHandler.
func NewSubtaskHandler(subtaskService *services.SubtaskService) *SubtaskHandler {
	return &SubtaskHandler{
		subtaskService: subtaskService,
	}
}

// AddSubtask appends a checklist item to the task.
func (h *SubtaskHandler) AddSubtask(c *gin.Context) {
	type AddSubtaskRequest struct {
		Text       string     `json:"text" binding:"required"`
		AssigneeID *uint64    `json:"assignee_id"`
		DueDate    *time.Time `json:"due_date"`
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

	var req AddSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subtask, err := h.subtaskService.AddSubtask(actor, services.AddSubtaskInput{
		TaskID:     task.ID,
		Text:       req.Text,
		AssigneeID: req.AssigneeID,
		DueDate:    req.DueDate,
	})
	if err != nil {
		respondSubtaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubtaskDTO(*subtask))
}

// ListSubtasks returns the task's checklist.
func (h *SubtaskHandler) ListSubtasks(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	subtasks, err := h.subtaskService.ListSubtasks(task.ID)
	if err != nil {
		respondSubtaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subtasks": dto.ToSubtaskDTOs(subtasks)})
}

// UpdateSubtask updates a checklist item, including toggling completion.
func (h *SubtaskHandler) UpdateSubtask(c *gin.Context) {
	type UpdateSubtaskRequest struct {
		Text         *string    `json:"text"`
		AssigneeID   *uint64    `json:"assignee_id"`
		DueDate      *time.Time `json:"due_date"`
		ClearDueDate bool       `json:"clear_due_date"`
		Completed    *bool      `json:"completed"`
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	subtaskID, err := strconv.ParseUint(c.Param("subtask_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid subtask ID")
		return
	}

	var req UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subtask, err := h.subtaskService.UpdateSubtask(actor, subtaskID, services.UpdateSubtaskInput{
		Text:         req.Text,
		AssigneeID:   req.AssigneeID,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		Completed:    req.Completed,
	})
	if err != nil {
		respondSubtaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubtaskDTO(*subtask))
}

// DeleteSubtask removes a checklist item. Manager only.
func (h *SubtaskHandler) DeleteSubtask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	subtaskID, err := strconv.ParseUint(c.Param("subtask_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid subtask ID")
		return
	}

	if err := h.subtaskService.DeleteSubtask(actor, subtaskID); err != nil {
		respondSubtaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted successfully"})
}

func respondSubtaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrManagerRequired):
		apierrors.Forbidden(c, "Manager capability required")
	case errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, "You are not a member of this project")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrSubtaskNotFound):
		apierrors.NotFound(c, "Subtask not found")
	case errors.Is(err, services.ErrSubtaskTextRequired):
		apierrors.BadRequest(c, "Subtask text is required")
	default:
		apierrors.InternalError(c, "")
	}
}
