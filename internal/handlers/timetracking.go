package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minatogawa/project-board-api/internal/dto"
	apierrors "github.com/minatogawa/project-board-api/internal/errors"
	"github.com/minatogawa/project-board-api/internal/middleware"
	"github.com/minatogawa/project-board-api/internal/repository"
	"github.com/minatogawa/project-board-api/internal/services"
	"github.com/minatogawa/project-board-api/internal/utils"
)

// TimeTrackingHandler coordinates estimate and time-entry HTTP handlers.
type TimeTrackingHandler struct {
	timeService *services.TimeService
}

// NewTimeTrackingHandler creates a new TimeTrackingHandler.
func NewTimeTrackingHandler(timeService *services.TimeService) *TimeTrackingHandler {
	return &TimeTrackingHandler{
		timeService: timeService,
	}
}

// AddEstimate appends an estimate revision to the task's ledger. The task's
// denormalized estimated hours follow the latest revision.
func (h *TimeTrackingHandler) AddEstimate(c *gin.Context) {
	type AddEstimateRequest struct {
		EstimatedHours float64 `json:"estimated_hours" binding:"required"`
		Description    string  `json:"description"`
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

	var req AddEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	estimate, err := h.timeService.AddEstimate(actor, services.AddEstimateInput{
		TaskID:         task.ID,
		EstimatedHours: req.EstimatedHours,
		Description:    req.Description,
	})
	if err != nil {
		respondTimeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEstimateDTO(*estimate))
}

// ListEstimates returns the task's estimate revisions, newest first.
func (h *TimeTrackingHandler) ListEstimates(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	estimates, err := h.timeService.ListEstimates(task.ID)
	if err != nil {
		respondTimeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"estimates": dto.ToEstimateDTOs(estimates)})
}

// AddTimeEntry logs hours against the task. The response carries the task's
// recomputed running total.
func (h *TimeTrackingHandler) AddTimeEntry(c *gin.Context) {
	type AddTimeEntryRequest struct {
		Hours       float64    `json:"hours" binding:"required"`
		Description string     `json:"description"`
		Date        *time.Time `json:"date"`
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

	var req AddTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, total, err := h.timeService.AddTimeEntry(actor, services.AddTimeEntryInput{
		TaskID:      task.ID,
		Hours:       req.Hours,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		respondTimeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TimeEntryCreatedResponse{
		Entry:           dto.ToTimeEntryDTO(*entry),
		TotalHoursSpent: total,
	})
}

// ListTimeEntries returns the task's logged time, optionally bounded by
// date_from and date_to (inclusive), cursor-paginated.
func (h *TimeTrackingHandler) ListTimeEntries(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TimeEntryFilter{
		TaskID: task.ID,
		Limit:  params.Limit,
		Offset: params.Offset,
	}

	var err error
	if filter.DateFrom, err = parseDateQuery(c, "date_from"); err != nil {
		apierrors.BadRequest(c, "Invalid date_from")
		return
	}
	if filter.DateTo, err = parseDateQuery(c, "date_to"); err != nil {
		apierrors.BadRequest(c, "Invalid date_to")
		return
	}

	entries, total, err := h.timeService.ListTimeEntries(filter)
	if err != nil {
		respondTimeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": dto.ToTimeEntryDTOs(entries),
		"pagination": utils.PaginationResponse{
			Limit:      params.Limit,
			Total:      total,
			NextCursor: utils.NextCursor(params, total),
		},
	})
}

func respondTimeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, "You are not a member of this project")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrNegativeHours):
		apierrors.BadRequest(c, "Hours must be zero or positive")
	default:
		apierrors.InternalError(c, "")
	}
}
