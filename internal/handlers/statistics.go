package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/minatogawa/project-board-api/internal/errors"
	"github.com/minatogawa/project-board-api/internal/middleware"
	"github.com/minatogawa/project-board-api/internal/services"
)

// StatisticsHandler coordinates read-only rollup HTTP handlers.
type StatisticsHandler struct {
	statisticsService *services.StatisticsService
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(statisticsService *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{
		statisticsService: statisticsService,
	}
}

// GetTaskStatistics returns the per-task rollup: time tracking, subtask
// progress and dependency counts.
func (h *StatisticsHandler) GetTaskStatistics(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	stats, err := h.statisticsService.TaskStatistics(task.ID)
	if err != nil {
		respondStatisticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetProjectStatistics returns the per-project rollup.
func (h *StatisticsHandler) GetProjectStatistics(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	stats, err := h.statisticsService.ProjectStatistics(project.ID)
	if err != nil {
		respondStatisticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetActivityStatistics returns the project's audit-trail rollup within the
// optional date_from/date_to bounds.
func (h *StatisticsHandler) GetActivityStatistics(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	from, err := parseDateQuery(c, "date_from")
	if err != nil {
		apierrors.BadRequest(c, "Invalid date_from")
		return
	}
	to, err := parseDateQuery(c, "date_to")
	if err != nil {
		apierrors.BadRequest(c, "Invalid date_to")
		return
	}

	stats, err := h.statisticsService.ActivityStatistics(project.ID, from, to)
	if err != nil {
		respondStatisticsError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func respondStatisticsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	default:
		apierrors.InternalError(c, "")
	}
}
