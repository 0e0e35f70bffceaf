package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/minatogawa/project-board-api/internal/dto"
	apierrors "github.com/minatogawa/project-board-api/internal/errors"
	"github.com/minatogawa/project-board-api/internal/middleware"
	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/services"
)

// DependencyHandler coordinates dependency-graph HTTP handlers.
type DependencyHandler struct {
	dependencyService *services.DependencyService
}

// NewDependencyHandler creates a new DependencyHandler.
func NewDependencyHandler(dependencyService *services.DependencyService) *DependencyHandler {
	return &DependencyHandler{
		dependencyService: dependencyService,
	}
}

// AddDependency adds a directed edge from the task in the URL to another
// task of the same project. Manager only; blocks/blocked_by edges that
// would close a cycle are rejected.
func (h *DependencyHandler) AddDependency(c *gin.Context) {
	type AddDependencyRequest struct {
		DependentTaskID uint64                `json:"dependent_task_id" binding:"required"`
		Type            models.DependencyType `json:"type" binding:"required"`
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

	var req AddDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dep, err := h.dependencyService.AddDependency(actor, services.AddDependencyInput{
		TaskID:          task.ID,
		DependentTaskID: req.DependentTaskID,
		Type:            req.Type,
	})
	if err != nil {
		respondDependencyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dep)
}

// ListDependencies returns the task's outgoing edges with resolved target
// snapshots. Edges whose target is gone are omitted.
func (h *DependencyHandler) ListDependencies(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	deps, err := h.dependencyService.ListDependencies(task.ID)
	if err != nil {
		respondDependencyError(c, err)
		return
	}

	depDTOs := make([]dto.DependencyDTO, len(deps))
	for i, dep := range deps {
		depDTOs[i] = dto.ToDependencyDTO(dep)
	}

	c.JSON(http.StatusOK, gin.H{"dependencies": depDTOs})
}

// DeleteDependency removes an edge. Manager only.
func (h *DependencyHandler) DeleteDependency(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	dependencyID, err := strconv.ParseUint(c.Param("dependency_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid dependency ID")
		return
	}

	if err := h.dependencyService.DeleteDependency(actor, dependencyID); err != nil {
		respondDependencyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dependency deleted successfully"})
}

func respondDependencyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrManagerRequired):
		apierrors.Forbidden(c, "Manager capability required")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrDependentTaskNotFound):
		apierrors.NotFound(c, "Dependent task not found")
	case errors.Is(err, services.ErrDependencyNotFound):
		apierrors.NotFound(c, "Dependency not found")
	case errors.Is(err, services.ErrInvalidDependencyType):
		apierrors.BadRequest(c, "Unknown dependency type")
	case errors.Is(err, services.ErrSelfDependency):
		apierrors.BadRequest(c, "A task cannot depend on itself")
	case errors.Is(err, services.ErrCrossProjectDependency):
		apierrors.BadRequest(c, "Both tasks must belong to the same project")
	case errors.Is(err, services.ErrDuplicateDependency):
		apierrors.Conflict(c, "An identical dependency already exists")
	case errors.Is(err, services.ErrDependencyCycle):
		apierrors.CycleDetected(c, "Dependency would create a cycle")
	default:
		apierrors.InternalError(c, "")
	}
}
