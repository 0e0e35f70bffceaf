package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/minatogawa/project-board-api/internal/dto"
	apierrors "github.com/minatogawa/project-board-api/internal/errors"
	"github.com/minatogawa/project-board-api/internal/middleware"
	"github.com/minatogawa/project-board-api/internal/services"
)

// ColumnHandler coordinates board-column HTTP handlers.
type ColumnHandler struct {
	columnService *services.ColumnService
}

// NewColumnHandler creates a new ColumnHandler.
func NewColumnHandler(columnService *services.ColumnService) *ColumnHandler {
	return &ColumnHandler{
		columnService: columnService,
	}
}

// ListColumns returns the project's columns ordered for rendering.
func (h *ColumnHandler) ListColumns(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	columns, err := h.columnService.ListColumns(project.ID)
	if err != nil {
		respondColumnError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": dto.ToColumnDTOs(columns)})
}

// CreateColumn adds a column to the board. Manager only.
func (h *ColumnHandler) CreateColumn(c *gin.Context) {
	type CreateColumnRequest struct {
		Name  string `json:"name" binding:"required,min=1,max=100"`
		Order *int   `json:"order"`
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

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	column, err := h.columnService.CreateColumn(actor, services.CreateColumnInput{
		ProjectID: project.ID,
		Name:      req.Name,
		Order:     req.Order,
	})
	if err != nil {
		respondColumnError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToColumnDTO(*column))
}

// DeleteColumn removes a column that no task references. Manager only.
func (h *ColumnHandler) DeleteColumn(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	columnID, err := strconv.ParseUint(c.Param("column_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid column ID")
		return
	}

	if err := h.columnService.DeleteColumn(actor, columnID); err != nil {
		respondColumnError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Column deleted successfully"})
}

// ReorderColumns rewrites the board's column positions, all-or-nothing.
// Manager only.
func (h *ColumnHandler) ReorderColumns(c *gin.Context) {
	type ColumnOrderRequest struct {
		ColumnID uint64 `json:"column_id" binding:"required"`
		Order    int    `json:"order"`
	}
	type ReorderColumnsRequest struct {
		Columns []ColumnOrderRequest `json:"columns" binding:"required"`
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

	var req ReorderColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	orders := make([]services.ColumnOrderInput, len(req.Columns))
	for i, col := range req.Columns {
		orders[i] = services.ColumnOrderInput{
			ColumnID: col.ColumnID,
			Order:    col.Order,
		}
	}

	if err := h.columnService.ReorderColumns(actor, project.ID, orders); err != nil {
		respondColumnError(c, err)
		return
	}

	columns, err := h.columnService.ListColumns(project.ID)
	if err != nil {
		respondColumnError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": dto.ToColumnDTOs(columns)})
}

func respondColumnError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrManagerRequired):
		apierrors.Forbidden(c, "Manager capability required")
	case errors.Is(err, services.ErrColumnNotFound):
		apierrors.NotFound(c, "Column not found")
	case errors.Is(err, services.ErrColumnNameRequired):
		apierrors.BadRequest(c, "Column name is required")
	case errors.Is(err, services.ErrColumnNotEmpty):
		apierrors.Conflict(c, "Column still holds tasks")
	case errors.Is(err, services.ErrInvalidColumnOrder):
		apierrors.BadRequest(c, "Column order must be zero or positive")
	case errors.Is(err, services.ErrEmptyReorder):
		apierrors.BadRequest(c, "At least one column position is required")
	default:
		apierrors.InternalError(c, "")
	}
}
