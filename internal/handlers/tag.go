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

// TagHandler coordinates task-tag HTTP handlers.
type TagHandler struct {
	tagService *services.TagService
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{
		tagService: tagService,
	}
}

// AddTag attaches a tag to the task. Duplicate names on the same task are
// rejected.
func (h *TagHandler) AddTag(c *gin.Context) {
	type AddTagRequest struct {
		Name  string `json:"name" binding:"required,min=1,max=100"`
		Color string `json:"color" binding:"max=20"`
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

	var req AddTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag, err := h.tagService.AddTag(actor, task.ID, req.Name, req.Color)
	if err != nil {
		respondTagError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}

// ListTags returns the task's tags.
func (h *TagHandler) ListTags(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not loaded")
		return
	}

	tags, err := h.tagService.ListTags(task.ID)
	if err != nil {
		respondTagError(c, err)
		return
	}

	tagDTOs := make([]dto.TagDTO, len(tags))
	for i, tag := range tags {
		tagDTOs[i] = dto.ToTagDTO(tag)
	}

	c.JSON(http.StatusOK, gin.H{"tags": tagDTOs})
}

// RemoveTag detaches a tag from its task. Manager only.
func (h *TagHandler) RemoveTag(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	tagID, err := strconv.ParseUint(c.Param("tag_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid tag ID")
		return
	}

	if err := h.tagService.RemoveTag(actor, tagID); err != nil {
		respondTagError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag removed successfully"})
}

func respondTagError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrManagerRequired):
		apierrors.Forbidden(c, "Manager capability required")
	case errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, "You are not a member of this project")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTagNotFound):
		apierrors.NotFound(c, "Tag not found")
	case errors.Is(err, services.ErrTagNameRequired):
		apierrors.BadRequest(c, "Tag name is required")
	case errors.Is(err, services.ErrDuplicateTag):
		apierrors.Conflict(c, "Task already carries a tag with this name")
	default:
		apierrors.InternalError(c, "")
	}
}
