package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/minatogawa/project-board-api/internal/constants"
	"github.com/minatogawa/project-board-api/internal/dto"
	apierrors "github.com/minatogawa/project-board-api/internal/errors"
	"github.com/minatogawa/project-board-api/internal/middleware"
	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/services"
)

// ProjectHandler coordinates project-related HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project with the caller as its manager.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name string `json:"name" binding:"required,min=1,max=255"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:      req.Name,
		CreatorID: userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project, true))
}

// ListProjects returns the caller's projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	memberships, err := h.projectService.ListProjects(userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	projects := make([]dto.ProjectDTO, 0, len(memberships))
	for _, membership := range memberships {
		projects = append(projects, dto.ToProjectDTO(
			membership.Project,
			membership.Role == models.RoleManager,
		))
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject returns the project loaded by RequireProjectAccess.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	isManager := c.GetBool(constants.ContextKeyIsManager)
	c.JSON(http.StatusOK, dto.ToProjectDTO(project, isManager))
}

// UpdateProject renames a project. Manager only.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	type UpdateProjectRequest struct {
		Name string `json:"name" binding:"required,min=1,max=255"`
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

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.projectService.UpdateProject(actor, project.ID, req.Name)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated, actor.IsManager))
}

// DeleteProject removes an empty project. Manager only.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
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

	if err := h.projectService.DeleteProject(actor, project.ID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// JoinProject adds the caller to the project matching the invite code.
func (h *ProjectHandler) JoinProject(c *gin.Context) {
	type JoinProjectRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req JoinProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.JoinProject(userID, req.InviteCode)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project, false))
}

// ListMembers returns the project's membership list.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	members, err := h.projectService.ListMembers(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	memberDTOs := make([]dto.MemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToMemberDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{"members": memberDTOs})
}

// RemoveMember removes a member from the project. Manager only.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
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

	memberID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.projectService.RemoveMember(actor, project.ID, memberID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

// RegenerateInviteCode replaces the project's invite code. Manager only.
func (h *ProjectHandler) RegenerateInviteCode(c *gin.Context) {
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

	updated, err := h.projectService.RegenerateInviteCode(actor, project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated, true))
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrManagerRequired):
		apierrors.Forbidden(c, "Manager capability required")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrInvalidProjectName):
		apierrors.BadRequest(c, "Project name cannot be empty")
	case errors.Is(err, services.ErrInvalidInviteCode):
		apierrors.NotFound(c, "Invalid invite code")
	case errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.Conflict(c, "You are already a member of this project")
	case errors.Is(err, services.ErrCannotRemoveYourself):
		apierrors.BadRequest(c, "You cannot remove yourself from the project")
	case errors.Is(err, services.ErrProjectMemberNotFound):
		apierrors.NotFound(c, "Project member not found")
	case errors.Is(err, services.ErrProjectNotEmpty):
		apierrors.Conflict(c, "Project still holds tasks")
	default:
		apierrors.InternalError(c, "")
	}
}
