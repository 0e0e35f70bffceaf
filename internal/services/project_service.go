package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/minatogawa/project-board-api/internal/constants"
	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"github.com/minatogawa/project-board-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound            = errors.New("project not found")
	ErrInvalidProjectName         = errors.New("project name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrAlreadyProjectMember       = errors.New("user is already a member of this project")
	ErrCannotRemoveYourself       = errors.New("cannot remove yourself from the project")
	ErrProjectMemberNotFound      = errors.New("project member not found")
	ErrProjectNotEmpty            = errors.New("project still holds tasks")
)

// ProjectService provides business logic for projects and team membership.
// The board engine consumes membership facts; this service owns them.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	columnRepo  repository.ColumnRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, columnRepo repository.ColumnRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		columnRepo:  columnRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name      string
	CreatorID uint64
}

// CreateProject creates a project, makes the creator its manager, and seeds
// the conventional board columns.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	project := &models.Project{
		Name:       input.Name,
		InviteCode: inviteCode,
		CreatedBy:  input.CreatorID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    input.CreatorID,
		Role:      models.RoleManager,
		JoinedAt:  time.Now(),
	}
	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add project manager: %w", err)
	}

	if err := s.seedDefaultColumns(project.ID); err != nil {
		return nil, err
	}

	return project, nil
}

// seedDefaultColumns creates the conventional board lanes for a new project.
func (s *ProjectService) seedDefaultColumns(projectID uint64) error {
	names := make([]string, 0, len(constants.DefaultColumnOrders))
	for name := range constants.DefaultColumnOrders {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return constants.DefaultColumnOrders[names[i]] < constants.DefaultColumnOrders[names[j]]
	})

	for _, name := range names {
		column := &models.Column{
			ProjectID: projectID,
			Name:      name,
			Order:     constants.DefaultColumnOrders[name],
		}
		if err := s.columnRepo.Create(column); err != nil {
			return fmt.Errorf("failed to seed column %q: %w", name, err)
		}
	}
	return nil
}

// GetProject returns a project by ID.
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects lists the projects a user is a member of.
func (s *ProjectService) ListProjects(userID uint64) ([]models.ProjectMember, error) {
	memberships, err := s.projectRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

// UpdateProject renames a project.
func (s *ProjectService) UpdateProject(actor Actor, projectID uint64, name string) (*models.Project, error) {
	if !actor.IsManager {
		return nil, ErrManagerRequired
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidProjectName
	}

	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	project.Name = name
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// DeleteProject removes a project that holds no tasks.
func (s *ProjectService) DeleteProject(actor Actor, projectID uint64) error {
	if !actor.IsManager {
		return ErrManagerRequired
	}

	if _, err := s.GetProject(projectID); err != nil {
		return err
	}

	count, err := s.projectRepo.CountTasks(projectID)
	if err != nil {
		return fmt.Errorf("failed to count project tasks: %w", err)
	}
	if count > 0 {
		return ErrProjectNotEmpty
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// JoinProject adds the user to the project matching the invite code, as a
// plain member.
func (s *ProjectService) JoinProject(userID uint64, inviteCode string) (*models.Project, error) {
	project, err := s.projectRepo.FindByInviteCode(inviteCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if _, err := s.projectRepo.FindMember(project.ID, userID); err == nil {
		return nil, ErrAlreadyProjectMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
		Role:      models.RoleMember,
		JoinedAt:  time.Now(),
	}
	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return project, nil
}

// RemoveMember removes a member from the project team.
func (s *ProjectService) RemoveMember(actor Actor, projectID, userID uint64) error {
	if !actor.IsManager {
		return ErrManagerRequired
	}
	if actor.UserID == userID {
		return ErrCannotRemoveYourself
	}

	if _, err := s.projectRepo.FindMember(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	if err := s.projectRepo.RemoveMember(projectID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// ListMembers lists the project team. Callers use this to validate
// assignees and to render member pickers.
func (s *ProjectService) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RegenerateInviteCode rotates a project's invite code.
func (s *ProjectService) RegenerateInviteCode(actor Actor, projectID uint64) (*models.Project, error) {
	if !actor.IsManager {
		return nil, ErrManagerRequired
	}

	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	project.InviteCode = inviteCode
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}
