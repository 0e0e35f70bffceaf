package dto

import (
	"time"

	"github.com/minatogawa/project-board-api/internal/models"
)

// ProjectDTO represents a project in API responses. InviteCode is only
// populated for managers.
type ProjectDTO struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code,omitempty"`
	CreatedBy  uint64    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// MemberDTO represents a project member in API responses
type MemberDTO struct {
	UserID   uint64             `json:"user_id"`
	Role     models.ProjectRole `json:"role"`
	JoinedAt time.Time          `json:"joined_at"`
	User     *UserDTO           `json:"user,omitempty"`
}

// ColumnDTO represents a board column in API responses
type ColumnDTO struct {
	ID        uint64    `json:"id"`
	ProjectID uint64    `json:"project_id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project, includeInviteCode bool) ProjectDTO {
	dto := ProjectDTO{
		ID:        project.ID,
		Name:      project.Name,
		CreatedBy: project.CreatedBy,
		CreatedAt: project.CreatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = project.InviteCode
	}
	return dto
}

// ToMemberDTO converts a ProjectMember model to MemberDTO
func ToMemberDTO(member models.ProjectMember) MemberDTO {
	dto := MemberDTO{
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}
	return dto
}

// ToColumnDTO converts a Column model to ColumnDTO
func ToColumnDTO(column models.Column) ColumnDTO {
	return ColumnDTO{
		ID:        column.ID,
		ProjectID: column.ProjectID,
		Name:      column.Name,
		Order:     column.Order,
		CreatedAt: column.CreatedAt,
	}
}

// ToColumnDTOs converts a slice of Column models
func ToColumnDTOs(columns []models.Column) []ColumnDTO {
	dtos := make([]ColumnDTO, len(columns))
	for i, column := range columns {
		dtos[i] = ToColumnDTO(column)
	}
	return dtos
}
