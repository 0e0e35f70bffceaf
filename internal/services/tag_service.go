package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTagNotFound     = errors.New("tag not found")
	ErrTagNameRequired = errors.New("tag name is required")
	ErrDuplicateTag    = errors.New("task already carries a tag with this name")
)

// TagService manages task tags.
type TagService struct {
	tagRepo  repository.TagRepository
	taskRepo repository.TaskRepository
	recorder *HistoryRecorder
}

// NewTagService creates a new TagService
func NewTagService(tagRepo repository.TagRepository, taskRepo repository.TaskRepository, recorder *HistoryRecorder) *TagService {
	return &TagService{
		tagRepo:  tagRepo,
		taskRepo: taskRepo,
		recorder: recorder,
	}
}

// AddTag attaches a tag to a task. Tag names are unique per task.
func (s *TagService) AddTag(actor Actor, taskID uint64, name, color string) (*models.TaskTag, error) {
	if !actor.IsMember {
		return nil, ErrNotProjectMember
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTagNameRequired
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	exists, err := s.tagRepo.ExistsByName(taskID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate tag: %w", err)
	}
	if exists {
		return nil, ErrDuplicateTag
	}

	tag := &models.TaskTag{
		TaskID:    taskID,
		Name:      name,
		Color:     color,
		CreatedBy: actor.UserID,
	}

	if err := s.tagRepo.Create(tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionTagAdded, map[string]any{
		"tag_id": tag.ID,
		"name":   tag.Name,
	})

	return tag, nil
}

// RemoveTag detaches a tag from its task.
func (s *TagService) RemoveTag(actor Actor, tagID uint64) error {
	if !actor.IsManager {
		return ErrManagerRequired
	}

	tag, err := s.tagRepo.FindByID(tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("failed to find tag: %w", err)
	}

	task, err := s.taskRepo.FindByID(tag.TaskID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.tagRepo.Delete(tagID); err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	if task != nil {
		s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionTagDeleted, map[string]any{
			"tag_id": tag.ID,
			"name":   tag.Name,
		})
	}

	return nil
}

// ListTags lists a task's tags.
func (s *TagService) ListTags(taskID uint64) ([]models.TaskTag, error) {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	tags, err := s.tagRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}
