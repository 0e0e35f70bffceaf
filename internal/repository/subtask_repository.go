package repository

import (
	"github.com/minatogawa/project-board-api/internal/models"
	"gorm.io/gorm"
)

// GormSubtaskRepository is a GORM implementation of SubtaskRepository
type GormSubtaskRepository struct {
	db *gorm.DB
}

// NewSubtaskRepository creates a new SubtaskRepository
func NewSubtaskRepository(db *gorm.DB) SubtaskRepository {
	return &GormSubtaskRepository{db: db}
}

// Create creates a new subtask
func (r *GormSubtaskRepository) Create(subtask *models.Subtask) error {
	return r.db.Create(subtask).Error
}

// FindByID finds a subtask by ID
func (r *GormSubtaskRepository) FindByID(id uint64) (*models.Subtask, error) {
	var subtask models.Subtask
	if err := r.db.First(&subtask, id).Error; err != nil {
		return nil, err
	}
	return &subtask, nil
}

// ListByTask lists a task's subtasks in creation order
func (r *GormSubtaskRepository) ListByTask(taskID uint64) ([]models.Subtask, error) {
	var subtasks []models.Subtask
	if err := r.db.Where("task_id = ?", taskID).
		Order("id ASC").
		Preload("Assignee").
		Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}

// Update updates a subtask
func (r *GormSubtaskRepository) Update(subtask *models.Subtask) error {
	return r.db.Save(subtask).Error
}

// Delete removes a subtask
func (r *GormSubtaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Subtask{}, id).Error
}

// CountByTask returns total and completed subtask counts for a task
func (r *GormSubtaskRepository) CountByTask(taskID uint64) (int64, int64, error) {
	var total int64
	if err := r.db.Model(&models.Subtask{}).
		Where("task_id = ?", taskID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var completed int64
	if err := r.db.Model(&models.Subtask{}).
		Where("task_id = ? AND completed = ?", taskID, true).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}

	return total, completed, nil
}
