package repository

import (
	"github.com/minatogawa/project-board-api/internal/models"
	"gorm.io/gorm"
)

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

// Create creates a new tag
func (r *GormTagRepository) Create(tag *models.TaskTag) error {
	return r.db.Create(tag).Error
}

// FindByID finds a tag by ID
func (r *GormTagRepository) FindByID(id uint64) (*models.TaskTag, error) {
	var tag models.TaskTag
	if err := r.db.First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListByTask lists a task's tags
func (r *GormTagRepository) ListByTask(taskID uint64) ([]models.TaskTag, error) {
	var tags []models.TaskTag
	if err := r.db.Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ExistsByName reports whether the task already carries a tag with the given name
func (r *GormTagRepository) ExistsByName(taskID uint64, name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskTag{}).
		Where("task_id = ? AND name = ?", taskID, name).
		Count(&count).Error
	return count > 0, err
}

// Delete removes a tag
func (r *GormTagRepository) Delete(id uint64) error {
	return r.db.Delete(&models.TaskTag{}, id).Error
}
