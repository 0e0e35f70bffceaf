package repository

import (
	"github.com/minatogawa/project-board-api/internal/models"
	"gorm.io/gorm"
)

// GormDependencyRepository is a GORM implementation of DependencyRepository
type GormDependencyRepository struct {
	db *gorm.DB
}

// NewDependencyRepository creates a new DependencyRepository
func NewDependencyRepository(db *gorm.DB) DependencyRepository {
	return &GormDependencyRepository{db: db}
}

// Create creates a new dependency edge
func (r *GormDependencyRepository) Create(dep *models.TaskDependency) error {
	return r.db.Create(dep).Error
}

// FindByID finds a dependency edge by ID
func (r *GormDependencyRepository) FindByID(id uint64) (*models.TaskDependency, error) {
	var dep models.TaskDependency
	if err := r.db.First(&dep, id).Error; err != nil {
		return nil, err
	}
	return &dep, nil
}

// ListByTask lists a task's outgoing edges
func (r *GormDependencyRepository) ListByTask(taskID uint64) ([]models.TaskDependency, error) {
	var deps []models.TaskDependency
	if err := r.db.Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&deps).Error; err != nil {
		return nil, err
	}
	return deps, nil
}

// ListOrderingEdgesByProject lists every blocks/blocked_by edge whose source
// task belongs to the project. The join keeps edges from soft-deleted tasks
// out of the traversal.
func (r *GormDependencyRepository) ListOrderingEdgesByProject(projectID uint64) ([]models.TaskDependency, error) {
	var deps []models.TaskDependency
	err := r.db.
		Joins("JOIN tasks ON tasks.id = task_dependencies.task_id").
		Where("tasks.project_id = ? AND tasks.deleted_at IS NULL", projectID).
		Where("task_dependencies.type IN ?", []models.DependencyType{
			models.DependencyBlocks,
			models.DependencyBlockedBy,
		}).
		Find(&deps).Error
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// Exists reports whether an identical edge is already present
func (r *GormDependencyRepository) Exists(taskID, dependentTaskID uint64, depType models.DependencyType) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskDependency{}).
		Where("task_id = ? AND dependent_task_id = ? AND type = ?", taskID, dependentTaskID, depType).
		Count(&count).Error
	return count > 0, err
}

// CountByTaskGrouped counts a task's outgoing edges per type
func (r *GormDependencyRepository) CountByTaskGrouped(taskID uint64) (map[models.DependencyType]int64, error) {
	var rows []struct {
		Type  models.DependencyType
		Count int64
	}
	err := r.db.Model(&models.TaskDependency{}).
		Select("type, COUNT(*) AS count").
		Where("task_id = ?", taskID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.DependencyType]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

// Delete removes a dependency edge
func (r *GormDependencyRepository) Delete(id uint64) error {
	return r.db.Delete(&models.TaskDependency{}, id).Error
}
