package repository

import (
	"github.com/minatogawa/project-board-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.project_id = ?", filter.ProjectID)

	if filter.Column != nil {
		query = query.Where("tasks.board_column = ?", *filter.Column)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("tasks.created_by = ?", *filter.CreatedBy)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date <= ?", *filter.DueDateTo)
	}
	if filter.Search != "" {
		query = query.Where("tasks.text LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("CASE WHEN tasks.position IS NULL THEN 1 ELSE 0 END, tasks.position ASC, tasks.id ASC")

	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := listQuery.Preload("Creator").Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListAllByProject returns every task in a project, unpaginated
func (r *GormTaskRepository) ListAllByProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// ReorderInColumn rewrites task positions within a column in a single
// transaction; position equals the index in orderedTaskIDs
func (r *GormTaskRepository) ReorderInColumn(projectID uint64, column string, orderedTaskIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, taskID := range orderedTaskIDs {
			result := tx.Model(&models.Task{}).
				Where("id = ? AND project_id = ? AND board_column = ?", taskID, projectID, column).
				Update("position", i)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// Delete removes a task together with its owned records and outgoing
// dependency edges. Edges from other tasks pointing here are not touched;
// readers resolve them as absent.
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Estimate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TimeEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskDependency{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// CountInColumn counts tasks referencing a column name in a project
func (r *GormTaskRepository) CountInColumn(projectID uint64, column string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("project_id = ? AND board_column = ?", projectID, column).
		Count(&count).Error
	return count, err
}
