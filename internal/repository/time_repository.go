package repository

import (
	"github.com/minatogawa/project-board-api/internal/models"
	"gorm.io/gorm"
)

// GormTimeRepository is a GORM implementation of TimeRepository
type GormTimeRepository struct {
	db *gorm.DB
}

// NewTimeRepository creates a new TimeRepository
func NewTimeRepository(db *gorm.DB) TimeRepository {
	return &GormTimeRepository{db: db}
}

// CreateEstimate appends an estimate revision and overwrites the task's
// denormalized estimated hours in the same transaction
func (r *GormTimeRepository) CreateEstimate(estimate *models.Estimate) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(estimate).Error; err != nil {
			return err
		}

		return tx.Model(&models.Task{}).
			Where("id = ?", estimate.TaskID).
			Update("estimated_hours", estimate.EstimatedHours).Error
	})
}

// ListEstimates lists a task's estimate revisions, newest first
func (r *GormTimeRepository) ListEstimates(taskID uint64) ([]models.Estimate, error) {
	var estimates []models.Estimate
	if err := r.db.Where("task_id = ?", taskID).
		Order("id DESC").
		Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// CreateEntry appends a time entry, then recomputes the task's total hours
// as the sum over all entries rather than an incremental add. The re-scan
// keeps the denormalized field consistent even after a partially applied
// earlier write.
func (r *GormTimeRepository) CreateEntry(entry *models.TimeEntry) (float64, error) {
	var total float64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		var result struct {
			Total float64
		}
		if err := tx.Model(&models.TimeEntry{}).
			Select("COALESCE(SUM(hours), 0) AS total").
			Where("task_id = ?", entry.TaskID).
			Scan(&result).Error; err != nil {
			return err
		}
		total = result.Total

		return tx.Model(&models.Task{}).
			Where("id = ?", entry.TaskID).
			Update("total_hours_spent", total).Error
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListEntries retrieves time entries with filtering and pagination
func (r *GormTimeRepository) ListEntries(filter TimeEntryFilter) ([]models.TimeEntry, int64, error) {
	var entries []models.TimeEntry

	query := r.db.Model(&models.TimeEntry{}).Where("task_id = ?", filter.TaskID)

	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("date DESC, id DESC")
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := listQuery.Preload("Creator").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListEntriesByTask returns every time entry for a task, unpaginated
func (r *GormTimeRepository) ListEntriesByTask(taskID uint64) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	if err := r.db.Where("task_id = ?", taskID).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
