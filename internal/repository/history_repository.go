package repository

import (
	"time"

	"github.com/minatogawa/project-board-api/internal/models"
	"gorm.io/gorm"
)

// GormHistoryRepository is a GORM implementation of HistoryRepository
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append records a history entry; entries are never updated or deleted
func (r *GormHistoryRepository) Append(entry *models.HistoryEntry) error {
	return r.db.Create(entry).Error
}

// List retrieves history entries with filtering, newest first
func (r *GormHistoryRepository) List(filter HistoryFilter) ([]models.HistoryEntry, int64, error) {
	var entries []models.HistoryEntry

	query := r.db.Model(&models.HistoryEntry{}).Where("project_id = ?", filter.ProjectID)

	if filter.TaskID != nil {
		query = query.Where("task_id = ?", *filter.TaskID)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("id DESC")
	if filter.Limit > 0 {
		listQuery = listQuery.Offset(filter.Offset).Limit(filter.Limit)
	}

	if err := listQuery.Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListAllByProject returns every history entry for a project within the
// optional date bounds
func (r *GormHistoryRepository) ListAllByProject(projectID uint64, from, to *time.Time) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry

	query := r.db.Where("project_id = ?", projectID)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
