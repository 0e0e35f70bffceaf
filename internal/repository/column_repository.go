package repository

import (
	"github.com/minatogawa/project-board-api/internal/models"
	"gorm.io/gorm"
)

// GormColumnRepository is a GORM implementation of ColumnRepository
type GormColumnRepository struct {
	db *gorm.DB
}

// NewColumnRepository creates a new ColumnRepository
func NewColumnRepository(db *gorm.DB) ColumnRepository {
	return &GormColumnRepository{db: db}
}

// Create creates a new column
func (r *GormColumnRepository) Create(column *models.Column) error {
	return r.db.Create(column).Error
}

// FindByID finds a column by ID
func (r *GormColumnRepository) FindByID(id uint64) (*models.Column, error) {
	var column models.Column
	if err := r.db.First(&column, id).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// FindByName finds a column by name within a project
func (r *GormColumnRepository) FindByName(projectID uint64, name string) (*models.Column, error) {
	var column models.Column
	if err := r.db.Where("project_id = ? AND name = ?", projectID, name).
		First(&column).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// ListByProject lists a project's columns. Order values may collide, so the
// id tiebreak keeps rendering deterministic.
func (r *GormColumnRepository) ListByProject(projectID uint64) ([]models.Column, error) {
	var columns []models.Column
	if err := r.db.Where("project_id = ?", projectID).
		Order("sort_order ASC, id ASC").
		Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

// MaxOrder returns the highest order value among a project's columns, or -1
// when the project has none
func (r *GormColumnRepository) MaxOrder(projectID uint64) (int, error) {
	var result struct {
		MaxOrder *int
	}
	err := r.db.Model(&models.Column{}).
		Select("MAX(sort_order) AS max_order").
		Where("project_id = ?", projectID).
		Scan(&result).Error
	if err != nil {
		return 0, err
	}
	if result.MaxOrder == nil {
		return -1, nil
	}
	return *result.MaxOrder, nil
}

// Reorder rewrites column positions in a single transaction
func (r *GormColumnRepository) Reorder(projectID uint64, orders []ColumnOrder) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			result := tx.Model(&models.Column{}).
				Where("id = ? AND project_id = ?", o.ColumnID, projectID).
				Update("sort_order", o.Order)
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

// Delete removes a column
func (r *GormColumnRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Column{}, id).Error
}
