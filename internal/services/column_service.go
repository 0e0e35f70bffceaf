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
	ErrManagerRequired    = errors.New("manager capability on the project is required")
	ErrColumnNotFound     = errors.New("column not found")
	ErrColumnNameRequired = errors.New("column name is required")
	ErrColumnNotEmpty     = errors.New("column still holds tasks")
	ErrInvalidColumnOrder = errors.New("column order must be zero or positive")
	ErrEmptyReorder       = errors.New("at least one column position is required")
)

// ColumnService provides business logic for board columns.
type ColumnService struct {
	columnRepo repository.ColumnRepository
	taskRepo   repository.TaskRepository
	recorder   *HistoryRecorder
}

// NewColumnService creates a new ColumnService
func NewColumnService(columnRepo repository.ColumnRepository, taskRepo repository.TaskRepository, recorder *HistoryRecorder) *ColumnService {
	return &ColumnService{
		columnRepo: columnRepo,
		taskRepo:   taskRepo,
		recorder:   recorder,
	}
}

// CreateColumnInput represents parameters to create a column. A nil Order
// places the column after the project's current last one.
type CreateColumnInput struct {
	ProjectID uint64
	Name      string
	Order     *int
}

// CreateColumn creates a new board column.
func (s *ColumnService) CreateColumn(actor Actor, input CreateColumnInput) (*models.Column, error) {
	if !actor.IsManager {
		return nil, ErrManagerRequired
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrColumnNameRequired
	}

	order := 0
	if input.Order != nil {
		if *input.Order < 0 {
			return nil, ErrInvalidColumnOrder
		}
		order = *input.Order
	} else {
		maxOrder, err := s.columnRepo.MaxOrder(input.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to determine column order: %w", err)
		}
		order = maxOrder + 1
	}

	column := &models.Column{
		ProjectID: input.ProjectID,
		Name:      input.Name,
		Order:     order,
	}

	if err := s.columnRepo.Create(column); err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}

	s.recorder.RecordProject(input.ProjectID, actor.UserID, models.ActionColumnCreated, map[string]any{
		"column_id": column.ID,
		"name":      column.Name,
		"order":     column.Order,
	})

	return column, nil
}

// DeleteColumn removes a column. Columns that still hold tasks cannot be
// deleted; the tasks must be moved first.
func (s *ColumnService) DeleteColumn(actor Actor, columnID uint64) error {
	if !actor.IsManager {
		return ErrManagerRequired
	}

	column, err := s.columnRepo.FindByID(columnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrColumnNotFound
		}
		return fmt.Errorf("failed to find column: %w", err)
	}

	count, err := s.taskRepo.CountInColumn(column.ProjectID, column.Name)
	if err != nil {
		return fmt.Errorf("failed to count tasks in column: %w", err)
	}
	if count > 0 {
		return ErrColumnNotEmpty
	}

	if err := s.columnRepo.Delete(columnID); err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}

	s.recorder.RecordProject(column.ProjectID, actor.UserID, models.ActionColumnDeleted, map[string]any{
		"column_id": column.ID,
		"name":      column.Name,
	})

	return nil
}

// ColumnOrderInput pairs a column with its target position.
type ColumnOrderInput struct {
	ColumnID uint64
	Order    int
}

// ReorderColumns rewrites column positions, all-or-nothing.
func (s *ColumnService) ReorderColumns(actor Actor, projectID uint64, orders []ColumnOrderInput) error {
	if !actor.IsManager {
		return ErrManagerRequired
	}
	if len(orders) == 0 {
		return ErrEmptyReorder
	}

	repoOrders := make([]repository.ColumnOrder, len(orders))
	for i, o := range orders {
		if o.Order < 0 {
			return ErrInvalidColumnOrder
		}
		repoOrders[i] = repository.ColumnOrder{ColumnID: o.ColumnID, Order: o.Order}
	}

	if err := s.columnRepo.Reorder(projectID, repoOrders); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrColumnNotFound
		}
		return fmt.Errorf("failed to reorder columns: %w", err)
	}

	s.recorder.RecordProject(projectID, actor.UserID, models.ActionColumnsReordered, map[string]any{
		"count": len(orders),
	})

	return nil
}

// ListColumns lists a project's columns in board order.
func (s *ColumnService) ListColumns(projectID uint64) ([]models.Column, error) {
	columns, err := s.columnRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	return columns, nil
}
