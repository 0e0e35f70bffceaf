package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNegativeHours = errors.New("hours must be zero or positive")
)

// TimeService manages the append-only estimate and time-entry ledgers. The
// task's EstimatedHours and TotalHoursSpent fields are projections of these
// ledgers and are written only through the time repository.
type TimeService struct {
	timeRepo repository.TimeRepository
	taskRepo repository.TaskRepository
	recorder *HistoryRecorder
}

// NewTimeService creates a new TimeService
func NewTimeService(timeRepo repository.TimeRepository, taskRepo repository.TaskRepository, recorder *HistoryRecorder) *TimeService {
	return &TimeService{
		timeRepo: timeRepo,
		taskRepo: taskRepo,
		recorder: recorder,
	}
}

// AddEstimateInput represents input for revising a task's estimate
type AddEstimateInput struct {
	TaskID         uint64
	EstimatedHours float64
	Description    string
}

// AddEstimate appends an estimate revision. The task's denormalized
// estimated hours always reflect the latest revision.
func (s *TimeService) AddEstimate(actor Actor, input AddEstimateInput) (*models.Estimate, error) {
	if !actor.IsMember {
		return nil, ErrNotProjectMember
	}
	if input.EstimatedHours < 0 {
		return nil, ErrNegativeHours
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	estimate := &models.Estimate{
		TaskID:         input.TaskID,
		EstimatedHours: input.EstimatedHours,
		Description:    input.Description,
		CreatedBy:      actor.UserID,
	}

	if err := s.timeRepo.CreateEstimate(estimate); err != nil {
		return nil, fmt.Errorf("failed to create estimate: %w", err)
	}

	s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionEstimateAdded, map[string]any{
		"estimate_id":     estimate.ID,
		"estimated_hours": estimate.EstimatedHours,
	})

	return estimate, nil
}

// ListEstimates lists a task's estimate revisions, newest first.
func (s *TimeService) ListEstimates(taskID uint64) ([]models.Estimate, error) {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	estimates, err := s.timeRepo.ListEstimates(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list estimates: %w", err)
	}
	return estimates, nil
}

// AddTimeEntryInput represents input for logging time against a task
type AddTimeEntryInput struct {
	TaskID      uint64
	Hours       float64
	Description string
	Date        *time.Time
}

// AddTimeEntry appends a time entry; the task's total hours are recomputed
// from the full ledger on every insert. Returns the entry and the new total.
func (s *TimeService) AddTimeEntry(actor Actor, input AddTimeEntryInput) (*models.TimeEntry, float64, error) {
	if !actor.IsMember {
		return nil, 0, ErrNotProjectMember
	}
	if input.Hours < 0 {
		return nil, 0, ErrNegativeHours
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTaskNotFound
		}
		return nil, 0, fmt.Errorf("failed to find task: %w", err)
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	entry := &models.TimeEntry{
		TaskID:      input.TaskID,
		Hours:       input.Hours,
		Description: input.Description,
		Date:        date,
		CreatedBy:   actor.UserID,
	}

	total, err := s.timeRepo.CreateEntry(entry)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create time entry: %w", err)
	}

	s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionTimeLogged, map[string]any{
		"time_entry_id":     entry.ID,
		"hours":             entry.Hours,
		"total_hours_spent": total,
	})

	return entry, total, nil
}

// ListTimeEntries retrieves a task's time entries, optionally bounded by an
// inclusive date range.
func (s *TimeService) ListTimeEntries(filter repository.TimeEntryFilter) ([]models.TimeEntry, int64, error) {
	if _, err := s.taskRepo.FindByID(filter.TaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTaskNotFound
		}
		return nil, 0, fmt.Errorf("failed to find task: %w", err)
	}

	entries, total, err := s.timeRepo.ListEntries(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list time entries: %w", err)
	}
	return entries, total, nil
}
