package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/minatogawa/project-board-api/internal/constants"
	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"gorm.io/gorm"
)

// StatisticsService derives per-task and per-project rollups on demand from
// the current store state. It never mutates anything; results are always
// consistent with the latest committed writes at linear scan cost.
type StatisticsService struct {
	taskRepo    repository.TaskRepository
	subtaskRepo repository.SubtaskRepository
	depRepo     repository.DependencyRepository
	timeRepo    repository.TimeRepository
	historyRepo repository.HistoryRepository
}

// NewStatisticsService creates a new StatisticsService
func NewStatisticsService(
	taskRepo repository.TaskRepository,
	subtaskRepo repository.SubtaskRepository,
	depRepo repository.DependencyRepository,
	timeRepo repository.TimeRepository,
	historyRepo repository.HistoryRepository,
) *StatisticsService {
	return &StatisticsService{
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		depRepo:     depRepo,
		timeRepo:    timeRepo,
		historyRepo: historyRepo,
	}
}

// TimeTrackingStats summarizes a task's estimate versus logged time.
// TimeVariance is the percentage deviation of actual from estimated hours,
// nil when the task has no positive estimate.
type TimeTrackingStats struct {
	EstimatedHours    float64            `json:"estimated_hours"`
	TotalHoursSpent   float64            `json:"total_hours_spent"`
	TimeVariance      *float64           `json:"time_variance"`
	TimeEntriesByUser map[uint64]float64 `json:"time_entries_by_user"`
}

// SubtaskStats summarizes a task's checklist completion.
type SubtaskStats struct {
	Total     int64   `json:"total"`
	Completed int64   `json:"completed"`
	Progress  float64 `json:"progress"`
}

// DependencyStats counts a task's outgoing edges per type.
type DependencyStats struct {
	Blocks    int64 `json:"blocks"`
	BlockedBy int64 `json:"blocked_by"`
	RelatesTo int64 `json:"relates_to"`
}

// TaskStatistics is the per-task rollup.
type TaskStatistics struct {
	TimeTracking TimeTrackingStats `json:"time_tracking"`
	Subtasks     SubtaskStats      `json:"subtasks"`
	Dependencies DependencyStats   `json:"dependencies"`
}

// TaskStatistics computes the rollup for a single task.
func (s *StatisticsService) TaskStatistics(taskID uint64) (*TaskStatistics, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	estimated := 0.0
	if task.EstimatedHours != nil {
		estimated = *task.EstimatedHours
	}

	entries, err := s.timeRepo.ListEntriesByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	byUser := make(map[uint64]float64)
	for _, entry := range entries {
		byUser[entry.CreatedBy] += entry.Hours
	}

	tracking := TimeTrackingStats{
		EstimatedHours:    estimated,
		TotalHoursSpent:   task.TotalHoursSpent,
		TimeEntriesByUser: byUser,
	}
	if estimated > 0 {
		variance := (task.TotalHoursSpent - estimated) / estimated * 100
		tracking.TimeVariance = &variance
	}

	total, completed, err := s.subtaskRepo.CountByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count subtasks: %w", err)
	}

	subtasks := SubtaskStats{Total: total, Completed: completed}
	switch {
	case total > 0:
		subtasks.Progress = float64(completed) / float64(total) * 100
	case task.Status == constants.DoneStatus:
		subtasks.Progress = 100
	default:
		subtasks.Progress = 0
	}

	depCounts, err := s.depRepo.CountByTaskGrouped(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count dependencies: %w", err)
	}

	return &TaskStatistics{
		TimeTracking: tracking,
		Subtasks:     subtasks,
		Dependencies: DependencyStats{
			Blocks:    depCounts[models.DependencyBlocks],
			BlockedBy: depCounts[models.DependencyBlockedBy],
			RelatesTo: depCounts[models.DependencyRelatesTo],
		},
	}, nil
}

// ProjectStatistics is the per-project rollup. TasksByAssignee is keyed by
// the assignee's user id rendered as a string, with "unassigned" for tasks
// that have no assignee.
type ProjectStatistics struct {
	TotalTasks          int            `json:"total_tasks"`
	CompletedTasks      int            `json:"completed_tasks"`
	ProjectProgress     float64        `json:"project_progress"`
	TasksByStatus       map[string]int `json:"tasks_by_status"`
	TasksByColumn       map[string]int `json:"tasks_by_column"`
	TasksByAssignee     map[string]int `json:"tasks_by_assignee"`
	TotalEstimatedHours float64        `json:"total_estimated_hours"`
	TotalHoursSpent     float64        `json:"total_hours_spent"`
	AverageTimeVariance *float64       `json:"average_time_variance"`
}

// ProjectStatistics scans a project's tasks once and produces the rollup.
// The average time variance covers only tasks with both a positive estimate
// and logged time.
func (s *StatisticsService) ProjectStatistics(projectID uint64) (*ProjectStatistics, error) {
	tasks, err := s.taskRepo.ListAllByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}

	stats := &ProjectStatistics{
		TasksByStatus:   make(map[string]int),
		TasksByColumn:   make(map[string]int),
		TasksByAssignee: make(map[string]int),
	}

	varianceSum := 0.0
	varianceCount := 0

	for _, task := range tasks {
		stats.TotalTasks++
		stats.TasksByStatus[task.Status]++
		stats.TasksByColumn[task.Column]++

		if task.AssigneeID != nil {
			stats.TasksByAssignee[strconv.FormatUint(*task.AssigneeID, 10)]++
		} else {
			stats.TasksByAssignee["unassigned"]++
		}

		if task.Status == constants.DoneStatus {
			stats.CompletedTasks++
		}

		if task.EstimatedHours != nil {
			stats.TotalEstimatedHours += *task.EstimatedHours
		}
		stats.TotalHoursSpent += task.TotalHoursSpent

		if task.EstimatedHours != nil && *task.EstimatedHours > 0 && task.TotalHoursSpent > 0 {
			varianceSum += (task.TotalHoursSpent - *task.EstimatedHours) / *task.EstimatedHours * 100
			varianceCount++
		}
	}

	if stats.TotalTasks > 0 {
		stats.ProjectProgress = float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
	}
	if varianceCount > 0 {
		avg := varianceSum / float64(varianceCount)
		stats.AverageTimeVariance = &avg
	}

	return stats, nil
}

// UserActivity is a user's entry count in the activity rollup.
type UserActivity struct {
	UserID uint64 `json:"user_id"`
	Count  int    `json:"count"`
}

// ActionActivity is an action's entry count in the activity rollup.
type ActionActivity struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

// ActivityStatistics is the per-project audit-trail rollup. Days are keyed
// by calendar date in UTC (YYYY-MM-DD).
type ActivityStatistics struct {
	TotalEntries int              `json:"total_entries"`
	ByAction     map[string]int   `json:"by_action"`
	ByUser       map[uint64]int   `json:"by_user"`
	ByDay        map[string]int   `json:"by_day"`
	TopUsers     []UserActivity   `json:"top_users"`
	TopActions   []ActionActivity `json:"top_actions"`
}

// ActivityStatistics counts history entries by action, user and day within
// the optional date bounds, and derives the five most active users and most
// frequent actions.
func (s *StatisticsService) ActivityStatistics(projectID uint64, from, to *time.Time) (*ActivityStatistics, error) {
	entries, err := s.historyRepo.ListAllByProject(projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}

	stats := &ActivityStatistics{
		TotalEntries: len(entries),
		ByAction:     make(map[string]int),
		ByUser:       make(map[uint64]int),
		ByDay:        make(map[string]int),
	}

	for _, entry := range entries {
		stats.ByAction[entry.Action]++
		stats.ByUser[entry.UserID]++
		stats.ByDay[entry.CreatedAt.UTC().Format("2006-01-02")]++
	}

	stats.TopUsers = topUsers(stats.ByUser, 5)
	stats.TopActions = topActions(stats.ByAction, 5)

	return stats, nil
}

// topUsers returns the n highest-count users, ties broken by user id for
// deterministic output.
func topUsers(counts map[uint64]int, n int) []UserActivity {
	users := make([]UserActivity, 0, len(counts))
	for id, count := range counts {
		users = append(users, UserActivity{UserID: id, Count: count})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Count != users[j].Count {
			return users[i].Count > users[j].Count
		}
		return users[i].UserID < users[j].UserID
	})
	if len(users) > n {
		users = users[:n]
	}
	return users
}

// topActions returns the n highest-count actions, ties broken by name.
func topActions(counts map[string]int, n int) []ActionActivity {
	actions := make([]ActionActivity, 0, len(counts))
	for action, count := range counts {
		actions = append(actions, ActionActivity{Action: action, Count: count})
	}
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].Count != actions[j].Count {
			return actions[i].Count > actions[j].Count
		}
		return actions[i].Action < actions[j].Action
	})
	if len(actions) > n {
		actions = actions[:n]
	}
	return actions
}
