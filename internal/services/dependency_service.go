package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/minatogawa/project-board-api/internal/models"
	"github.com/minatogawa/project-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrDependencyNotFound     = errors.New("dependency not found")
	ErrInvalidDependencyType  = errors.New("unknown dependency type")
	ErrSelfDependency         = errors.New("a task cannot depend on itself")
	ErrCrossProjectDependency = errors.New("both tasks must belong to the same project")
	ErrDuplicateDependency    = errors.New("an identical dependency already exists")
	ErrDependencyCycle        = errors.New("dependency would create a cycle")
	ErrDependentTaskNotFound  = errors.New("dependent task not found")
)

// DependencyService manages the directed dependency graph between tasks.
//
// blocks and blocked_by edges must keep the graph acyclic; relates_to edges
// are exempt. Two concurrent additions that are each acyclic alone can be
// cyclic together, so mutations are serialized per project. That closes the
// check-then-insert race for a single process; multi-instance deployments
// need a store-level transaction instead.
type DependencyService struct {
	depRepo  repository.DependencyRepository
	taskRepo repository.TaskRepository
	recorder *HistoryRecorder
	notifier Notifier

	mu           sync.Mutex
	projectLocks map[uint64]*sync.Mutex
}

// NewDependencyService creates a new DependencyService
func NewDependencyService(depRepo repository.DependencyRepository, taskRepo repository.TaskRepository, recorder *HistoryRecorder, notifier Notifier) *DependencyService {
	return &DependencyService{
		depRepo:      depRepo,
		taskRepo:     taskRepo,
		recorder:     recorder,
		notifier:     notifier,
		projectLocks: make(map[uint64]*sync.Mutex),
	}
}

func (s *DependencyService) lockProject(projectID uint64) *sync.Mutex {
	s.mu.Lock()
	lock, ok := s.projectLocks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.projectLocks[projectID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock
}

// AddDependencyInput represents input for adding a dependency edge
type AddDependencyInput struct {
	TaskID          uint64
	DependentTaskID uint64
	Type            models.DependencyType
}

// AddDependency adds a directed edge from TaskID to DependentTaskID. For
// ordering-relevant types the edge is rejected with ErrDependencyCycle if
// TaskID is reachable from DependentTaskID over existing blocks/blocked_by
// edges, leaving the graph unchanged.
func (s *DependencyService) AddDependency(actor Actor, input AddDependencyInput) (*models.TaskDependency, error) {
	if !actor.IsManager {
		return nil, ErrManagerRequired
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidDependencyType
	}
	if input.TaskID == input.DependentTaskID {
		return nil, ErrSelfDependency
	}

	task, err := s.taskRepo.FindByID(input.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	dependent, err := s.taskRepo.FindByID(input.DependentTaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDependentTaskNotFound
		}
		return nil, fmt.Errorf("failed to find dependent task: %w", err)
	}

	if task.ProjectID != dependent.ProjectID {
		return nil, ErrCrossProjectDependency
	}

	lock := s.lockProject(task.ProjectID)
	defer lock.Unlock()

	exists, err := s.depRepo.Exists(input.TaskID, input.DependentTaskID, input.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate dependency: %w", err)
	}
	if exists {
		return nil, ErrDuplicateDependency
	}

	if input.Type.OrderingRelevant() {
		cyclic, err := s.wouldCreateCycle(task.ProjectID, input.TaskID, input.DependentTaskID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, ErrDependencyCycle
		}
	}

	dep := &models.TaskDependency{
		TaskID:          input.TaskID,
		DependentTaskID: input.DependentTaskID,
		Type:            input.Type,
		CreatedBy:       actor.UserID,
	}

	if err := s.depRepo.Create(dep); err != nil {
		return nil, fmt.Errorf("failed to create dependency: %w", err)
	}

	s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionDependencyAdded, map[string]any{
		"dependency_id":     dep.ID,
		"dependent_task_id": dep.DependentTaskID,
		"type":              dep.Type,
	})

	if dependent.AssigneeID != nil && *dependent.AssigneeID != actor.UserID {
		s.notifier.Notify(*dependent.AssigneeID, Event{
			Type:      "dependency_added",
			ProjectID: task.ProjectID,
			TaskID:    dependent.ID,
			Message:   fmt.Sprintf("Task %d now %s task %d", task.ID, dep.Type, dependent.ID),
		})
	}

	return dep, nil
}

// wouldCreateCycle reports whether adding taskID -> dependentTaskID would
// close a cycle: a depth-first search over the project's existing
// blocks/blocked_by edges, starting from dependentTaskID, that reaches
// taskID. O(V+E) over the project's dependency component.
func (s *DependencyService) wouldCreateCycle(projectID, taskID, dependentTaskID uint64) (bool, error) {
	edges, err := s.depRepo.ListOrderingEdgesByProject(projectID)
	if err != nil {
		return false, fmt.Errorf("failed to load dependency graph: %w", err)
	}

	adjacency := make(map[uint64][]uint64, len(edges))
	for _, edge := range edges {
		adjacency[edge.TaskID] = append(adjacency[edge.TaskID], edge.DependentTaskID)
	}

	visited := make(map[uint64]bool)
	stack := []uint64{dependentTaskID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == taskID {
			return true, nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		stack = append(stack, adjacency[current]...)
	}

	return false, nil
}

// DeleteDependency removes an edge. Deletion only removes edges, so no
// invariant needs re-checking.
func (s *DependencyService) DeleteDependency(actor Actor, dependencyID uint64) error {
	if !actor.IsManager {
		return ErrManagerRequired
	}

	dep, err := s.depRepo.FindByID(dependencyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDependencyNotFound
		}
		return fmt.Errorf("failed to find dependency: %w", err)
	}

	task, err := s.taskRepo.FindByID(dep.TaskID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.depRepo.Delete(dependencyID); err != nil {
		return fmt.Errorf("failed to delete dependency: %w", err)
	}

	if task != nil {
		s.recorder.RecordTask(task.ProjectID, task.ID, actor.UserID, models.ActionDependencyDeleted, map[string]any{
			"dependency_id":     dep.ID,
			"dependent_task_id": dep.DependentTaskID,
			"type":              dep.Type,
		})
	}

	return nil
}

// ResolvedDependency is an outgoing edge annotated with a snapshot of its
// target task.
type ResolvedDependency struct {
	models.TaskDependency
	DependentTask *models.Task `json:"dependent_task"`
}

// ListDependencies returns a task's outgoing edges with resolved target
// snapshots. Edges whose target no longer exists are silently omitted:
// task deletion does not cascade into other tasks' edge collections, so
// dangling references are a normal outcome here, not an error.
func (s *DependencyService) ListDependencies(taskID uint64) ([]ResolvedDependency, error) {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	edges, err := s.depRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}

	resolved := make([]ResolvedDependency, 0, len(edges))
	for _, edge := range edges {
		target, err := s.taskRepo.FindByID(edge.DependentTaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve dependent task: %w", err)
		}
		resolved = append(resolved, ResolvedDependency{
			TaskDependency: edge,
			DependentTask:  target,
		})
	}

	return resolved, nil
}
