package repository

import (
	"time"

	"github.com/minatogawa/project-board-api/internal/models"
)

// ColumnOrder pairs a column id with its target board position.
type ColumnOrder struct {
	ColumnID uint64
	Order    int
}

// ColumnRepository defines the interface for board column data access
type ColumnRepository interface {
	// Create creates a new column
	Create(column *models.Column) error

	// FindByID finds a column by ID
	FindByID(id uint64) (*models.Column, error)

	// FindByName finds a column by name within a project
	FindByName(projectID uint64, name string) (*models.Column, error)

	// ListByProject lists a project's columns sorted by (order, id)
	ListByProject(projectID uint64) ([]models.Column, error)

	// MaxOrder returns the highest order value among a project's columns,
	// or -1 when the project has none
	MaxOrder(projectID uint64) (int, error)

	// Reorder rewrites column positions in a single transaction
	Reorder(projectID uint64, orders []ColumnOrder) error

	// Delete removes a column
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID   uint64
	Column      *string
	Status      *string
	AssigneeID  *uint64
	CreatedBy   *uint64
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Search      string
	Limit       int
	Offset      int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListAllByProject returns every task in a project, unpaginated.
	// Used by the statistics aggregator.
	ListAllByProject(projectID uint64) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// ReorderInColumn rewrites task positions within a column in a single
	// transaction; position equals the index in orderedTaskIDs
	ReorderInColumn(projectID uint64, column string, orderedTaskIDs []uint64) error

	// Delete removes a task together with its subtasks, tags, ledgers and
	// outgoing dependency edges in a single transaction. Incoming edges
	// from other tasks are left dangling by design of the board model.
	Delete(id uint64) error

	// CountInColumn counts tasks referencing a column name in a project
	CountInColumn(projectID uint64, column string) (int64, error)
}

// DependencyRepository defines the interface for dependency edge data access
type DependencyRepository interface {
	// Create creates a new dependency edge
	Create(dep *models.TaskDependency) error

	// FindByID finds a dependency edge by ID
	FindByID(id uint64) (*models.TaskDependency, error)

	// ListByTask lists a task's outgoing edges
	ListByTask(taskID uint64) ([]models.TaskDependency, error)

	// ListOrderingEdgesByProject lists every blocks/blocked_by edge whose
	// source task belongs to the project. Input for cycle detection.
	ListOrderingEdgesByProject(projectID uint64) ([]models.TaskDependency, error)

	// Exists reports whether an identical edge is already present
	Exists(taskID, dependentTaskID uint64, depType models.DependencyType) (bool, error)

	// CountByTaskGrouped counts a task's outgoing edges per type
	CountByTaskGrouped(taskID uint64) (map[models.DependencyType]int64, error)

	// Delete removes a dependency edge
	Delete(id uint64) error
}

// SubtaskRepository defines the interface for subtask data access
type SubtaskRepository interface {
	// Create creates a new subtask
	Create(subtask *models.Subtask) error

	// FindByID finds a subtask by ID
	FindByID(id uint64) (*models.Subtask, error)

	// ListByTask lists a task's subtasks in creation order
	ListByTask(taskID uint64) ([]models.Subtask, error)

	// Update updates a subtask
	Update(subtask *models.Subtask) error

	// Delete removes a subtask
	Delete(id uint64) error

	// CountByTask returns total and completed subtask counts for a task
	CountByTask(taskID uint64) (total int64, completed int64, err error)
}

// TimeEntryFilter holds filtering options for listing time entries.
// Date bounds are inclusive.
type TimeEntryFilter struct {
	TaskID   uint64
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// TimeRepository defines the interface for the estimate and time-entry
// ledgers. It is the only code allowed to write the denormalized
// EstimatedHours and TotalHoursSpent task fields.
type TimeRepository interface {
	// CreateEstimate appends an estimate revision and overwrites the
	// task's denormalized estimated hours in the same transaction
	CreateEstimate(estimate *models.Estimate) error

	// ListEstimates lists a task's estimate revisions, newest first
	ListEstimates(taskID uint64) ([]models.Estimate, error)

	// CreateEntry appends a time entry, then recomputes the task's total
	// hours as the sum over all entries in the same transaction. Returns
	// the new total.
	CreateEntry(entry *models.TimeEntry) (float64, error)

	// ListEntries retrieves time entries with filtering and pagination
	ListEntries(filter TimeEntryFilter) ([]models.TimeEntry, int64, error)

	// ListEntriesByTask returns every time entry for a task, unpaginated
	ListEntriesByTask(taskID uint64) ([]models.TimeEntry, error)
}

// HistoryFilter holds filtering options for reading the audit trail
type HistoryFilter struct {
	ProjectID uint64
	TaskID    *uint64
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

// HistoryRepository defines the interface for the append-only audit trail
type HistoryRepository interface {
	// Append records a history entry; entries are never updated or deleted
	Append(entry *models.HistoryEntry) error

	// List retrieves history entries with filtering, newest first
	List(filter HistoryFilter) ([]models.HistoryEntry, int64, error)

	// ListAllByProject returns every history entry for a project within
	// the optional date bounds. Input for activity statistics.
	ListAllByProject(projectID uint64, from, to *time.Time) ([]models.HistoryEntry, error)
}

// TagRepository defines the interface for task tag data access
type TagRepository interface {
	// Create creates a new tag
	Create(tag *models.TaskTag) error

	// FindByID finds a tag by ID
	FindByID(id uint64) (*models.TaskTag, error)

	// ListByTask lists a task's tags
	ListByTask(taskID uint64) ([]models.TaskTag, error)

	// ExistsByName reports whether the task already carries a tag with
	// the given name
	ExistsByName(taskID uint64, name string) (bool, error)

	// Delete removes a tag
	Delete(id uint64) error
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// FindByInviteCode finds a project by invite code
	FindByInviteCode(code string) (*models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete removes a project and its memberships and columns
	Delete(id uint64) error

	// CountTasks counts the live tasks belonging to a project
	CountTasks(projectID uint64) (int64, error)

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific project member
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembersByUserID lists all projects a user is a member of
	ListMembersByUserID(userID uint64) ([]models.ProjectMember, error)

	// ListMembers lists all members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
