package constants

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyProject   = "project"
	ContextKeyTask      = "task"
	ContextKeyIsManager = "is_manager"
	ContextKeyRequestID = "request_id"
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
)

// AI suggestions
const (
	MaxAISuggestedSubtasks = 20
)

// DefaultColumnOrders maps well-known column names to their board position.
// Used when a task references a column that does not exist yet and the
// missing-column policy is auto_create. Unknown names get DefaultColumnOrder.
var DefaultColumnOrders = map[string]int{
	"backlog":     0,
	"todo":        1,
	"in_progress": 2,
	"review":      3,
	"done":        4,
}

const DefaultColumnOrder = 1

// DoneStatus is the terminal workflow state used for progress rollups.
const DoneStatus = "done"
