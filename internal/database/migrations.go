package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for board rendering and filtering
		{"tasks", "idx_tasks_project_column", "project_id, board_column"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_assignee_id", "assignee_id"},
		{"tasks", "idx_tasks_created_by", "created_by"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		// Column ordering
		{"columns", "idx_columns_project_order", "project_id, sort_order"},

		// Dependency traversal in both directions
		{"task_dependencies", "idx_deps_task_id", "task_id"},
		{"task_dependencies", "idx_deps_dependent_task_id", "dependent_task_id"},

		// Ledgers
		{"subtasks", "idx_subtasks_task_id", "task_id"},
		{"estimates", "idx_estimates_task_id", "task_id"},
		{"time_entries", "idx_time_entries_task_date", "task_id, date"},

		// Activity queries
		{"history_entries", "idx_history_project_created", "project_id, created_at"},
		{"history_entries", "idx_history_task_id", "task_id"},

		// Membership lookups
		{"project_members", "idx_project_members_user_id", "user_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		fmt.Printf("Created index %s on %s(%s)\n", idx.name, idx.table, idx.columns)
	}

	return nil
}
