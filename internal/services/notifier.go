package services

import "log"

// Event describes a board change worth telling a user about.
type Event struct {
	Type      string `json:"type"`
	ProjectID uint64 `json:"project_id"`
	TaskID    uint64 `json:"task_id,omitempty"`
	Message   string `json:"message"`
}

// Notifier delivers events to users. Delivery is fire-and-forget: failures
// must never roll back the mutation that produced the event, so the
// interface returns nothing.
type Notifier interface {
	Notify(userID uint64, event Event)
}

// LogNotifier is the default sink; it just logs. A real deployment plugs in
// a chat or push delivery implementation.
type LogNotifier struct{}

// Notify implements Notifier
func (LogNotifier) Notify(userID uint64, event Event) {
	log.Printf("notify user %d: %s (project=%d task=%d)", userID, event.Type, event.ProjectID, event.TaskID)
}
