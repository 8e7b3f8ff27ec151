package report

import (
	"context"
	"time"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// sectionOrder is the order status sections appear in the report body.
var sectionOrder = []Status{StatusInProgress, StatusTodo, StatusBlocked, StatusDone}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// Label is the human readable heading for a status bucket.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "Todo"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	}
	return string(s)
}

// Priority is the urgency a task was filed with.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var priorityOrder = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// TaskSnapshot is the read-only view of a task the report is built from.
type TaskSnapshot struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       Status     `json:"status"`
	Priority     Priority   `json:"priority"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	AssigneeID   string     `json:"assigned_to,omitempty"`
	CommentCount int        `json:"comments_count,omitempty"`
}

// ProjectInfo identifies the project a report covers.
type ProjectInfo struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Dataset is everything a source knows about one reporting scope.
type Dataset struct {
	Tasks     []TaskSnapshot
	Assignees map[string]string
	Project   *ProjectInfo
}

// TaskSource produces task snapshots for a report.
type TaskSource interface {
	Name() string
	FetchTasks(ctx context.Context) (*Dataset, error)
	HealthCheck(ctx context.Context) error
}
