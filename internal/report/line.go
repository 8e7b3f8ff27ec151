package report

import (
	"fmt"
	"strings"
	"time"
)

// Config toggles optional parts of the daily summary.
type Config struct {
	IncludeOverdue   bool `json:"include_overdue" yaml:"include_overdue"`
	IncludeAssignees bool `json:"include_assignees" yaml:"include_assignees"`
	Compact          bool `json:"compact" yaml:"compact"`
}

func DefaultConfig() Config {
	return Config{
		IncludeOverdue:   true,
		IncludeAssignees: true,
	}
}

var priorityMarkers = map[Priority]string{
	PriorityCritical: "⚠️ CRITICAL PRIORITY ⚠️",
	PriorityHigh:     "🔴",
	PriorityMedium:   "🟡",
	PriorityLow:      "⚪",
}

var statusMarkers = map[Status]string{
	StatusDone:       "✅",
	StatusInProgress: "🔄",
	StatusBlocked:    "🚫",
	StatusTodo:       "📋",
}

type lineInput struct {
	task     TaskSnapshot
	cfg      Config
	assignee string
	now      time.Time
}

// lineRule contributes one fragment to a task line, or "" to contribute nothing.
type lineRule func(in lineInput) string

// lineRules run in order; each one only looks at its own part of the task.
var lineRules = []lineRule{
	func(in lineInput) string { return priorityMarkers[in.task.Priority] },
	func(in lineInput) string { return statusMarkers[in.task.Status] },
	titleFragment,
	overdueFragment,
	assigneeFragment,
	commentsFragment,
	descriptionFragment,
}

// RenderLine formats a single task as one report line. assignee is the
// display name for the task's assignee; when empty the raw ID is shown.
func RenderLine(task TaskSnapshot, cfg Config, assignee string, now time.Time) string {
	in := lineInput{task: task, cfg: cfg, assignee: assignee, now: now}

	parts := make([]string, 0, len(lineRules))
	for _, rule := range lineRules {
		if frag := rule(in); frag != "" {
			parts = append(parts, frag)
		}
	}
	return strings.Join(parts, " ")
}

func titleFragment(in lineInput) string {
	title := singleLine(in.task.Title)
	if in.task.ID == "" {
		return title
	}
	return strings.TrimSpace(fmt.Sprintf("#%s %s", in.task.ID, title))
}

func overdueFragment(in lineInput) string {
	if ClassifyUrgency(in.task.DueDate, in.task.Status, in.now) != UrgencyOverdue {
		return ""
	}
	return fmt.Sprintf("(%d days overdue)", overdueDays(*in.task.DueDate, in.now))
}

func assigneeFragment(in lineInput) string {
	if !in.cfg.IncludeAssignees {
		return ""
	}
	if in.task.AssigneeID == "" {
		return "— unassigned"
	}
	name := in.assignee
	if name == "" {
		name = in.task.AssigneeID
	}
	return "— assigned to " + singleLine(name)
}

func commentsFragment(in lineInput) string {
	if in.cfg.Compact || in.task.CommentCount <= 0 {
		return ""
	}
	return fmt.Sprintf("(%d comments)", in.task.CommentCount)
}

func descriptionFragment(in lineInput) string {
	if in.cfg.Compact {
		return ""
	}
	desc := singleLine(in.task.Description)
	if desc == "" {
		return ""
	}
	return "— " + desc
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
