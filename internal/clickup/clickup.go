package clickup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Afrawles/taskreport/internal/report"
	"golang.org/x/sync/errgroup"
)

// ClickUp workspaces define their own statuses. These cover the common
// spellings; anything else falls back to the status type.
var statusMap = map[string]report.Status{
	"to do":                report.StatusTodo,
	"todo":                 report.StatusTodo,
	"open":                 report.StatusTodo,
	"backlog":              report.StatusTodo,
	"ready":                report.StatusTodo,
	"new development":      report.StatusTodo,
	"issues":               report.StatusTodo,
	"improvements":         report.StatusTodo,
	"urgent support":       report.StatusTodo,
	"in progress":          report.StatusInProgress,
	"current sprint":       report.StatusInProgress,
	"in review":            report.StatusInProgress,
	"ready for qa":         report.StatusInProgress,
	"failed qa":            report.StatusInProgress,
	"ready for deployment": report.StatusInProgress,
	"blocked":              report.StatusBlocked,
	"on hold":              report.StatusBlocked,
	"suspended":            report.StatusBlocked,
	"complete":             report.StatusDone,
	"completed":            report.StatusDone,
	"done":                 report.StatusDone,
	"closed":               report.StatusDone,
}

var priorityMap = map[string]report.Priority{
	"urgent": report.PriorityCritical,
	"high":   report.PriorityHigh,
	"normal": report.PriorityMedium,
	"low":    report.PriorityLow,
}

const defaultConcurrency = 4

type ClickUpSource struct {
	Client      *Client
	ListIDs     []string
	FolderID    string
	AssigneeIDs []string
	Concurrency int
}

func NewClickUpSource(client *Client, listIDs []string, folderID string, assigneeIDs []string) *ClickUpSource {
	return &ClickUpSource{
		Client:      client,
		ListIDs:     listIDs,
		FolderID:    folderID,
		AssigneeIDs: assigneeIDs,
		Concurrency: defaultConcurrency,
	}
}

var _ report.TaskSource = (*ClickUpSource)(nil)

func (c *ClickUpSource) Name() string {
	return "ClickUp"
}

func (c *ClickUpSource) HealthCheck(ctx context.Context) error {
	return c.Client.HealthCheck(ctx)
}

// FetchTasks pulls every configured list concurrently. Lists of the folder
// come after explicit list IDs; a task seen in several lists is kept once.
func (c *ClickUpSource) FetchTasks(ctx context.Context) (*report.Dataset, error) {
	listIDs := append([]string(nil), c.ListIDs...)
	var project *report.ProjectInfo

	if c.FolderID != "" {
		lists, err := c.Client.ListsInFolder(ctx, c.FolderID)
		if err != nil {
			return nil, err
		}
		for _, l := range lists {
			listIDs = append(listIDs, l.ID)
		}
		if len(lists) > 0 && lists[0].Folder.Name != "" {
			project = &report.ProjectInfo{ID: c.FolderID, Name: lists[0].Folder.Name}
		}
	}
	if len(listIDs) == 0 {
		return nil, fmt.Errorf("no ClickUp lists to fetch")
	}

	results := make([][]ClickUpTask, len(listIDs))
	g, gctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g.SetLimit(limit)

	for i, id := range listIDs {
		g.Go(func() error {
			tasks, err := c.Client.FetchTasks(gctx, id, c.AssigneeIDs)
			if err != nil {
				return err
			}
			results[i] = tasks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &report.Dataset{Assignees: map[string]string{}, Project: project}
	seen := make(map[string]bool)
	for _, tasks := range results {
		for _, t := range tasks {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true

			snap, err := toSnapshot(t)
			if err != nil {
				return nil, fmt.Errorf("task %s: %w", t.ID, err)
			}
			ds.Tasks = append(ds.Tasks, snap)

			for _, a := range t.Assignees {
				ds.Assignees[strconv.Itoa(a.ID)] = a.Username
			}
		}
	}

	if ds.Project == nil && len(listIDs) == 1 && len(ds.Tasks) > 0 {
		first := results[0][0].List
		if first.Name != "" {
			ds.Project = &report.ProjectInfo{ID: first.ID, Name: first.Name}
		}
	}

	return ds, nil
}

func toSnapshot(t ClickUpTask) (report.TaskSnapshot, error) {
	snap := report.TaskSnapshot{
		ID:          t.ID,
		Title:       t.Name,
		Description: t.Description,
		Status:      mapStatus(t.Status),
		Priority:    mapPriority(t.Priority),
	}

	if t.DueDate != nil && *t.DueDate != "" {
		ms, err := strconv.ParseInt(*t.DueDate, 10, 64)
		if err != nil {
			return snap, fmt.Errorf("due_date %q: %w", *t.DueDate, err)
		}
		due := time.UnixMilli(ms).UTC()
		snap.DueDate = &due
	}

	if len(t.Assignees) > 0 {
		snap.AssigneeID = strconv.Itoa(t.Assignees[0].ID)
	}

	return snap, nil
}

func mapStatus(s ClickUpStatus) report.Status {
	name := strings.ToLower(strings.TrimSpace(s.Status))
	if st, ok := statusMap[name]; ok {
		return st
	}
	switch s.Type {
	case "open":
		return report.StatusTodo
	case "done", "closed":
		return report.StatusDone
	}
	return report.Status(name)
}

func mapPriority(p *ClickUpPriority) report.Priority {
	if p == nil || p.Priority == "" {
		return report.PriorityMedium
	}
	name := strings.ToLower(p.Priority)
	if pr, ok := priorityMap[name]; ok {
		return pr
	}
	return report.Priority(name)
}
