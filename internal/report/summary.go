package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const ruleLine = "=================================================="

// Input is everything BuildDailySummary needs. Now is the instant all
// urgency decisions are made against.
type Input struct {
	Tasks     []TaskSnapshot
	Assignees map[string]string
	Project   *ProjectInfo
	Config    Config
	Now       time.Time
}

type Metrics struct {
	TotalTasks      int     `json:"total_tasks"`
	TodoCount       int     `json:"todo_count"`
	InProgressCount int     `json:"in_progress_count"`
	DoneCount       int     `json:"done_count"`
	BlockedCount    int     `json:"blocked_count"`
	CompletionRate  float64 `json:"completion_rate"`
	OverdueCount    int     `json:"overdue_count"`
}

func (m Metrics) Map() map[string]any {
	return map[string]any{
		"total_tasks":       m.TotalTasks,
		"todo_count":        m.TodoCount,
		"in_progress_count": m.InProgressCount,
		"done_count":        m.DoneCount,
		"blocked_count":     m.BlockedCount,
		"completion_rate":   m.CompletionRate,
		"overdue_count":     m.OverdueCount,
	}
}

func (m Metrics) count(s Status) int {
	switch s {
	case StatusTodo:
		return m.TodoCount
	case StatusInProgress:
		return m.InProgressCount
	case StatusDone:
		return m.DoneCount
	case StatusBlocked:
		return m.BlockedCount
	}
	return 0
}

// Entry is one rendered task as it appears in the report.
type Entry struct {
	Task     TaskSnapshot `json:"task"`
	Assignee string       `json:"assignee,omitempty"`
	Urgency  Urgency      `json:"urgency"`
	Line     string       `json:"line"`
}

type Result struct {
	GeneratedAt    time.Time        `json:"generated_at"`
	Project        *ProjectInfo     `json:"project,omitempty"`
	TextSummary    string           `json:"text_summary"`
	Metrics        Metrics          `json:"metrics"`
	UrgencyCounts  map[Urgency]int  `json:"urgency_counts"`
	PriorityCounts map[Priority]int `json:"priority_counts"`
	Entries        []Entry          `json:"entries"`
	Overdue        []Entry          `json:"overdue,omitempty"`
}

// BuildDailySummary renders the daily task summary and its metrics. It
// fails on the first task with an unknown status or priority.
func BuildDailySummary(in Input) (*Result, error) {
	for _, t := range in.Tasks {
		if err := validateTask(t); err != nil {
			return nil, err
		}
	}

	res := &Result{
		GeneratedAt:    in.Now,
		Project:        in.Project,
		UrgencyCounts:  make(map[Urgency]int, len(urgencyOrder)),
		PriorityCounts: make(map[Priority]int, len(priorityOrder)),
		Entries:        []Entry{},
	}
	for _, u := range urgencyOrder {
		res.UrgencyCounts[u] = 0
	}
	for _, p := range priorityOrder {
		res.PriorityCounts[p] = 0
	}

	buckets := make(map[Status][]Entry, len(sectionOrder))
	var overdue []Entry

	for _, t := range in.Tasks {
		e := newEntry(t, in)
		buckets[t.Status] = append(buckets[t.Status], e)
		res.UrgencyCounts[e.Urgency]++
		res.PriorityCounts[t.Priority]++
		if e.Urgency == UrgencyOverdue {
			overdue = append(overdue, e)
		}
	}

	m := Metrics{
		TotalTasks:      len(in.Tasks),
		TodoCount:       len(buckets[StatusTodo]),
		InProgressCount: len(buckets[StatusInProgress]),
		DoneCount:       len(buckets[StatusDone]),
		BlockedCount:    len(buckets[StatusBlocked]),
		OverdueCount:    len(overdue),
	}
	if m.TotalTasks > 0 {
		m.CompletionRate = float64(m.DoneCount) / float64(m.TotalTasks)
	}
	res.Metrics = m

	sections := []string{renderHeader(in, m)}

	for _, status := range sectionOrder {
		entries := buckets[status]
		if len(entries) == 0 {
			continue
		}
		sortEntries(entries)
		sections = append(sections, renderSection(fmt.Sprintf("%s (%d)", status.Label(), len(entries)), entries))
		res.Entries = append(res.Entries, entries...)
	}

	if in.Config.IncludeOverdue && len(overdue) > 0 {
		// Earliest due date first is the same as most overdue first.
		sortEntries(overdue)
		res.Overdue = overdue
		sections = append(sections, renderSection(fmt.Sprintf("Overdue Tasks (%d)", len(overdue)), overdue))
	}

	res.TextSummary = strings.Join(sections, "\n\n")
	return res, nil
}

func newEntry(t TaskSnapshot, in Input) Entry {
	name := in.Assignees[t.AssigneeID]
	return Entry{
		Task:     t,
		Assignee: name,
		Urgency:  ClassifyUrgency(t.DueDate, t.Status, in.Now),
		Line:     RenderLine(t, in.Config, name, in.Now),
	}
}

func renderHeader(in Input, m Metrics) string {
	var sb strings.Builder

	if in.Project != nil && in.Project.Name != "" {
		fmt.Fprintf(&sb, "Daily Summary for Project: %s\n", singleLine(in.Project.Name))
	} else {
		sb.WriteString("Daily Summary\n")
	}
	fmt.Fprintf(&sb, "Generated: %s UTC\n", in.Now.UTC().Format("2006-01-02 15:04"))
	sb.WriteString(ruleLine + "\n")
	fmt.Fprintf(&sb, "Total Tasks: %d\n", m.TotalTasks)
	for _, status := range sectionOrder {
		fmt.Fprintf(&sb, "%s: %d\n", status.Label(), m.count(status))
	}
	fmt.Fprintf(&sb, "Completion Rate: %.1f%%", m.CompletionRate*100)

	return sb.String()
}

func renderSection(heading string, entries []Entry) string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, heading)
	for _, e := range entries {
		lines = append(lines, "  "+e.Line)
	}
	return strings.Join(lines, "\n")
}

// sortEntries orders by due date ascending, undated tasks last, then by ID.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Task, entries[j].Task
		switch {
		case a.DueDate != nil && b.DueDate != nil:
			if !a.DueDate.Equal(*b.DueDate) {
				return a.DueDate.Before(*b.DueDate)
			}
		case a.DueDate != nil:
			return true
		case b.DueDate != nil:
			return false
		}
		return compareIDs(a.ID, b.ID) < 0
	})
}

// compareIDs orders integer IDs numerically ahead of all other IDs, which
// compare lexically among themselves.
func compareIDs(a, b string) int {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}
