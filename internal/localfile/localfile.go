// Package localfile reads task snapshots from JSON, YAML or CSV exports.
package localfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Afrawles/taskreport/internal/report"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type Source struct {
	Fs   afero.Fs
	Path string
}

func New(fs afero.Fs, path string) *Source {
	return &Source{Fs: fs, Path: path}
}

var _ report.TaskSource = (*Source)(nil)

func (s *Source) Name() string {
	return "file:" + filepath.Base(s.Path)
}

func (s *Source) HealthCheck(ctx context.Context) error {
	ok, err := afero.Exists(s.Fs, s.Path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s does not exist", s.Path)
	}
	return nil
}

func (s *Source) FetchTasks(ctx context.Context) (*report.Dataset, error) {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}

	var doc *document
	switch ext := strings.ToLower(filepath.Ext(s.Path)); ext {
	case ".json":
		doc, err = parseJSON(data)
	case ".yaml", ".yml":
		doc, err = parseYAML(data)
	case ".csv":
		doc, err = parseCSV(data)
	default:
		return nil, fmt.Errorf("unsupported input format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}

	return doc.dataset()
}

type document struct {
	Project   *report.ProjectInfo `json:"project" yaml:"project"`
	Assignees map[string]string   `json:"assignees" yaml:"assignees"`
	Tasks     []taskRecord        `json:"tasks" yaml:"tasks"`
}

type taskRecord struct {
	ID            flexString `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description" yaml:"description"`
	Status        string     `json:"status" yaml:"status"`
	Priority      string     `json:"priority" yaml:"priority"`
	DueDate       string     `json:"due_date" yaml:"due_date"`
	AssignedTo    flexString `json:"assigned_to" yaml:"assigned_to"`
	CommentsCount int        `json:"comments_count" yaml:"comments_count"`
}

// flexString accepts either a JSON string or number, since exported task
// IDs are numeric in some systems and opaque strings in others.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

func (f *flexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*f = ""
		return nil
	}
	*f = flexString(node.Value)
	return nil
}

func parseJSON(data []byte) (*document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tasks []taskRecord
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, err
		}
		return &document{Tasks: tasks}, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func parseYAML(data []byte) (*document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return &document{}, nil
	}

	if root.Content[0].Kind == yaml.SequenceNode {
		var tasks []taskRecord
		if err := root.Content[0].Decode(&tasks); err != nil {
			return nil, err
		}
		return &document{Tasks: tasks}, nil
	}

	var doc document
	if err := root.Content[0].Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *document) dataset() (*report.Dataset, error) {
	ds := &report.Dataset{
		Tasks:     make([]report.TaskSnapshot, 0, len(d.Tasks)),
		Assignees: d.Assignees,
		Project:   d.Project,
	}
	if ds.Assignees == nil {
		ds.Assignees = map[string]string{}
	}

	for i, rec := range d.Tasks {
		t, err := rec.snapshot()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		ds.Tasks = append(ds.Tasks, t)
	}
	return ds, nil
}

// snapshot converts a record, applying the task model defaults (todo,
// medium) only when a field is absent. Unknown values are passed through
// for the report to reject.
func (r taskRecord) snapshot() (report.TaskSnapshot, error) {
	t := report.TaskSnapshot{
		ID:           strings.TrimSpace(string(r.ID)),
		Title:        r.Title,
		Description:  r.Description,
		Status:       report.Status(normalize(r.Status, string(report.StatusTodo))),
		Priority:     report.Priority(normalize(r.Priority, string(report.PriorityMedium))),
		AssigneeID:   strings.TrimSpace(string(r.AssignedTo)),
		CommentCount: r.CommentsCount,
	}

	if due := strings.TrimSpace(r.DueDate); due != "" {
		ts, err := ParseTime(due)
		if err != nil {
			return t, fmt.Errorf("due_date: %w", err)
		}
		t.DueDate = &ts
	}
	return t, nil
}

func normalize(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC3339 and the common zone-less forms, which are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
