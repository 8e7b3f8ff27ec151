package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeSource struct {
	name      string
	ds        *Dataset
	fetchErr  error
	healthErr error
	fetched   bool
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) HealthCheck(ctx context.Context) error { return f.healthErr }

func (f *fakeSource) FetchTasks(ctx context.Context) (*Dataset, error) {
	f.fetched = true
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.ds, nil
}

func quietGenerator(sources ...TaskSource) *Generator {
	g := NewGenerator(sources...)
	g.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return g
}

func TestGeneratorCollectMerges(t *testing.T) {
	a := &fakeSource{name: "a", ds: &Dataset{
		Tasks:     []TaskSnapshot{{ID: "1", Title: "A", Status: StatusTodo, Priority: PriorityLow}},
		Assignees: map[string]string{"u1": "Alice", "u2": "Old"},
		Project:   &ProjectInfo{Name: "First"},
	}}
	b := &fakeSource{name: "b", ds: &Dataset{
		Tasks:     []TaskSnapshot{{ID: "2", Title: "B", Status: StatusDone, Priority: PriorityHigh}},
		Assignees: map[string]string{"u2": "Bob"},
		Project:   &ProjectInfo{Name: "Second"},
	}}

	ds, err := quietGenerator(a, b).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(ds.Tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(ds.Tasks))
	}
	if ds.Assignees["u2"] != "Bob" {
		t.Errorf("Expected later source to win, got %q", ds.Assignees["u2"])
	}
	if ds.Project == nil || ds.Project.Name != "First" {
		t.Errorf("Expected first project kept, got %+v", ds.Project)
	}
}

func TestGeneratorCollectSkipsFailingSource(t *testing.T) {
	bad := &fakeSource{name: "bad", healthErr: errors.New("down")}
	good := &fakeSource{name: "good", ds: &Dataset{
		Tasks: []TaskSnapshot{{ID: "1", Title: "A", Status: StatusTodo, Priority: PriorityLow}},
	}}

	ds, err := quietGenerator(bad, good).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if bad.fetched {
		t.Errorf("Expected unhealthy source not to be fetched")
	}
	if len(ds.Tasks) != 1 {
		t.Errorf("Expected 1 task, got %d", len(ds.Tasks))
	}
}

func TestGeneratorCollectAllFail(t *testing.T) {
	a := &fakeSource{name: "a", fetchErr: errors.New("boom")}
	b := &fakeSource{name: "b", healthErr: errors.New("down")}

	if _, err := quietGenerator(a, b).Collect(context.Background()); err == nil {
		t.Fatal("Expected error when every source fails")
	}
}

func TestGeneratorCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{name: "a", ds: &Dataset{}}
	_, err := quietGenerator(src).Collect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestGeneratorGenerate(t *testing.T) {
	src := &fakeSource{name: "a", ds: &Dataset{
		Tasks: []TaskSnapshot{
			{ID: "1", Title: "Late", Status: StatusTodo, Priority: PriorityHigh, DueDate: at(-25 * time.Hour)},
		},
		Project: &ProjectInfo{Name: "Apollo"},
	}}

	res, err := quietGenerator(src).Generate(context.Background(), DefaultConfig(), testNow)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Metrics.OverdueCount != 1 {
		t.Errorf("Expected 1 overdue, got %d", res.Metrics.OverdueCount)
	}
	if !res.GeneratedAt.Equal(testNow) {
		t.Errorf("Expected GeneratedAt %v, got %v", testNow, res.GeneratedAt)
	}
	if res.Project == nil || res.Project.Name != "Apollo" {
		t.Errorf("Expected project Apollo, got %+v", res.Project)
	}
}
