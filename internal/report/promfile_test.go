package report

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
)

func TestReportCollectors(t *testing.T) {
	res := sampleResult(t)
	reg, c := newReportCollectors(res)

	if got := testutil.ToFloat64(c.tasks.WithLabelValues("todo")); got != 1 {
		t.Errorf("Expected 1 todo task, got %v", got)
	}
	if got := testutil.ToFloat64(c.urgency.WithLabelValues("overdue")); got != 1 {
		t.Errorf("Expected 1 overdue task, got %v", got)
	}
	if got := testutil.ToFloat64(c.priority.WithLabelValues("medium")); got != 0 {
		t.Errorf("Expected 0 medium tasks, got %v", got)
	}
	if got := testutil.ToFloat64(c.overdue); got != 1 {
		t.Errorf("Expected overdue gauge 1, got %v", got)
	}

	// 4 statuses + 6 urgency labels + 4 priorities + 3 plain gauges
	if n, err := testutil.GatherAndCount(reg); err != nil || n != 17 {
		t.Errorf("Expected 17 series, got %d (%v)", n, err)
	}
}

func TestExportProm(t *testing.T) {
	fs, e := newMemExporter(t)

	if err := e.ExportProm(sampleResult(t), "taskreport.prom"); err != nil {
		t.Fatalf("ExportProm failed: %v", err)
	}

	data, err := afero.ReadFile(fs, "out/taskreport.prom")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	for _, want := range []string{
		"# TYPE taskreport_tasks gauge",
		`taskreport_tasks{status="in_progress"} 1`,
		`taskreport_tasks_by_priority{priority="critical"} 1`,
		`taskreport_generated_timestamp_seconds 1.7104932e+09`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %q in:\n%s", want, data)
		}
	}
}
