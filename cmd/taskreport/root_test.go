package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestUrgencyCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"urgency", "--now", "2024-03-15T09:00:00Z", "--due", "2024-03-17T09:00:00Z"}, "moderate"},
		{[]string{"urgency", "--now", "2024-03-15T09:00:00Z", "--due", "2024-03-15T08:00:00Z", "--status", "done"}, "none"},
		{[]string{"urgency", "--now", "2024-03-15T09:00:00Z", "--due", "2024-03-15T22:00:00Z", "--status", "todo"}, "high"},
		{[]string{"urgency", "--now", "2024-03-15T09:00:00Z", "--due", "", "--status", "todo"}, "none"},
	}

	for _, tt := range tests {
		out, err := runCLI(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if strings.TrimSpace(out) != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.want, out)
		}
	}

	if _, err := runCLI(t, "urgency", "--status", "archived"); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestRootCommandWritesReport(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tasks.csv")
	content := "id,title,status,priority,due_date\n1,Prepare demo,in_progress,high,2024-03-15T15:00:00Z\n"
	if err := os.WriteFile(input, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	out, err := runCLI(t,
		"--config", filepath.Join(dir, "none.yaml"),
		"--input", input,
		"--output", filepath.Join(dir, "out"),
		"--format", "text",
		"--now", "2024-03-15T09:00:00Z",
		"--log-file", filepath.Join(dir, "run.log"),
		"--project", "Demo",
	)
	if err == nil {
		t.Fatal("Expected error for a missing --config file")
	}

	if err := os.WriteFile(filepath.Join(dir, "none.yaml"), []byte("author: Ops\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	out, err = runCLI(t,
		"--config", filepath.Join(dir, "none.yaml"),
		"--input", input,
		"--output", filepath.Join(dir, "out"),
		"--format", "text",
		"--now", "2024-03-15T09:00:00Z",
		"--log-file", filepath.Join(dir, "run.log"),
		"--project", "Demo",
	)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	for _, want := range []string{"Daily Summary for Project: Demo", "In Progress (1)", "#1 Prepare demo"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "out", "report_20240315_090000_*.txt"))
	if len(matches) != 1 {
		t.Errorf("Expected one text report, got %v", matches)
	}
}
