package config

import (
	"testing"

	"github.com/Afrawles/taskreport/internal/report"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
input: tasks.json
project: Apollo
clickup:
  api_key: pk_123
  list_ids: [L1, L2]
output:
  directory: out
  formats: [text, html]
report:
  include_overdue: false
  compact: true
log:
  level: debug
`
	if err := afero.WriteFile(fs, "config.yaml", []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := LoadFile(fs, "config.yaml")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	want := &Config{
		Input:   "tasks.json",
		Project: "Apollo",
		ClickUp: ClickUpConfig{APIKey: "pk_123", ListIDs: []string{"L1", "L2"}},
		Output:  OutputConfig{Directory: "out", Formats: []string{"text", "html"}},
		// include_assignees keeps its default
		Report: report.Config{IncludeOverdue: false, IncludeAssignees: true, Compact: true},
		Log:    LogConfig{Level: "debug"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := LoadFile(afero.NewMemMapFs(), "")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := LoadFile(fs, "missing.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}

	if err := afero.WriteFile(fs, "bad.yaml", []byte("output: [unclosed"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadFile(fs, "bad.yaml"); err == nil {
		t.Error("Expected error for malformed yaml")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CLICKUP_API_KEY", "pk_env")
	t.Setenv("CLICKUP_LISTIDS", "A, B,,C")
	t.Setenv("CLICKUP_ASSIGNEE_IDS", "7")
	t.Setenv("OUTPUT_FORMAT", "json,prom")
	t.Setenv("REPORT_COMPACT", "true")
	t.Setenv("REPORT_INCLUDE_OVERDUE", "not-a-bool")

	cfg := DefaultConfig()
	cfg.Input = "from-file.json"
	cfg.ApplyEnv()

	if cfg.Input != "from-file.json" {
		t.Errorf("Expected file value kept when env unset, got %q", cfg.Input)
	}
	if cfg.ClickUp.APIKey != "pk_env" {
		t.Errorf("Expected pk_env, got %q", cfg.ClickUp.APIKey)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, cfg.ClickUp.ListIDs); diff != "" {
		t.Errorf("list ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"json", "prom"}, cfg.Output.Formats); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Report.Compact {
		t.Error("Expected compact from env")
	}
	if !cfg.Report.IncludeOverdue {
		t.Error("Expected invalid bool to leave the default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASKREPORT_INPUT", "tasks.csv")
	t.Setenv("OUTPUT_DIR", "daily")
	t.Setenv("CLICKUP_API_KEY", "")
	t.Setenv("OUTPUT_FORMAT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.Input != "tasks.csv" || cfg.Output.Directory != "daily" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"file source", func(c *Config) { c.Input = "t.json" }, false},
		{"no source", func(c *Config) {}, true},
		{"clickup with lists", func(c *Config) {
			c.ClickUp.APIKey = "k"
			c.ClickUp.ListIDs = []string{"1"}
		}, false},
		{"clickup with folder", func(c *Config) {
			c.ClickUp.APIKey = "k"
			c.ClickUp.FolderID = "f"
		}, false},
		{"clickup without lists", func(c *Config) { c.ClickUp.APIKey = "k" }, true},
		{"unknown format", func(c *Config) {
			c.Input = "t.json"
			c.Output.Formats = []string{"pdf"}
		}, true},
		{"no formats", func(c *Config) {
			c.Input = "t.json"
			c.Output.Formats = nil
		}, true},
		{"bad log level", func(c *Config) {
			c.Input = "t.json"
			c.Log.Level = "loud"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	if got := SplitList(""); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
	if diff := cmp.Diff([]string{"a", "b"}, SplitList(" a ,, b ")); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
