package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/Afrawles/taskreport/internal/report"
	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Input   string        `yaml:"input"`
	Project string        `yaml:"project"`
	ClickUp ClickUpConfig `yaml:"clickup"`
	Output  OutputConfig  `yaml:"output"`
	Report  report.Config `yaml:"report"`
	Log     LogConfig     `yaml:"log"`
	Author  string        `yaml:"author"`
}

type ClickUpConfig struct {
	APIKey      string   `yaml:"api_key"`
	AssigneeIDs []string `yaml:"assignee_ids"`
	ListIDs     []string `yaml:"list_ids"`
	FolderID    string   `yaml:"folder_id"`
}

type OutputConfig struct {
	Directory string   `yaml:"directory"`
	Formats   []string `yaml:"formats"` // text, json, html, csv, xlsx, prom
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

var knownFormats = map[string]bool{
	"text": true,
	"json": true,
	"html": true,
	"csv":  true,
	"xlsx": true,
	"prom": true,
}

var knownLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Directory: "reports",
			Formats:   []string{"text"},
		},
		Report: report.DefaultConfig(),
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultPath returns the config file under the XDG config dirs, or "" when
// none exists.
func DefaultPath() string {
	path, err := xdg.SearchConfigFile("taskreport/config.yaml")
	if err != nil {
		return ""
	}
	return path
}

// LoadFile overlays a YAML file onto the defaults.
func LoadFile(fsys afero.Fs, path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func LoadFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields for every variable that is set.
func (c *Config) ApplyEnv() {
	c.Input = getEnvOrDefault("TASKREPORT_INPUT", c.Input)
	c.Project = getEnvOrDefault("TASKREPORT_PROJECT", c.Project)
	c.Author = getEnvOrDefault("REPORT_AUTHOR", c.Author)

	c.ClickUp.APIKey = getEnvOrDefault("CLICKUP_API_KEY", c.ClickUp.APIKey)
	c.ClickUp.FolderID = getEnvOrDefault("CLICKUP_FOLDERID", c.ClickUp.FolderID)
	if v := os.Getenv("CLICKUP_LISTIDS"); v != "" {
		c.ClickUp.ListIDs = SplitList(v)
	}
	if v := os.Getenv("CLICKUP_ASSIGNEE_IDS"); v != "" {
		c.ClickUp.AssigneeIDs = SplitList(v)
	}

	c.Output.Directory = getEnvOrDefault("OUTPUT_DIR", c.Output.Directory)
	if v := os.Getenv("OUTPUT_FORMAT"); v != "" {
		c.Output.Formats = SplitList(v)
	}

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnvOrDefault("LOG_FILE", c.Log.File)

	c.Report.IncludeOverdue = getEnvBool("REPORT_INCLUDE_OVERDUE", c.Report.IncludeOverdue)
	c.Report.IncludeAssignees = getEnvBool("REPORT_INCLUDE_ASSIGNEES", c.Report.IncludeAssignees)
	c.Report.Compact = getEnvBool("REPORT_COMPACT", c.Report.Compact)
}

func (c *Config) HasClickUp() bool {
	return c.ClickUp.APIKey != ""
}

func (c *Config) Validate() error {
	hasSource := c.Input != ""

	if c.ClickUp.APIKey != "" {
		if len(c.ClickUp.ListIDs) == 0 && c.ClickUp.FolderID == "" {
			return fmt.Errorf("CLICKUP_API_KEY provided but neither CLICKUP_LISTIDS nor CLICKUP_FOLDERID set")
		}
		hasSource = true
	}

	if !hasSource {
		return fmt.Errorf("no data sources configured (set an input file or CLICKUP_API_KEY)")
	}

	if len(c.Output.Formats) == 0 {
		return fmt.Errorf("no output formats configured")
	}
	for _, f := range c.Output.Formats {
		if !knownFormats[f] {
			return fmt.Errorf("unknown output format %q", f)
		}
	}

	if c.Log.Level != "" && !knownLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	return nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
