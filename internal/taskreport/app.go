package taskreport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Afrawles/taskreport/internal/clickup"
	"github.com/Afrawles/taskreport/internal/config"
	"github.com/Afrawles/taskreport/internal/localfile"
	"github.com/Afrawles/taskreport/internal/report"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Fs        afero.Fs
	Generator *report.Generator
	Exporter  *report.Exporter
	closer    io.Closer
}

// Run describes one generated report.
type Run struct {
	ID     string
	Result *report.Result
	Files  []string
}

// NewLogger builds the JSON logger. With a log file configured, output goes
// to a rotating file instead of stdout.
func NewLogger(cfg config.LogConfig) (*slog.Logger, io.Closer) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stdout
	var closer io.Closer
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		w, closer = lj, lj
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, closer
}

func New(cfg *config.Config, fs afero.Fs) *Application {
	logger, closer := NewLogger(cfg.Log)
	slog.SetDefault(logger)

	var sources []report.TaskSource

	if cfg.Input != "" {
		sources = append(sources, localfile.New(fs, cfg.Input))
		logger.Info("file source initialized", "path", cfg.Input)
	}

	if cfg.HasClickUp() {
		client := clickup.NewClient(cfg.ClickUp.APIKey)
		sources = append(sources, clickup.NewClickUpSource(client, cfg.ClickUp.ListIDs, cfg.ClickUp.FolderID, cfg.ClickUp.AssigneeIDs))
		logger.Info("ClickUp source initialized",
			"lists", len(cfg.ClickUp.ListIDs),
			"folder", cfg.ClickUp.FolderID,
			"assignees", len(cfg.ClickUp.AssigneeIDs),
		)
	}

	generator := report.NewGenerator(sources...)
	generator.Logger = logger

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Fs:        fs,
		Generator: generator,
		Exporter:  report.NewExporter(fs, cfg.Output.Directory),
		closer:    closer,
	}
}

func (app *Application) Close() error {
	if app.closer == nil {
		return nil
	}
	return app.closer.Close()
}

// Summarize collects from all sources and builds the summary at now.
func (app *Application) Summarize(ctx context.Context, now time.Time) (*report.Result, error) {
	ds, err := app.Generator.Collect(ctx)
	if err != nil {
		return nil, err
	}

	project := ds.Project
	if app.Config.Project != "" {
		project = &report.ProjectInfo{Name: app.Config.Project}
		if ds.Project != nil {
			project.ID = ds.Project.ID
		}
	}

	return report.BuildDailySummary(report.Input{
		Tasks:     ds.Tasks,
		Assignees: ds.Assignees,
		Project:   project,
		Config:    app.Config.Report,
		Now:       now,
	})
}

// GenerateReport builds the summary and writes it in every configured
// format. A failing exporter is logged and skipped.
func (app *Application) GenerateReport(ctx context.Context, now time.Time) (*Run, error) {
	run := &Run{ID: uuid.NewString()}
	logger := app.Logger.With("run_id", run.ID)

	logger.Info("generating report", "now", now.UTC().Format(time.RFC3339))

	res, err := app.Summarize(ctx, now)
	if err != nil {
		logger.Error("failed to generate report", "error", err)
		return nil, err
	}
	run.Result = res

	if res.Metrics.TotalTasks == 0 {
		logger.Warn("no tasks found")
	}

	dir := app.Config.Output.Directory
	if err := app.Fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := fmt.Sprintf("report_%s_%s", now.UTC().Format("20060102_150405"), run.ID[:8])

	for _, format := range app.Config.Output.Formats {
		files, err := app.export(format, res, base)
		if err != nil {
			logger.Error("export failed", "format", format, "error", err)
			continue
		}
		for _, f := range files {
			logger.Info("report exported", "format", format, "file", f)
		}
		run.Files = append(run.Files, files...)
	}

	logger.Info("report generation complete",
		"total", res.Metrics.TotalTasks,
		"done", res.Metrics.DoneCount,
		"overdue", res.Metrics.OverdueCount,
	)

	return run, nil
}

func (app *Application) export(format string, res *report.Result, base string) ([]string, error) {
	dir := app.Config.Output.Directory
	switch strings.ToLower(format) {
	case "text":
		name := base + ".txt"
		return []string{filepath.Join(dir, name)}, app.Exporter.ExportText(res, name)
	case "json":
		name := base + ".json"
		return []string{filepath.Join(dir, name)}, app.Exporter.ExportJSON(res, name)
	case "html":
		name := base + ".html"
		return []string{filepath.Join(dir, name)}, app.Exporter.ExportHTML(res, name, app.Config.Author)
	case "csv":
		stamp := res.GeneratedAt.UTC().Format("2006-01-02_15-04-05")
		files := []string{
			filepath.Join(dir, fmt.Sprintf("summary_%s_task_list.csv", stamp)),
			filepath.Join(dir, fmt.Sprintf("summary_%s_dashboard.csv", stamp)),
		}
		return files, report.NewCSVExporter(app.Fs, dir).Export(res)
	case "xlsx":
		name, err := report.NewExcelExporter(app.Fs, dir).Export(res)
		return []string{name}, err
	case "prom":
		name := base + ".prom"
		return []string{filepath.Join(dir, name)}, app.Exporter.ExportProm(res, name)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
