package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Generator struct {
	Sources []TaskSource
	Logger  *slog.Logger
}

func NewGenerator(sources ...TaskSource) *Generator {
	return &Generator{Sources: sources, Logger: slog.Default()}
}

// Collect fetches tasks from all sources and merges them into one dataset.
// A failing source is skipped; Collect only fails when every source failed.
func (g *Generator) Collect(ctx context.Context) (*Dataset, error) {
	merged := &Dataset{Assignees: make(map[string]string)}
	errors := make(map[string]error)

	for _, src := range g.Sources {
		g.Logger.Debug("fetching tasks", "source", src.Name())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := src.HealthCheck(ctx); err != nil {
			errors[src.Name()] = fmt.Errorf("health check failed: %w", err)
			g.Logger.Warn("source unavailable", "source", src.Name(), "error", err)
			continue
		}

		ds, err := src.FetchTasks(ctx)
		if err != nil {
			errors[src.Name()] = err
			g.Logger.Error("fetch failed", "source", src.Name(), "error", err)
			continue
		}

		g.Logger.Info("tasks fetched", "source", src.Name(), "count", len(ds.Tasks))
		merged.Tasks = append(merged.Tasks, ds.Tasks...)
		for id, name := range ds.Assignees {
			merged.Assignees[id] = name
		}
		if merged.Project == nil && ds.Project != nil {
			merged.Project = ds.Project
		}
	}

	if len(errors) > 0 && len(errors) == len(g.Sources) {
		return nil, fmt.Errorf("failed to fetch from all sources: %v", errors)
	}

	return merged, nil
}

// Generate collects from every source and builds the daily summary at now.
func (g *Generator) Generate(ctx context.Context, cfg Config, now time.Time) (*Result, error) {
	ds, err := g.Collect(ctx)
	if err != nil {
		return nil, err
	}

	return BuildDailySummary(Input{
		Tasks:     ds.Tasks,
		Assignees: ds.Assignees,
		Project:   ds.Project,
		Config:    cfg,
		Now:       now,
	})
}
