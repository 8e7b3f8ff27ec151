package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed "templates"
var templateFS embed.FS

type Exporter struct {
	Fs        afero.Fs
	OutputDir string
}

func NewExporter(fs afero.Fs, outputDir string) *Exporter {
	return &Exporter{Fs: fs, OutputDir: outputDir}
}

func (e *Exporter) path(filename string) string {
	return filepath.Join(e.OutputDir, filename)
}

// ExportText writes the plain text summary exactly as built.
func (e *Exporter) ExportText(res *Result, filename string) error {
	return afero.WriteFile(e.Fs, e.path(filename), []byte(res.TextSummary+"\n"), 0644)
}

func (e *Exporter) ExportJSON(res *Result, filename string) error {
	data, err := json.MarshalIndent(res, "", "\t")
	if err != nil {
		return err
	}

	return afero.WriteFile(e.Fs, e.path(filename), data, 0644)
}

type statusGroup struct {
	Label   string
	Entries []Entry
}

func (e *Exporter) ExportHTML(res *Result, filename, author string) error {
	funcMap := template.FuncMap{
		"title":   cases.Title(language.English).String,
		"percent": func(rate float64) string { return fmt.Sprintf("%.1f%%", rate*100) },
		"due": func(t TaskSnapshot) string {
			if t.DueDate == nil {
				return ""
			}
			return t.DueDate.UTC().Format("2006-01-02 15:04")
		},
	}
	tmpl, err := template.New("report.tmpl").Funcs(funcMap).ParseFS(templateFS, "templates/report.tmpl")
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	outputPath := e.path(filename)
	f, err := e.Fs.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer f.Close()

	var groups []statusGroup
	for _, status := range sectionOrder {
		g := statusGroup{Label: status.Label()}
		for _, entry := range res.Entries {
			if entry.Task.Status == status {
				g.Entries = append(g.Entries, entry)
			}
		}
		if len(g.Entries) > 0 {
			groups = append(groups, g)
		}
	}

	projectName := ""
	if res.Project != nil {
		projectName = res.Project.Name
	}

	urgency := make([]struct {
		Label Urgency
		Count int
	}, 0, len(urgencyOrder))
	for _, u := range urgencyOrder {
		urgency = append(urgency, struct {
			Label Urgency
			Count int
		}{u, res.UrgencyCounts[u]})
	}

	data := map[string]any{
		"Date":        res.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
		"Project":     projectName,
		"Metrics":     res.Metrics,
		"Groups":      groups,
		"Overdue":     res.Overdue,
		"Urgency":     urgency,
		"SubmittedBy": author,
	}

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}

	return nil
}
