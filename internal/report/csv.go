package report

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
)

type CSVExporter struct {
	Fs        afero.Fs
	OutputDir string
}

func NewCSVExporter(fs afero.Fs, outputDir string) *CSVExporter {
	return &CSVExporter{Fs: fs, OutputDir: outputDir}
}

var taskListHeader = []string{
	"#",
	"ID",
	"Task Name",
	"Assignee",
	"Status",
	"Priority",
	"Due Date",
	"Urgency",
	"Comments",
}

// Export writes summary_<stamp>_task_list.csv and summary_<stamp>_dashboard.csv.
func (e *CSVExporter) Export(res *Result) error {
	if err := e.Fs.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := res.GeneratedAt.UTC().Format("2006-01-02_15-04-05")

	if err := e.exportTaskList(res, timestamp); err != nil {
		return fmt.Errorf("failed to export task list: %w", err)
	}

	if err := e.exportDashboard(res, timestamp); err != nil {
		return fmt.Errorf("failed to export dashboard: %w", err)
	}

	return nil
}

func (e *CSVExporter) exportTaskList(res *Result, timestamp string) error {
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("summary_%s_task_list.csv", timestamp))
	file, err := e.Fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(taskListHeader); err != nil {
		return err
	}

	for i, entry := range res.Entries {
		if err := writer.Write(taskRow(i+1, entry)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (e *CSVExporter) exportDashboard(res *Result, timestamp string) error {
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("summary_%s_dashboard.csv", timestamp))
	file, err := e.Fs.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	project := ""
	if res.Project != nil {
		project = res.Project.Name
	}
	rows := [][]string{
		{"Project:", project},
		{"Generated:", res.GeneratedAt.UTC().Format("2006-01-02 15:04")},
		{"Completion Rate:", fmt.Sprintf("%.1f%%", res.Metrics.CompletionRate*100)},
		{""},
	}
	rows = append(rows, dashboardRows(res)...)

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// dashboardRows cross-tabulates status against urgency, with totals.
func dashboardRows(res *Result) [][]string {
	header := []string{"Task Status"}
	for _, u := range urgencyOrder {
		header = append(header, string(u))
	}
	header = append(header, "Total")

	counts := make(map[Status]map[Urgency]int)
	for _, entry := range res.Entries {
		if counts[entry.Task.Status] == nil {
			counts[entry.Task.Status] = make(map[Urgency]int)
		}
		counts[entry.Task.Status][entry.Urgency]++
	}

	rows := [][]string{header}
	columnTotals := make(map[Urgency]int)
	for _, status := range sectionOrder {
		row := []string{status.Label()}
		total := 0
		for _, u := range urgencyOrder {
			n := counts[status][u]
			row = append(row, strconv.Itoa(n))
			total += n
			columnTotals[u] += n
		}
		row = append(row, strconv.Itoa(total))
		rows = append(rows, row)
	}

	totalsRow := []string{"Total"}
	for _, u := range urgencyOrder {
		totalsRow = append(totalsRow, strconv.Itoa(columnTotals[u]))
	}
	totalsRow = append(totalsRow, strconv.Itoa(res.Metrics.TotalTasks))
	return append(rows, totalsRow)
}

func taskRow(n int, entry Entry) []string {
	assignee := entry.Assignee
	if assignee == "" {
		assignee = entry.Task.AssigneeID
	}
	return []string{
		strconv.Itoa(n),
		entry.Task.ID,
		entry.Task.Title,
		assignee,
		entry.Task.Status.Label(),
		string(entry.Task.Priority),
		formatDatePtr(entry.Task.DueDate),
		string(entry.Urgency),
		strconv.Itoa(entry.Task.CommentCount),
	}
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("02/01/06 15:04")
}
