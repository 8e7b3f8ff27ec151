package report

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

type ExcelExporter struct {
	Fs        afero.Fs
	OutputDir string
}

func NewExcelExporter(fs afero.Fs, outputDir string) *ExcelExporter {
	return &ExcelExporter{Fs: fs, OutputDir: outputDir}
}

// Export writes summary_<stamp>.xlsx with a Dashboard sheet followed by one
// sheet per non-empty status and, when present, an Overdue sheet.
func (e *ExcelExporter) Export(res *Result) (string, error) {
	timestamp := res.GeneratedAt.UTC().Format("2006-01-02_15-04-05")
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("summary_%s.xlsx", timestamp))

	f := excelize.NewFile()
	defer f.Close()

	if err := e.createDashboardSheet(f, "Dashboard", res); err != nil {
		return "", fmt.Errorf("failed to create dashboard: %w", err)
	}

	for _, status := range sectionOrder {
		var entries []Entry
		for _, entry := range res.Entries {
			if entry.Task.Status == status {
				entries = append(entries, entry)
			}
		}
		if len(entries) == 0 {
			continue
		}
		if err := e.createTaskSheet(f, sanitizeSheetName(status.Label()), entries); err != nil {
			return "", fmt.Errorf("failed to create sheet for %s: %w", status, err)
		}
	}

	if len(res.Overdue) > 0 {
		if err := e.createTaskSheet(f, "Overdue", res.Overdue); err != nil {
			return "", fmt.Errorf("failed to create overdue sheet: %w", err)
		}
	}

	if idx, err := f.GetSheetIndex("Dashboard"); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := e.Fs.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := e.Fs.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create excel file: %w", err)
	}
	defer out.Close()

	if err := f.Write(out); err != nil {
		return "", fmt.Errorf("failed to save excel file: %w", err)
	}

	return filename, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
}

func totalStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#B4C7E7"}, Pattern: 1},
		Font:   &excelize.Font{Bold: true},
		Border: thinBorder(),
	})
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}
}

func (e *ExcelExporter) createDashboardSheet(f *excelize.File, sheetName string, res *Result) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	hdr, err := headerStyle(f)
	if err != nil {
		return err
	}
	tot, err := totalStyle(f)
	if err != nil {
		return err
	}

	project := ""
	if res.Project != nil {
		project = res.Project.Name
	}
	f.SetCellValue(sheetName, "A1", "Project:")
	f.SetCellValue(sheetName, "B1", project)
	f.SetCellValue(sheetName, "A2", "Generated:")
	f.SetCellValue(sheetName, "B2", res.GeneratedAt.UTC().Format("2006-01-02 15:04"))
	f.SetCellValue(sheetName, "A3", "Completion Rate:")
	f.SetCellValue(sheetName, "B3", res.Metrics.CompletionRate)
	f.SetCellValue(sheetName, "A4", "Overdue:")
	f.SetCellValue(sheetName, "B4", res.Metrics.OverdueCount)

	rows := dashboardRows(res)
	startRow := 6
	for i, row := range rows {
		r := startRow + i
		for c, value := range row {
			cell := cellName(c+1, r)
			if n, err := strconv.Atoi(value); err == nil && c > 0 {
				f.SetCellValue(sheetName, cell, n)
			} else {
				f.SetCellValue(sheetName, cell, value)
			}
			switch {
			case i == 0:
				f.SetCellStyle(sheetName, cell, cell, hdr)
			case i == len(rows)-1:
				f.SetCellStyle(sheetName, cell, cell, tot)
			}
		}
	}

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", columnLetter(len(rows[0])), 12)

	return nil
}

func (e *ExcelExporter) createTaskSheet(f *excelize.File, sheetName string, entries []Entry) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	hdr, err := headerStyle(f)
	if err != nil {
		return err
	}

	for col, header := range taskListHeader {
		cell := cellName(col+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, hdr)
	}

	for i, entry := range entries {
		row := i + 2
		for col, value := range taskRow(i+1, entry) {
			f.SetCellValue(sheetName, cellName(col+1, row), value)
		}
	}

	f.SetColWidth(sheetName, "A", "B", 6)
	f.SetColWidth(sheetName, "C", "C", 40)
	f.SetColWidth(sheetName, "D", "H", 16)

	return f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", columnLetter(col), row)
}

func columnLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

func sanitizeSheetName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, "?", "")
	name = strings.ReplaceAll(name, "*", "")
	name = strings.ReplaceAll(name, "[", "(")
	name = strings.ReplaceAll(name, "]", ")")

	if len(name) > 31 {
		name = name[:31]
	}

	return name
}
