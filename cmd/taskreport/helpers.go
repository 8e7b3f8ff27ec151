package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Afrawles/taskreport/internal/localfile"
	"github.com/Afrawles/taskreport/internal/report"
	"github.com/Afrawles/taskreport/internal/taskreport"
	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

var boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// parseNow reads --now, falling back to the wall clock.
func parseNow(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	t, err := localfile.ParseTime(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: %w", err)
	}
	return t, nil
}

func summaryBox(run *taskreport.Run) string {
	m := run.Result.Metrics

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("Total tasks:"), m.TotalTasks)
	fmt.Fprintf(&b, "%s %.1f%%\n", labelStyle.Render("Completion: "), m.CompletionRate*100)
	overdue := fmt.Sprintf("%d", m.OverdueCount)
	if m.OverdueCount > 0 {
		overdue = warnStyle.Render(overdue)
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Overdue:    "), overdue)
	fmt.Fprintf(&b, "%s %s", labelStyle.Render("Run:        "), run.ID)

	for _, f := range run.Files {
		fmt.Fprintf(&b, "\n  -> %s", f)
	}
	return boxStyle.Render(b.String())
}

func urgencyLine(u report.Urgency) string {
	switch u {
	case report.UrgencyOverdue, report.UrgencyCritical:
		return warnStyle.Render(string(u))
	default:
		return string(u)
	}
}

func newSpinner(description string) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	_ = bar.RenderBlank()
	return bar
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}
