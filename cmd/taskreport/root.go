package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Afrawles/taskreport/internal/config"
	"github.com/Afrawles/taskreport/internal/localfile"
	"github.com/Afrawles/taskreport/internal/report"
	"github.com/Afrawles/taskreport/internal/taskreport"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	configPath       string
	inputPath        string
	output           string
	formats          string
	nowFlag          string
	project          string
	author           string
	clickUpToken     string
	clickUpAssignees string
	clickupListIDs   string
	clickupFolderID  string
	includeOverdue   bool
	includeAssignees bool
	compact          bool
	logFile          string
	logLevel         string

	dueFlag    string
	statusFlag string
)

var rootCmd = &cobra.Command{
	Use:          "taskreport",
	Short:        "Generate daily task summaries with urgency classification",
	Long:         `TaskReport reads task snapshots from a file or ClickUp and renders a daily summary grouped by status, with overdue tracking.`,
	SilenceUsage: true,
	RunE:         generateReport,
}

var (
	summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Generate spreadsheet dashboards (for ops/business)",
		Long:  `Generates an XLSX workbook and CSV task list + dashboard from the same daily summary.`,
		RunE:  generateSummary,
	}

	urgencyCmd = &cobra.Command{
		Use:   "urgency",
		Short: "Classify a single due date",
		Args:  cobra.NoArgs,
		RunE:  classifyUrgency,
	}
)

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(summaryCmd, urgencyCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/taskreport/config.yaml)")
	pf.StringVarP(&inputPath, "input", "i", "", "Task file (json, yaml or csv)")
	pf.StringVarP(&output, "output", "o", "reports", "Output directory")
	pf.StringVar(&nowFlag, "now", "", "Reference time (RFC3339, default current time)")
	pf.StringVar(&project, "project", "", "Project name shown in the header")
	pf.StringVar(&author, "author", "", "Report author")
	pf.StringVar(&logFile, "log-file", "", "Write logs to a rotating file instead of stdout")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// clickup
	pf.StringVar(&clickUpToken, "clickup-token", "", "ClickUp API token")
	pf.StringVar(&clickUpAssignees, "clickup-assignees", "", "Comma-separated ClickUp assignee IDs")
	pf.StringVar(&clickupListIDs, "clickup-listid", "", "ClickUp List IDs (comma-separated)")
	pf.StringVar(&clickupFolderID, "clickup-folderid", "", "ClickUp Folder ID (fetches all lists in folder)")

	pf.BoolVar(&includeOverdue, "include-overdue", true, "Add an Overdue Tasks section")
	pf.BoolVar(&includeAssignees, "include-assignees", true, "Show assignees on task lines")
	pf.BoolVar(&compact, "compact", false, "Omit comment counts and descriptions")

	rootCmd.Flags().StringVar(&formats, "format", "text", "Comma-separated formats: text, json, html, csv, xlsx, prom")

	urgencyCmd.Flags().StringVar(&dueFlag, "due", "", "Due date (RFC3339 or YYYY-MM-DD); empty means no due date")
	urgencyCmd.Flags().StringVar(&statusFlag, "status", string(report.StatusTodo), "Task status: todo, in_progress, done, blocked")
}

// loadConfig layers defaults, the config file, the environment and finally
// any flag that was set explicitly.
func loadConfig(cmd *cobra.Command, fs afero.Fs) (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.LoadFile(fs, path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = inputPath
	}
	if flags.Changed("output") {
		cfg.Output.Directory = output
	}
	if flags.Changed("format") {
		cfg.Output.Formats = config.SplitList(strings.ToLower(formats))
	}
	if flags.Changed("project") {
		cfg.Project = project
	}
	if flags.Changed("author") {
		cfg.Author = author
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("clickup-token") {
		cfg.ClickUp.APIKey = clickUpToken
	}
	if flags.Changed("clickup-assignees") {
		cfg.ClickUp.AssigneeIDs = config.SplitList(clickUpAssignees)
	}
	if flags.Changed("clickup-listid") {
		cfg.ClickUp.ListIDs = config.SplitList(clickupListIDs)
	}
	if flags.Changed("clickup-folderid") {
		cfg.ClickUp.FolderID = clickupFolderID
	}
	if flags.Changed("include-overdue") {
		cfg.Report.IncludeOverdue = includeOverdue
	}
	if flags.Changed("include-assignees") {
		cfg.Report.IncludeAssignees = includeAssignees
	}
	if flags.Changed("compact") {
		cfg.Report.Compact = compact
	}

	return cfg, nil
}

func runReport(cmd *cobra.Command, cfg *config.Config, fs afero.Fs) (*taskreport.Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now, err := parseNow(nowFlag)
	if err != nil {
		return nil, err
	}

	app := taskreport.New(cfg, fs)
	defer app.Close()

	bar := newSpinner("Fetching tasks")
	run, err := app.GenerateReport(cmd.Context(), now)
	finishBar(bar)
	if err != nil {
		return nil, fmt.Errorf("error generating report: %w", err)
	}
	return run, nil
}

func generateReport(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()
	cfg, err := loadConfig(cmd, fs)
	if err != nil {
		return err
	}

	run, err := runReport(cmd, cfg, fs)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", run.Result.TextSummary)
	fmt.Fprintln(cmd.OutOrStdout(), summaryBox(run))
	return nil
}

func generateSummary(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()
	cfg, err := loadConfig(cmd, fs)
	if err != nil {
		return err
	}
	cfg.Output.Formats = []string{"xlsx", "csv"}

	run, err := runReport(cmd, cfg, fs)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nSummary report ready for business team!")
	fmt.Fprintln(cmd.OutOrStdout(), summaryBox(run))
	return nil
}

func classifyUrgency(cmd *cobra.Command, args []string) error {
	now, err := parseNow(nowFlag)
	if err != nil {
		return err
	}

	status := report.Status(strings.ToLower(strings.TrimSpace(statusFlag)))
	if !status.Valid() {
		return fmt.Errorf("unknown status %q: %w", statusFlag, report.ErrInvalidTaskData)
	}

	var due *time.Time
	if dueFlag != "" {
		t, err := localfile.ParseTime(dueFlag)
		if err != nil {
			return fmt.Errorf("invalid --due: %w", err)
		}
		due = &t
	}

	fmt.Fprintln(cmd.OutOrStdout(), urgencyLine(report.ClassifyUrgency(due, status, now)))
	return nil
}
