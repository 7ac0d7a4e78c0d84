package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vesla0x1/reentrancy-analyzer/internal/analyzer"
	"github.com/vesla0x1/reentrancy-analyzer/internal/logger"
	"github.com/vesla0x1/reentrancy-analyzer/internal/report"
	"github.com/vesla0x1/reentrancy-analyzer/internal/ui"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "analyze <path>",
		Short: "Analyze a build-info JSON file or a directory of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", `output format: "text" or "json"`)
	cmd.Flags().StringVar(&output, "output", "", "write the report instead of stdout, under the configured report directory with this name (sanitized)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path, format, output string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q: must be \"text\" or \"json\"", format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(flagVerbose)
	if err := log.Init(cfg.LogDir); err != nil {
		ui.LogError("could not open log file, continuing with console logging only: %v", err)
	}
	defer log.Close()

	start := time.Now()
	stop := ui.StartSpinner(fmt.Sprintf("analyzing %s", path))

	a := analyzer.New(log)
	result, err := a.Analyze(context.Background(), path)
	stop <- true

	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	for _, p := range result.Report.Patterns {
		ui.LogPattern(p.Function, p.Classification, p.Severity)
	}
	ui.PrintSummary(
		result.Report.Summary.TotalContracts,
		result.Report.Summary.TotalFunctions,
		result.Report.Summary.TotalPatterns,
		time.Since(start),
	)

	rendered, err := renderReport(result.Report, format)
	if err != nil {
		return err
	}

	if output == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return err
	}

	savedPath, err := report.Save(cfg.ReportDir, reportFilename(output, format), rendered)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	ui.LogSuccess("report written to %s", savedPath)
	return nil
}

func renderReport(r report.Result, format string) (string, error) {
	if format == "json" {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal report: %w", err)
		}
		return string(data), nil
	}
	return report.RenderText(r), nil
}

func reportFilename(output, format string) string {
	if output != "" {
		return output
	}
	if format == "json" {
		return "report.json"
	}
	return "report.md"
}
