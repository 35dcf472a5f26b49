package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/pyward/internal/extract"
	"github.com/HendryAvila/pyward/internal/scan"
	"github.com/HendryAvila/pyward/internal/tracker"
)

type scanSummary struct {
	Root               string      `json:"root"`
	FilesScanned       int         `json:"files_scanned"`
	IdentifiersTracked int         `json:"identifiers_tracked"`
	Truncated          bool        `json:"truncated"`
	Skipped            []string    `json:"skipped,omitempty"`
	Files              []scan.File `json:"files"`
	ConsistencyIssues  []finding   `json:"consistency_issues"`
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var maxFiles int
	var listIdentifiers bool

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Extract every definition in a project and flag inconsistent names",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			root, err = filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", root, err)
			}

			ex, err := extract.New(cfg.Extract.Engine)
			if err != nil {
				return err
			}
			opts := scan.Options{
				MaxFiles:    cfg.Limits.MaxScanFiles,
				MaxFileSize: cfg.Limits.MaxFileBytes,
			}
			if cmd.Flags().Changed("max-files") {
				opts.MaxFiles = maxFiles
			}

			report, err := scan.Project(cmd.Context(), root, ex, opts)
			if err != nil {
				return err
			}

			tr := tracker.New()
			summary := scanSummary{
				Root:              report.Root,
				FilesScanned:      len(report.Files),
				Truncated:         report.Truncated,
				Skipped:           report.Skipped,
				Files:             report.Files,
				ConsistencyIssues: []finding{},
			}
			for _, f := range report.Files {
				summary.ConsistencyIssues = append(summary.ConsistencyIssues, trackFile(tr, f.Path, f.Identifiers)...)
			}
			summary.IdentifiersTracked = tr.Len()
			logger.Debug("scan finished",
				zap.String("root", report.Root),
				zap.Int("files", summary.FilesScanned),
				zap.Int("identifiers", summary.IdentifiersTracked),
				zap.Int("consistency_issues", len(summary.ConsistencyIssues)),
			)

			if wantJSON(cmd, jsonOutput) {
				return writeJSON(cmd, summary)
			}
			printScanSummary(cmd, summary, tr, listIdentifiers)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "Maximum number of files to scan (overrides config)")
	cmd.Flags().BoolVarP(&listIdentifiers, "identifiers", "i", false, "List every tracked identifier")
	return cmd
}

func printScanSummary(cmd *cobra.Command, summary scanSummary, tr *tracker.Tracker, listIdentifiers bool) {
	out := cmd.OutOrStdout()

	if listIdentifiers {
		records := tr.List("")
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			sig := ""
			if len(rec.Signatures) > 0 {
				sig = rec.Signatures[len(rec.Signatures)-1]
			}
			rows = append(rows, []string{rec.Name, string(rec.Kind), strconv.Itoa(rec.OccurrenceCount), sig})
		}
		fmt.Fprintln(out, renderTable("Identifiers",
			[]string{"Name", "Type", "Seen", "Signature"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		))
	}
	if len(summary.ConsistencyIssues) > 0 {
		fmt.Fprintln(out, renderFindings(summary.ConsistencyIssues))
	}
	for _, path := range summary.Skipped {
		fmt.Fprintf(out, "skipped: %s\n", path)
	}
	if summary.Truncated {
		fmt.Fprintln(out, "file limit reached: results are partial")
	}
	fmt.Fprintf(out, "Scanned %d files in %s: %d identifiers, %d naming issues\n",
		summary.FilesScanned, summary.Root, summary.IdentifiersTracked, len(summary.ConsistencyIssues))
}
