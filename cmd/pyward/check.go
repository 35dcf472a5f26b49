package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/pyward/internal/checker"
	"github.com/HendryAvila/pyward/internal/extract"
	"github.com/HendryAvila/pyward/internal/history"
	"github.com/HendryAvila/pyward/internal/suggest"
	"github.com/HendryAvila/pyward/internal/tracker"
)

// cliSessionID tags history runs recorded by the CLI.
const cliSessionID = "cli"

// errChecksFailed makes the process exit non-zero without repeating the
// report on stderr.
var errChecksFailed = errors.New("check failed")

type fileResult struct {
	Path         string               `json:"path"`
	Success      bool                 `json:"success"`
	CheckerError string               `json:"checker_error,omitempty"`
	Errors       []checker.Diagnostic `json:"errors"`
	Warnings     []checker.Diagnostic `json:"warnings"`
	Suggestions  []string             `json:"suggestions"`
}

type checkReport struct {
	Success           bool         `json:"success"`
	CheckerAvailable  bool         `json:"checker_available"`
	Files             []fileResult `json:"files"`
	ConsistencyIssues []finding    `json:"consistency_issues"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check <file.py>...",
		Short: "Type-check Python files and flag inconsistent names across them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			ex, err := extract.New(cfg.Extract.Engine)
			if err != nil {
				return err
			}
			chk := checker.NewPyrefly(cfg.Checker.Binary, cfg.CheckerTimeout(), logger)
			hist := ctx.openHistory(cfg, logger)
			if hist != nil {
				defer func() { _ = hist.Close() }()
			}

			tr := tracker.New()
			report := checkReport{
				Success:           true,
				CheckerAvailable:  true,
				Files:             make([]fileResult, 0, len(args)),
				ConsistencyIssues: []finding{},
			}

			for _, path := range args {
				code, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				if limit := cfg.Limits.MaxCodeBytes; limit > 0 && len(code) > limit {
					return fmt.Errorf("%s is %d bytes, limit is %d", path, len(code), limit)
				}

				fr := fileResult{
					Path:        filepath.ToSlash(path),
					Success:     true,
					Errors:      []checker.Diagnostic{},
					Warnings:    []checker.Diagnostic{},
					Suggestions: []string{},
				}
				res, err := chk.Check(cmd.Context(), checker.Request{
					Code:     string(code),
					Filename: filepath.Base(path),
				})
				switch {
				case errors.Is(err, checker.ErrUnavailable):
					report.CheckerAvailable = false
				case err != nil:
					logger.Warn("type check failed", zap.String("file", path), zap.Error(err))
					report.CheckerAvailable = false
					fr.CheckerError = err.Error()
				default:
					fr.Errors = res.Errors
					fr.Warnings = res.Warnings
					fr.Success = res.Success
				}

				ids, err := ex.Extract(cmd.Context(), code)
				if err != nil {
					logger.Warn("identifier extraction failed", zap.String("file", path), zap.Error(err))
				}
				issues := trackFile(tr, fr.Path, ids)
				report.ConsistencyIssues = append(report.ConsistencyIssues, issues...)

				for _, d := range fr.Errors {
					fr.Suggestions = append(fr.Suggestions, suggest.Suggest(d.Message, func(name string) []string {
						if c := tr.CheckConsistency(name); c != nil {
							return []string{c.Suggestion}
						}
						return nil
					})...)
				}

				fr.Success = fr.Success && len(issues) == 0
				report.Success = report.Success && fr.Success
				report.Files = append(report.Files, fr)
				recordCheck(hist, logger, fr, len(issues), report.CheckerAvailable)
			}

			if wantJSON(cmd, jsonOutput) {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printCheckReport(cmd, report)
			}
			if !report.Success {
				return errChecksFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func recordCheck(hist *history.Store, logger *zap.Logger, fr fileResult, issues int, checkerAvailable bool) {
	if hist == nil {
		return
	}
	_, err := hist.RecordRun(history.Run{
		SessionID:         cliSessionID,
		Filename:          fr.Path,
		Success:           fr.Success,
		ErrorCount:        len(fr.Errors),
		WarningCount:      len(fr.Warnings),
		ConsistencyIssues: issues,
		CheckerAvailable:  checkerAvailable,
	})
	if err != nil {
		logger.Warn("recording run failed", zap.Error(err))
	}
}

func printCheckReport(cmd *cobra.Command, report checkReport) {
	out := cmd.OutOrStdout()

	var rows [][]string
	var suggestions []string
	for _, fr := range report.Files {
		for _, d := range append(append([]checker.Diagnostic{}, fr.Errors...), fr.Warnings...) {
			rows = append(rows, []string{
				fr.Path,
				strconv.Itoa(d.Line),
				strconv.Itoa(d.Column),
				string(d.Severity),
				d.Code,
				d.Message,
			})
		}
		suggestions = append(suggestions, fr.Suggestions...)
		if fr.CheckerError != "" {
			fmt.Fprintf(out, "%s: type check failed: %s\n", fr.Path, fr.CheckerError)
		}
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable("Diagnostics",
			[]string{"File", "Line", "Col", "Severity", "Code", "Message"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
		))
	}
	if len(report.ConsistencyIssues) > 0 {
		fmt.Fprintln(out, renderFindings(report.ConsistencyIssues))
	}
	for _, s := range suggestions {
		fmt.Fprintf(out, "  • %s\n", s)
	}

	if !report.CheckerAvailable {
		fmt.Fprintln(out, "type checking unavailable: only naming consistency was checked")
	}
	fmt.Fprintf(out, "Files: %d  Naming issues: %d  Passed: %s\n",
		len(report.Files), len(report.ConsistencyIssues), yesNo(report.Success))
}
