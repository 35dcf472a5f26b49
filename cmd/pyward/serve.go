package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pywardserver "github.com/HendryAvila/pyward/internal/server"
	"github.com/HendryAvila/pyward/internal/updater"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var skipUpdateCheck bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdin/stdout.

Add it to your AI tool's MCP configuration:

  {
    "mcpServers": {
      "pyward": {
        "command": "pyward",
        "args": ["serve"]
      }
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			s, cleanup, err := pywardserver.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			if !skipUpdateCheck {
				go checkForUpdates(cmd.Context(), logger)
			}

			logger.Info("serving MCP over stdio",
				zap.String("version", pywardserver.Version),
				zap.String("config", ctx.configPath),
			)
			return server.ServeStdio(s, server.WithErrorLogger(zap.NewStdLog(logger)))
		},
	}

	cmd.Flags().BoolVar(&skipUpdateCheck, "no-update-check", false, "Do not check GitHub for a newer release")
	return cmd
}

// checkForUpdates logs a notice when a newer release exists. Logs go to
// stderr, so the notice never interferes with the stdio transport.
// Failures are only logged at debug level.
func checkForUpdates(ctx context.Context, logger *zap.Logger) {
	result, err := updater.Check(ctx, pywardserver.Version)
	if err != nil {
		logger.Debug("update check failed", zap.Error(err))
		return
	}
	if result.UpdateAvailable {
		logger.Info("update available",
			zap.String("current", result.CurrentVersion),
			zap.String("latest", result.LatestVersion),
			zap.String("release", result.ReleaseURL),
		)
	}
}
