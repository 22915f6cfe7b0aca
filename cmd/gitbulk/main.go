package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gitbulk/internal/config"
	"gitbulk/internal/ui"
)

func buildRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "gitbulk",
		Short: "Manage every git repository under a directory at once",
		Long: `gitbulk discovers the git repositories under a root directory and shows
them as a tree. Status refresh, fetch, pull, checkout, reset and branch
deletion run per repository or concurrently across all of them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, _ []string) error {
			a, err := injectApp(f)
			if err != nil {
				return err
			}
			defer a.bus.Close()

			closeLog, err := setupLogging(a.cfg, f.debug)
			if err != nil {
				return err
			}
			defer closeLog()

			return ui.Run(command.Context(), ui.Deps{
				Orchestrator:  a.orch,
				Bus:           a.bus,
				Pipeline:      a.pipeline,
				Config:        a.cfg,
				ConfigService: a.configSvc,
			})
		},
	}

	cmd.PersistentFlags().StringVarP(&f.path, "path", "p", "",
		"Root directory to scan for repositories (default: base_dir from the config, else the working directory)")
	cmd.PersistentFlags().StringVarP(&f.configPath, "config", "c", "",
		"Path to config file (default: "+config.DefaultPath()+")")
	cmd.PersistentFlags().BoolVar(&f.debug, "debug", os.Getenv("DEBUG") == "true",
		"Enable debug logging")

	cmd.AddCommand(buildStatusCommand(&f))
	return cmd
}

// setupLogging sends diagnostics to the configured log file, away from the terminal
func setupLogging(cfg *config.Config, debug bool) (func(), error) {
	logger.SetFormatter(&logger.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	logger.SetLevel(cfg.LogLevel())
	if debug {
		logger.SetLevel(logger.DebugLevel)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(logFile)
	logger.Debugf("Logging to %s", cfg.Log.File)

	return func() { _ = logFile.Close() }, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := buildRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
