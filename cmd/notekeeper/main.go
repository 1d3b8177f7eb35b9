// Package main provides notekeeper, a service that keeps the YAML
// frontmatter of a markdown note tree consistent with where the notes
// actually live on disk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"notekeeper/internal/config"
	"notekeeper/internal/fs"
	"notekeeper/internal/keeper"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr *os.File) int {
	flags := pflag.NewFlagSet("notekeeper", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath = flags.StringP("config", "c", "", "path to a JSONC config file")
		dataDir    = flags.String("data-dir", "", "root of the note tree (overrides config)")
		logLevel   = flags.String("log-level", "", "debug, info, warn, or error (overrides config)")
		dryRun     = flags.Bool("dry-run", false, "log intended changes without writing anything")
		watch      = flags.Bool("watch", false, "also trigger passes on filesystem changes")
		once       = flags.Bool("once", false, "run a single pass and exit")
	)

	err := flags.Parse(args)
	if err != nil {
		if err == pflag.ErrHelp {
			return 0
		}

		return 2
	}

	input := config.LoadInput{
		ConfigPath: *configPath,
		DataDir:    *dataDir,
		LogLevel:   *logLevel,
	}

	if flags.Changed("dry-run") {
		input.DryRun = dryRun
	}

	if flags.Changed("watch") {
		input.Watch = watch
	}

	cfg, err := config.Load(input)
	if err != nil {
		fmt.Fprintln(stderr, "notekeeper:", err)

		return 1
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "notekeeper: invalid log level %q\n", cfg.LogLevel)

		return 1
	}

	logger := log.NewWithOptions(stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})

	if cfg.Source != "" {
		logger.Debug("loaded config", "path", cfg.Source)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := keeper.NewService(cfg, fs.NewReal(), logger)

	if *once {
		report, passErr := svc.Pass(ctx)
		if passErr != nil {
			logger.Error("pass failed", "err", passErr)

			return 1
		}

		logger.Info("pass complete",
			"scanned", report.Scanned,
			"failed", report.Failed,
			"deleted_untitled", report.DeletedUntitled)

		if report.Failed > 0 {
			return 1
		}

		return 0
	}

	err = svc.Run(ctx)
	if err != nil {
		logger.Error("service failed", "err", err)

		return 1
	}

	return 0
}
