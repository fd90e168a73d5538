package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/a3tai/tender-ai-tagger/internal/config"
	"github.com/a3tai/tender-ai-tagger/internal/logging"
	"github.com/a3tai/tender-ai-tagger/internal/pipeline"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes one build and returns the process exit code
func run(args []string, stdout io.Writer) int {
	// Check for version flag before parsing other flags
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion(stdout)
			return 0
		}
	}

	cfg, err := config.LoadFromArgs(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		logger := logging.NewDefault()
		logger.Error("Failed to load configuration", zap.Error(err))
		_ = logger.Sync()
		return 1
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDebug(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("Starting with configuration", zap.Stringer("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(logger, cfg.MaxFileSize)
	if _, err := p.Run(ctx, pipeline.OptionsFromConfig(cfg)); err != nil {
		logger.Error("Build failed", zap.Error(err))
		return 1
	}

	return 0
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Tender AI Tagger\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
