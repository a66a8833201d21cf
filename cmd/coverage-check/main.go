package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sergavshin/gha-test-coverage-check/internal/adapter/cli"
	"github.com/sergavshin/gha-test-coverage-check/internal/adapter/github"
	"github.com/sergavshin/gha-test-coverage-check/internal/adapter/observability"
	"github.com/sergavshin/gha-test-coverage-check/internal/usecase/check"
	"github.com/sergavshin/gha-test-coverage-check/internal/usecase/report"
	"github.com/sergavshin/gha-test-coverage-check/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Local development convenience; the action supplies real env vars.
	_ = godotenv.Load()

	logger := observability.NewLogger(
		observability.ParseLevel(os.Getenv("LOG_LEVEL")),
		observability.ParseFormat(os.Getenv("LOG_FORMAT")),
	)

	pipeline := check.NewPipeline(check.Deps{Logger: logger})

	root := cli.NewRootCommand(cli.Dependencies{
		Checker: pipeline,
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return err
	}
	return nil
}

// Compile-time interface compliance checks
var _ report.Client = (*github.Client)(nil)
var _ cli.Checker = (*check.Pipeline)(nil)
