package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/procreview/internal/cli"
	"github.com/alexanderramin/procreview/internal/config"
	"github.com/alexanderramin/procreview/internal/fixture"
	"github.com/alexanderramin/procreview/internal/repository"
	"github.com/alexanderramin/procreview/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	closeStore := func() error { return nil }
	defer func() { _ = closeStore() }()

	app := &cli.App{}

	// The service is opened after flags and config are resolved, and only
	// by commands that need it.
	app.Open = func(cfg config.Config) (service.ReviewService, error) {
		store, closer, err := repository.OpenSnapshotStore(repository.StoreOptions{
			Backend: cfg.Store,
			DBPath:  cfg.DBPath,
			File:    cfg.SnapshotFile,
		})
		if err != nil {
			return nil, fmt.Errorf("opening review store: %w", err)
		}
		closeStore = closer

		source, err := baselineSource(cfg)
		if err != nil {
			return nil, err
		}

		var observers []service.UseCaseObserver
		if cfg.Log {
			observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
		}

		return service.NewReviewService(source, store, service.ReviewOptions{
			Actor:     cfg.Actor,
			PageLines: cfg.PageLines,
		}, observers...), nil
	}

	// Detect interactive terminal for the TUI entrypoint.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

// baselineSource picks the remote API when configured, otherwise the
// embedded dataset or a fixture file served in-process.
func baselineSource(cfg config.Config) (service.BaselineSource, error) {
	if cfg.APIURL != "" {
		return fixture.NewClient(cfg.APIURL, nil), nil
	}
	if cfg.Fixture != "" {
		procs, err := fixture.LoadFile(cfg.Fixture)
		if err != nil {
			return nil, fmt.Errorf("loading fixture: %w", err)
		}
		return &fixture.EmbeddedSource{Processes: procs, Latency: cfg.Latency()}, nil
	}
	return fixture.NewEmbeddedSource(cfg.Latency())
}
