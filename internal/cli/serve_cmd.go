package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/fixture"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the baseline process dataset over HTTP",
		Long: `Serve GET /api/processes (after the configured latency) and GET /healthz.
Point another procreview at it with --api-url http://localhost:8080.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			loader, err := fixtureLoader(cfg.Fixture)
			if err != nil {
				return err
			}

			opts := fixture.ServerOptions{
				Loader:  loader,
				Latency: cfg.Latency(),
				Logger:  slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)),
			}
			if cfg.Log {
				opts.AccessLog = cmd.ErrOrStderr()
			}
			srv := fixture.NewServer(opts)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cfg.Listen)
		},
	}

	cmd.Flags().String("listen", ":8080", "address to listen on")
	return cmd
}

// fixtureLoader validates the dataset file up front, then re-reads it on
// every request so edits show without a restart. An empty path serves the
// embedded dataset.
func fixtureLoader(path string) (fixture.LoaderFunc, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := fixture.LoadFile(path); err != nil {
		return nil, fmt.Errorf("loading fixture: %w", err)
	}
	return func(context.Context) ([]domain.Process, error) {
		return fixture.LoadFile(path)
	}, nil
}
