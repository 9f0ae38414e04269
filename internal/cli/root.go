package cli

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/procreview/internal/cli/formatter"
	"github.com/alexanderramin/procreview/internal/config"
	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// App holds the review service and resolved configuration used by CLI
// commands and the TUI.
type App struct {
	// Review is built lazily through Open unless a caller pre-wires it.
	Review service.ReviewService
	Config config.Config

	// Open builds the review service from resolved configuration.
	Open func(cfg config.Config) (service.ReviewService, error)

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool

	// Clock overrides time.Now for rendering and export names.
	Clock func() time.Time
}

var errNoBackend = errors.New("no review backend configured")

func (a *App) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// service returns the review service, opening it on first use.
func (a *App) service() (service.ReviewService, error) {
	if a.Review != nil {
		return a.Review, nil
	}
	if a.Open == nil {
		return nil, errNoBackend
	}
	svc, err := a.Open(a.Config)
	if err != nil {
		return nil, err
	}
	a.Review = svc
	return svc, nil
}

// loadedService returns the review service with its document loaded. An
// interactive terminal gets a spinner while the baseline is fetched.
func (a *App) loadedService(cmd *cobra.Command) (service.ReviewService, domain.Document, error) {
	svc, err := a.service()
	if err != nil {
		return nil, domain.Document{}, err
	}
	doc, err := svc.Document()
	if err == nil {
		return svc, doc, nil
	}
	if !errors.Is(err, service.ErrNotLoaded) {
		return nil, domain.Document{}, err
	}
	if a.interactive() {
		stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Fetching processes...")
		defer stop()
	}
	doc, err = svc.Load(cmd.Context())
	if err != nil {
		return nil, domain.Document{}, err
	}
	return svc, doc, nil
}

// NewRootCmd creates the top-level "procreview" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "procreview",
		Short:         "Review manufacturing processes, subprocesses and tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader()
			if err := loader.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := loader.Load(configPath)
			if err != nil {
				return err
			}
			app.Config = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return cmd.Help()
			}
			return runTUI(cmd.Context(), app)
		},
	}

	d := config.DefaultConfig()
	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.procreview/config.yaml)")
	pf.String("db", d.DBPath, "SQLite database path")
	pf.String("store", d.Store, "snapshot store: sqlite, file or memory")
	pf.String("api-url", "", "baseline API base URL (default: embedded dataset)")
	pf.String("actor", string(d.Actor), "reviewer name recorded on changes")
	pf.String("snapshot-file", d.SnapshotFile, "snapshot path for --store file")
	pf.String("fixture", "", "JSON or YAML dataset to use instead of the embedded one")
	pf.Int("latency", d.LatencyMs, "artificial baseline delay in milliseconds")
	pf.Bool("log", false, "log service calls to stderr")

	root.AddCommand(
		newReviewCmd(app),
		newServeCmd(app),
		newListCmd(app),
		newShowCmd(app),
		newStatusCmd(app),
		newCommentCmd(app),
		newBulkCmd(app),
		newStatsCmd(app),
		newExportCmd(app),
		newResetCmd(app),
	)

	return root
}

func newReviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Open the interactive review wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}
}

// runTUI opens the service and runs the wizard in the alternate screen.
// The document is loaded inside the program so the spinner can render.
func runTUI(ctx context.Context, app *App) error {
	if _, err := app.service(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(newAppModel(app), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
