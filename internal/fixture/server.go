package fixture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/gin-gonic/gin"
)

// DefaultLatency mirrors the delay of the production API mock.
const DefaultLatency = 500 * time.Millisecond

// FetchFailedMessage is the error body returned when the dataset cannot be
// produced.
const FetchFailedMessage = "Failed to fetch processes"

// LoaderFunc produces the dataset for one request.
type LoaderFunc func(ctx context.Context) ([]domain.Process, error)

// ServerOptions configures the fixture server.
type ServerOptions struct {
	Loader  LoaderFunc
	Latency time.Duration
	// AccessLog receives gin's request log lines; nil disables them.
	AccessLog io.Writer
	Logger    *slog.Logger
}

// Server exposes GET /api/processes and GET /healthz.
type Server struct {
	router  *gin.Engine
	loader  LoaderFunc
	latency time.Duration
	logger  *slog.Logger
}

// NewServer builds the router. A nil Loader serves the embedded dataset.
// gin's debug mode is switched to release; test mode is left alone.
func NewServer(opts ServerOptions) *Server {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.AccessLog != nil {
		router.Use(gin.LoggerWithWriter(opts.AccessLog))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	loader := opts.Loader
	if loader == nil {
		loader = func(context.Context) ([]domain.Process, error) { return Embedded() }
	}

	s := &Server{
		router:  router,
		loader:  loader,
		latency: opts.Latency,
		logger:  logger,
	}

	router.GET("/healthz", s.handleHealth)
	api := router.Group("/api")
	{
		api.GET("/processes", s.handleProcesses)
	}
	return s
}

// Handler returns the router for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleProcesses(c *gin.Context) {
	ctx := c.Request.Context()
	if err := wait(ctx, s.latency); err != nil {
		// client went away
		c.Status(http.StatusServiceUnavailable)
		return
	}

	procs, err := s.loader(ctx)
	if err != nil {
		s.logger.Error("fetching processes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": FetchFailedMessage})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, procs)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("fixture server listening", "addr", ln.Addr().String(), "latency_ms", s.latency.Milliseconds())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
