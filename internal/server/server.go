// Package server exposes the dashboard operations as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/dashboard"
)

// Options configures the API server.
type Options struct {
	Backend       core.Backend
	Journal       dashboard.Journal
	DevicesTable  string
	CommandsTable string
	Timeout       time.Duration
	// AllowedOrigins lists browser origins permitted to call the API.
	// Requests carrying any other Origin are refused.
	AllowedOrigins []string
}

// Server serves the API.
type Server struct {
	backend      core.Backend
	dispatcher   *dashboard.Dispatcher
	devicesTable string
	timeout      time.Duration
	origins      []string
	engine       *gin.Engine
}

// New creates a server with its routes registered.
func New(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Server{
		backend:      opts.Backend,
		dispatcher:   dashboard.NewDispatcher(opts.Backend, opts.CommandsTable, opts.Journal),
		devicesTable: opts.DevicesTable,
		timeout:      timeout,
		origins:      opts.AllowedOrigins,
		engine:       gin.New(),
	}
	s.engine.Use(gin.Recovery(), RequestLogger())
	s.SetupRoutes(s.engine)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.timeout)
}
