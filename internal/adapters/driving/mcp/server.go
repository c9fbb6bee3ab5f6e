package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/refeel-health/refeel-cli/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

const shutdownGrace = 5 * time.Second

// Server serves the exam store over MCP.
type Server struct {
	ports *Ports
	srv   *mcp.Server
}

// New registers the exam tools and resources.
func New(ports *Ports) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingExamService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		srv:   mcp.NewServer(&mcp.Implementation{Name: "refeel", Version: Version}, nil),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// ServeStdio speaks JSON-RPC over stdin and stdout until ctx is cancelled
// or the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	logger.Debug("mcp: serving on stdio")
	return s.srv.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP endpoint. Every session shares the
// same tools and resources.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.srv
	}, nil)
}

// Serve listens on addr until ctx is cancelled, then drains open requests.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("mcp: listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		logger.Info("mcp: shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
