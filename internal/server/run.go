package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/iwvelando/ingredient-optimizer/internal/form"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server owns the HTTP listener and its graceful shutdown.
type Server struct {
	cfg        *Config
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer wires the handler into an http.Server using cfg's timeouts.
func NewServer(logger *zap.Logger, calc form.Calculator, cfg *Config, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      NewHandler(logger, calc, cfg, version),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting server",
			zap.String("op", "server.Serve"),
			zap.String("address", ln.Addr().String()),
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down server",
			zap.String("op", "server.Serve"),
			zap.Duration("timeout", s.cfg.ShutdownTimeout),
		)
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("server stopped gracefully", zap.String("op", "server.Serve"))
	return nil
}
