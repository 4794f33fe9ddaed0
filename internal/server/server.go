package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/auto-dns/docker-slim-exporter/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// MetricsPath is the only route the server answers.
const MetricsPath = "/metrics"

// Server exposes a Prometheus gatherer over HTTP.
type Server struct {
	logger          zerolog.Logger
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

func New(logger zerolog.Logger, cfg config.ExporterConfig, gatherer prometheus.Gatherer) *Server {
	logger = logger.With().Str("component", "server").Logger()

	s := &Server{
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddress(),
		Handler:           newHandler(gatherer, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func newHandler(gatherer prometheus.Gatherer, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog:      promErrorLogger{logger: logger},
		ErrorHandling: promhttp.ContinueOnError,
	}))
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info().Str("address", ln.Addr().String()).Str("path", MetricsPath).Msg("Docker Exporter started")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return fmt.Errorf("metrics server: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down metrics server")

	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	return s.httpServer.Shutdown(ctx)
}

// promErrorLogger routes promhttp errors into zerolog.
type promErrorLogger struct {
	logger zerolog.Logger
}

func (l promErrorLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
