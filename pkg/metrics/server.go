package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
)

// ServerConfig configures the Prometheus scrape endpoint.
type ServerConfig struct {
	Enabled bool
	Addr    string
	Path    string
}

// Server serves the default Prometheus registry (the one promauto
// registered Collector's metrics against) over HTTP.
type Server struct {
	cfg    ServerConfig
	log    *logger.Logger
	server *http.Server
}

// NewServer constructs a Server.
func NewServer(cfg ServerConfig, log *logger.Logger) *Server {
	return &Server{cfg: cfg, log: log.WithComponent("metrics")}
}

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.log.Info("prometheus metrics server disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, promhttp.Handler())

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("metrics: failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.server = &http.Server{Handler: mux}

	s.log.Info("prometheus metrics server listening",
		logger.String("addr", s.cfg.Addr), logger.String("path", s.cfg.Path))

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
