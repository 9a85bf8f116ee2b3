package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/amterp/qrcard/internal/store"
)

const shutdownTimeout = 5 * time.Second

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Port           int
	RateLimit      int      // Requests per minute per IP, 0 disables
	AllowedOrigins []string // CORS origins, wildcards allowed
	SeedFile       string   // Watched for changes when WatchSeed is set
	WatchSeed      bool
	SeedLoader     SeedLoader
}

// Server wraps the HTTP server for the local API.
type Server struct {
	httpServer  *http.Server
	wsHub       *WebSocketHub
	watcher     *SeedWatcher
	unsubscribe func()
	log         log.FieldLogger
}

// NewServer creates a new server. The WebSocket hub is subscribed to
// cardStore so every commit reaches connected clients.
func NewServer(handler *Handler, cardStore store.CardStore, opts ServerOptions, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	wsHub := NewWebSocketHub(cardStore, logger)
	mux.HandleFunc("GET /api/v1/ws", wsHub.ServeWS)

	var watcher *SeedWatcher
	if opts.WatchSeed && opts.SeedFile != "" && opts.SeedLoader != nil {
		var err error
		watcher, err = NewSeedWatcher(opts.SeedFile, cardStore, opts.SeedLoader, logger)
		if err != nil {
			logger.WithError(err).Warn("failed to create seed watcher")
		}
	}

	wrapped := Logging(logger)(Cors(opts.AllowedOrigins)(RateLimit(opts.RateLimit)(mux)))

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf(":%d", opts.Port),
			Handler:     wrapped,
			ReadTimeout: 15 * time.Second,
			// No WriteTimeout: it would cut long-lived WebSocket connections
		},
		wsHub:       wsHub,
		watcher:     watcher,
		unsubscribe: cardStore.Subscribe(wsHub),
		log:         logger,
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve accepts connections on ln. Blocks until shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			s.log.WithError(err).Warn("failed to start seed watcher")
		}
	}

	s.log.WithField("addr", ln.Addr().String()).Info("qrcard API listening")
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.log.Info("qrcard API shutting down")
	return s.httpServer.Shutdown(ctx)
}
