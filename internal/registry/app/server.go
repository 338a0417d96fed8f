// Package server composes the registry HTTP process: the JSON API,
// the websocket event feed, and the Prometheus metrics endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lapelpin/lapelpin/internal/api/feed"
	"github.com/lapelpin/lapelpin/internal/api/httpapi"
	"github.com/lapelpin/lapelpin/internal/auth/admintoken"
	"github.com/lapelpin/lapelpin/internal/platform/timeouts"
	"github.com/lapelpin/lapelpin/internal/registry/service"
	"github.com/lapelpin/lapelpin/internal/registry/storage/sqlite"
)

// Config defines the inputs for the registry HTTP process.
type Config struct {
	HTTPAddr          string
	DBPath            string
	AdminSubject      string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the registry HTTP process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	store           *sqlite.Store
}

// NewServer builds a configured registry server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	admin := strings.TrimSpace(config.AdminSubject)
	if admin == "" {
		return nil, errors.New("admin subject is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	store, err := openStore(config.DBPath)
	if err != nil {
		return nil, err
	}

	verifier, err := admintoken.LoadVerifierConfigFromEnv(nil)
	if err != nil {
		log.Printf("admin token verifier unavailable, admin routes will reject requests: %v", err)
	}

	hub := feed.NewHub()
	svc := service.NewService(store, admin, hub)

	mux := http.NewServeMux()
	httpapi.NewHandler(svc, verifier).RegisterRoutes(mux)
	mux.Handle("GET /ws/feed", hub.Handler())
	mux.Handle("GET /metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           otelhttp.NewHandler(mux, "registry"),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
		store:           store,
	}, nil
}

// Run creates and serves a registry server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init registry server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve registry: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("registry server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("registry server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close registry store: %v", err)
		}
		s.store = nil
	}
}

func openStore(path string) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "registry.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create registry db dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry store: %w", err)
	}
	return store, nil
}
