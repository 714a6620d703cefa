// ABOUTME: Loopback HTTP server exposing the tool dispatcher to the bridge.
// ABOUTME: Handles auth, CORS, routing, and idempotent start/stop lifecycle.

package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/admjs/obsidian-mcp/internal/auth"
	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/tools"
)

// Config holds configuration for the gateway server.
type Config struct {
	Host     string
	Port     int
	APIKey   string
	Version  string
	Registry *tools.Registry
	Prompts  *prompts.Registry
	Logger   *slog.Logger
}

// Server is the HTTP transport in front of the tool registry. It binds to
// a loopback address only; remote access is not a supported deployment.
type Server struct {
	registry *tools.Registry
	prompts  *prompts.Registry
	logger   *slog.Logger
	version  string

	mu         sync.Mutex
	host       string
	port       int
	apiKey     string
	listener   net.Listener
	httpServer *http.Server
	running    bool
}

// New creates a gateway server from the configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Prompts == nil {
		return nil, errors.New("prompt registry is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	return &Server{
		registry: cfg.Registry,
		prompts:  cfg.Prompts,
		logger:   logger,
		version:  version,
		host:     host,
		port:     cfg.Port,
		apiKey:   cfg.APIKey,
	}, nil
}

// APIKey returns the current API key. Implements auth.KeySource so key
// updates take effect on the next request.
func (s *Server) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey
}

// UpdateAPIKey replaces the API key.
func (s *Server) UpdateAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = key
	s.logger.Info("API key updated")
}

// UpdatePort changes the listen port. Takes effect on the next Start.
func (s *Server) UpdatePort(port int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.port = port
	if s.running {
		s.logger.Info("port updated, restart required to take effect", "port", port)
	}
}

// Addr returns the bound address, or empty when not running. Useful when
// the server was started on port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the listener and begins serving. Calling Start on a running
// server is a no-op.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Debug("server already running, start is a no-op")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}

	handler := s.routes()
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.listener = ln
	s.httpServer = httpServer
	s.running = true

	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped unexpectedly", "error", err)
		}
	}()

	s.logger.Info("gateway server started", "addr", ln.Addr().String())
	return nil
}

// Stop closes the listening socket. Safe to call when not running.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.httpServer.Close()
	s.listener = nil
	s.httpServer = nil
	s.running = false

	s.logger.Info("gateway server stopped")
	return err
}

// routes builds the handler chain: recovery, CORS, auth, then the mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/mcp/tools", s.handleListTools)
	mux.HandleFunc("/api/mcp/tools/call", s.handleCallTool)
	mux.HandleFunc("/api/mcp/health", s.handleHealth)
	mux.HandleFunc("/api/mcp/prompts", s.handleListPrompts)
	mux.HandleFunc("/api/mcp/prompts/get", s.handleGetPrompt)

	var handler http.Handler = mux
	handler = auth.Middleware(s)(handler)
	handler = s.corsMiddleware(handler)
	handler = s.recoverMiddleware(handler)
	return handler
}

// corsMiddleware sets permissive CORS headers on every response and
// answers preflight requests directly. This server is for local
// single-user use only.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware converts handler panics into 500 responses so a single
// bad request cannot take the server down.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panicked", "path", r.URL.Path, "panic", rec)
				s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
