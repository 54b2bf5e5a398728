// Package server binds the HTTP front: file serving through the path
// resolver, the live push endpoint, and the port binding policy.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/liveserve/liveserve/internal/config"
	"github.com/liveserve/liveserve/internal/live"
	"github.com/liveserve/liveserve/internal/logging"
	"github.com/liveserve/liveserve/internal/watcher"
)

// Server serves a directory over HTTP with live-update push. All
// fields are read-only after New; the watcher owns its own goroutine.
type Server struct {
	logger      logging.Logger
	baseDir     string
	port        int
	diffMode    bool
	listener    net.Listener
	broadcaster *live.Broadcaster
	watcher     *watcher.Watcher
	httpServer  *http.Server

	shutdownOnce sync.Once
}

// New resolves the base directory, binds the listener (applying the
// default-port fallback policy), and wires the watch pipeline. Any
// failure here is startup-fatal by design: the server must not begin
// serving with a broken root, port, or watcher.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	baseDir, err := config.ResolveBaseDir(cfg.Server.BaseDir)
	if err != nil {
		return nil, err
	}

	listener, port, err := bindListener(cfg.Server.Port)
	if err != nil {
		return nil, err
	}

	if port != cfg.Server.Port {
		logger.Info(context.Background(), "port in use, switched",
			"requested", cfg.Server.Port, "bound", port)
	}

	broadcaster := live.NewBroadcaster(live.DefaultBacklog)
	classifier := &live.Classifier{
		BaseDir:  baseDir,
		DiffMode: cfg.Server.Diff,
	}

	fsWatcher, err := watcher.New(baseDir, classifier, broadcaster, logger, watcher.DefaultDebounce)
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	s := &Server{
		logger:      logger.WithComponent("server"),
		baseDir:     baseDir,
		port:        port,
		diffMode:    cfg.Server.Diff,
		listener:    listener,
		broadcaster: broadcaster,
		watcher:     fsWatcher,
	}

	// Dispatch without http.ServeMux: the mux would clean and redirect
	// paths with dot-dot segments before the resolver could reject
	// them, and the resolver owns that decision.
	s.httpServer = &http.Server{Handler: http.HandlerFunc(s.route)}

	return s, nil
}

// route sends internal endpoints to their handlers and everything
// else to file serving.
func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case healthPath:
		s.handleHealth(w, r)
	case scriptPath:
		s.handleScript(w, r)
	case wsPath:
		s.handleWebSocket(w, r)
	default:
		s.handleFile(w, r)
	}
}

// Start runs the watch loop and serves HTTP on the bound listener,
// blocking until the server shuts down.
func (s *Server) Start(ctx context.Context) error {
	s.watcher.Start(ctx)

	s.logger.Info(ctx, "serving",
		"addr", s.PrimaryURL(), "base_dir", s.baseDir, "diff_mode", s.diffMode)

	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown stops accepting connections, closes the watcher, and tears
// down every live subscription. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		shutdownErr = s.httpServer.Shutdown(ctx)

		if err := s.watcher.Close(); err != nil {
			s.logger.Warn(ctx, err, "closing watcher")
		}

		s.broadcaster.Close()
	})

	return shutdownErr
}

// Port returns the port actually bound, which can differ from the
// configured one when the default-port fallback kicked in.
func (s *Server) Port() int {
	return s.port
}

// BaseDir returns the absolute, canonical serving root.
func (s *Server) BaseDir() string {
	return s.baseDir
}

// DiffMode reports whether targeted HTML/CSS updates are enabled.
func (s *Server) DiffMode() bool {
	return s.diffMode
}

// PrimaryURL is the loopback address to open in a browser.
func (s *Server) PrimaryURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.port)
}

// Broadcast injects a message into the live channel. Exposed for the
// front's collaborators and tests.
func (s *Server) Broadcast(msg live.Message) {
	s.broadcaster.Broadcast(msg)
}
