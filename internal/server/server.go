// Package server provides the local HTTP interface for vmouse: settings,
// event history, the annotated camera preview and a live landmark feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/vmouse/internal/gesture"
	"github.com/ayusman/vmouse/internal/plugin"
	"github.com/ayusman/vmouse/internal/server/api"
	"github.com/ayusman/vmouse/internal/store"
)

// Status reports the pipeline state shown by /api/health.
type Status interface {
	Running() bool
	LastGesture() (gesture.Kind, time.Time)
}

// Config holds the server configuration. Routes whose backing field is nil
// are not registered.
type Config struct {
	StaticDir string
	Logger    *zap.Logger
	Settings  api.SettingsService
	Control   api.Controller
	Status    Status
	Events    *store.EventRepository
	Plugins   *plugin.Manager
	Preview   PreviewSource
	Hub       *Hub
}

// Server represents the vmouse HTTP server.
type Server struct {
	config Config
	logger *zap.Logger
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config: config,
		logger: logger,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Settings != nil {
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Settings))
	}
	if s.config.Control != nil {
		s.mux.Handle("/api/enabled", api.NewEnabledHandler(s.config.Control))
	}
	if s.config.Events != nil {
		events := api.NewEventsHandler(s.config.Events)
		s.mux.Handle("/api/events", events)
		s.mux.Handle("/api/events/", events)
	}
	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginsHandler(s.config.Plugins))
	}
	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview, 0))
	}
	if s.config.Hub != nil {
		s.mux.Handle("/api/landmarks", s.config.Hub)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Enabled     *bool  `json:"enabled,omitempty"`
	Running     *bool  `json:"running,omitempty"`
	LastGesture string `json:"last_gesture,omitempty"`
	LastSeen    string `json:"last_seen,omitempty"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}
	if s.config.Control != nil {
		enabled := s.config.Control.IsEnabled()
		resp.Enabled = &enabled
	}
	if s.config.Status != nil {
		running := s.config.Status.Running()
		resp.Running = &running
		if kind, at := s.config.Status.LastGesture(); kind != gesture.None && !at.IsZero() {
			resp.LastGesture = string(kind)
			resp.LastSeen = at.Format(time.RFC3339)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if s.config.Hub != nil {
		s.config.Hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
