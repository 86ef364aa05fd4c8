package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/pkg/errors"
)

// Server renders built-in scenes on demand over HTTP
type Server struct {
	port   int
	logger log.Logger
	limits Limits
	mux    *http.ServeMux
}

// Limits bound the work a single request may ask for
type Limits struct {
	MaxWidth   int
	MaxHeight  int
	MaxSamples int
	MaxDepth   int
}

// DefaultLimits returns the limits used by NewServer
func DefaultLimits() Limits {
	return Limits{
		MaxWidth:   1920,
		MaxHeight:  1080,
		MaxSamples: 1024,
		MaxDepth:   200,
	}
}

// NewServer creates a new web server. A nil logger selects the package logger.
func NewServer(port int, logger log.Logger) *Server {
	if logger == nil {
		logger = log.New("server")
	}
	s := &Server{
		port:   port,
		logger: logger,
		limits: DefaultLimits(),
		mux:    http.NewServeMux(),
	}

	// API endpoints
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	return s
}

// SetLimits replaces the per-request limits
func (s *Server) SetLimits(limits Limits) {
	s.limits = limits
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Noticef("starting web server on http://localhost%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "web server")
	case <-ctx.Done():
		s.logger.Notice("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SceneInfo describes a built-in scene
type SceneInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	infos := scene.List()
	out := make([]SceneInfo, len(infos))
	for i, info := range infos {
		out[i] = SceneInfo{Name: info.Name, Description: info.Description}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
