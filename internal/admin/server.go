// Package admin serves the session screen over HTTP and accepts ingested
// location and light events.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"luxtrail/internal/geo"
	"luxtrail/internal/logging"
	"luxtrail/internal/session"
)

// StatusSource provides the screen shown by the server.
type StatusSource interface {
	Snapshot() session.Screen
}

type Server struct {
	status StatusSource
	feed   *Feed
	tpl    *template.Template
	mux    *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

// NewServer creates a server for status. feed may be nil, in which case the
// ingest endpoints answer 503.
func NewServer(status StatusSource, feed *Feed) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{status: status, feed: feed, tpl: tpl, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("POST /location", s.handleLocation)
	s.mux.HandleFunc("POST /light", s.handleLight)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start serves on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info("admin server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.tpl.Execute(w, s.status.Snapshot()); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status.Snapshot())
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
	Alt float64  `json:"alt"`
}

type lightRequest struct {
	Lux *float32 `json:"lux"`
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Lat == nil || req.Lon == nil {
		http.Error(w, "lat and lon are required", http.StatusBadRequest)
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
		http.Error(w, "coordinates out of range", http.StatusBadRequest)
		return
	}
	if s.feed == nil {
		http.Error(w, ErrFeedClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	pos := geo.Position{Lat: *req.Lat, Lon: *req.Lon, Alt: req.Alt}
	if err := s.feed.SendLocation(r.Context(), pos); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLight(w http.ResponseWriter, r *http.Request) {
	var req lightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Lux == nil {
		http.Error(w, "lux is required", http.StatusBadRequest)
		return
	}
	if s.feed == nil {
		http.Error(w, ErrFeedClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	if err := s.feed.SendLight(r.Context(), *req.Lux); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
