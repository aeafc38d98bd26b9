// Package api serves a read-only HTTP view of a running game. Every endpoint is
// a GET; commands stay with the process that owns the Game.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/populace/internal/ecs"
	"github.com/talgya/populace/internal/engine"
	"github.com/talgya/populace/internal/stats"
)

// Server serves the game state over HTTP.
type Server struct {
	Game *engine.Game
	Addr string

	// Full snapshots carry every person ever born, so they are throttled.
	snapshots *RateLimiter
}

// NewServer creates a server for game on addr (e.g. ":8080").
func NewServer(game *engine.Game, addr string) *Server {
	return &Server{
		Game:      game,
		Addr:      addr,
		snapshots: NewRateLimiter(60, time.Minute),
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/snapshot", RateLimitMiddleware(s.snapshots, s.handleSnapshot))
	mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	mux.HandleFunc("GET /api/v1/policies", s.handlePolicies)
	mux.HandleFunc("GET /api/v1/person/{id}", s.handlePerson)
	return corsMiddleware(mux)
}

// Serve listens until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Addr)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
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
}

// corsMiddleware allows GETs from local dev servers plus any origins listed in
// POPULACE_CORS_ORIGINS (comma-separated).
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("POPULACE_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Status is the lightweight summary polled by dashboards.
type Status struct {
	Run         string         `json:"run"`
	Tick        int64          `json:"tick"`
	Time        string         `json:"time"`
	Speed       engine.Speed   `json:"speed"`
	Running     bool           `json:"running"`
	Population  int            `json:"population"`
	TotalBirths int            `json:"total_births"`
	TotalDeaths int            `json:"total_deaths"`
	Averages    stats.Averages `json:"averages"`
	Active      []string       `json:"active_policies"`
	Ended       bool           `json:"ended"`
	Ending      string         `json:"ending,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Game.Snapshot()
	st := Status{
		Run:         s.Game.RunID().String(),
		Tick:        snap.Tick,
		Time:        snap.Time,
		Speed:       snap.Speed,
		Running:     snap.Running,
		Population:  len(snap.Living),
		TotalBirths: snap.TotalBirths,
		TotalDeaths: snap.TotalDeaths,
		Averages:    snap.Averages,
		Active:      snap.ActivePolicies,
	}
	if snap.Ending != nil {
		st.Ended = true
		st.Ending = snap.Ending.Title
	}
	writeJSON(w, st)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Snapshot())
}

// handleHistory returns yearly records, optionally only the last ?limit=N.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := s.Game.Snapshot().History
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if n < len(history) {
			history = history[len(history)-n:]
		}
	}
	if history == nil {
		history = []stats.YearRecord{}
	}
	writeJSON(w, history)
}

func (s *Server) handlePolicies(w http.ResponseWriter, r *http.Request) {
	snap := s.Game.Snapshot()
	writeJSON(w, map[string]any{
		"policies": snap.Policies,
		"active":   snap.ActivePolicies,
		"effect":   snap.Effect,
	})
}

func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid person id", http.StatusBadRequest)
		return
	}
	view, ok := s.Game.View(ecs.EntityID(id))
	if !ok {
		http.Error(w, "person not found", http.StatusNotFound)
		return
	}
	writeJSON(w, view)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response", "error", err)
	}
}
