// Package api serves the dashboard view, score history, health and metrics
// over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"LeverageGauge/internal/logger"
	"LeverageGauge/internal/model"
	"LeverageGauge/internal/recorder"
)

// DefaultHistoryLimit applies when ?limit is absent.
const DefaultHistoryLimit = 30

// MaxHistoryLimit bounds ?limit.
const MaxHistoryLimit = 1000

// ViewSource produces the current dashboard view; force skips the cache.
type ViewSource interface {
	Dashboard(ctx context.Context, force bool) model.View
}

// Handlers holds the HTTP handlers.
type Handlers struct {
	views   ViewSource
	history recorder.Recorder
}

// NewRouter wires the routes. gatherer may be nil to omit /metrics.
func NewRouter(views ViewSource, history recorder.Recorder, gatherer prometheus.Gatherer) http.Handler {
	if history == nil {
		history = recorder.NewNoopRecorder()
	}
	h := &Handlers{views: views, history: history}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.HandleHealth)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.HandleDashboard)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/score/history", h.HandleScoreHistory)
	})
	return r
}

// HandleDashboard returns the view built from the cached or latest cycle.
// GET /api/dashboard
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.views.Dashboard(r.Context(), false))
}

// HandleRefresh forces a new fetch cycle and returns its view.
// POST /api/refresh
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.views.Dashboard(r.Context(), true))
}

// HandleScoreHistory lists recorded scores, newest first.
// GET /api/score/history?limit=N
func (h *Handlers) HandleScoreHistory(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		if n > MaxHistoryLimit {
			n = MaxHistoryLimit
		}
		limit = n
	}

	recs, err := h.history.ListScores(limit)
	if err != nil {
		logger.Errorf("list scores: %v", err)
		http.Error(w, "Failed to fetch score history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scores": recs})
}

// HandleHealth reports liveness.
// GET /healthz
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // response already committed
}

// Server runs the HTTP listener until its context ends.
type Server struct {
	srv *http.Server
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("http server listening on %s", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Infof("http server shutting down")
		return s.srv.Shutdown(shutdownCtx)
	}
}
