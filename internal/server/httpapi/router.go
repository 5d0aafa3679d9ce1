// Package httpapi serves the artifact and operational endpoints over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/server/artifacts"
	"github.com/dmitrijs2005/gophcheck/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ArtifactSource yields the artifact currently served.
type ArtifactSource interface {
	Current() (*artifacts.Snapshot, error)
}

// EventSummary reports stored analytics counts by result.
type EventSummary interface {
	Summary(ctx context.Context) (map[string]int64, error)
}

type Handler struct {
	artifacts ArtifactSource
	events    EventSummary
	metrics   *metrics.Metrics
	logger    logging.Logger
}

// New creates a Handler. events may be nil; /stats is then not routed.
func New(as ArtifactSource, es EventSummary, m *metrics.Metrics, l logging.Logger) *Handler {
	return &Handler{
		artifacts: as,
		events:    es,
		metrics:   m,
		logger:    l.With("module", "http_api"),
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/"+common.DefaultArtifactName, h.handleArtifact)
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{}))
	if h.events != nil {
		r.Get("/stats", h.handleStats)
	}

	return r
}

func (h *Handler) handleArtifact(w http.ResponseWriter, r *http.Request) {
	snap, err := h.artifacts.Current()
	if err != nil {
		h.writeUnavailable(w, r, err)
		return
	}

	h.metrics.IncArtifactFetch("http")

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", snap.ETag)
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, common.DefaultArtifactName, snap.LoadedAt, bytes.NewReader(snap.Data))
}

type healthResponse struct {
	Status   string    `json:"status"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := h.artifacts.Current()
	if err != nil {
		h.writeUnavailable(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Records: snap.Records, LoadedAt: snap.LoadedAt})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.events.Summary(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "event summary failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": common.ErrorInternal.Error()})
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *Handler) writeUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, common.ErrDatabaseNotLoaded) {
		h.logger.Error(r.Context(), "artifact lookup failed", "error", err)
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.logger.Debug(r.Context(), "http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
