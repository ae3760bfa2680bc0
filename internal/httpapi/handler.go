package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"watchtower/dashd/internal/db"
	"watchtower/dashd/internal/metrics"
	"watchtower/dashd/internal/state"
	"watchtower/dashd/internal/stream"
)

// Acknowledger forwards alert acknowledgements to the monitoring backend.
type Acknowledger interface {
	AcknowledgeAlert(ctx context.Context, id string) error
}

type Handler struct {
	log     zerolog.Logger
	store   *state.Store
	rec     *stream.Reconciler
	ack     Acknowledger
	pool    *db.Pool
	metrics *metrics.Metrics
}

func NewHandler(log zerolog.Logger, store *state.Store, rec *stream.Reconciler, ack Acknowledger, pool *db.Pool, m *metrics.Metrics) *Handler {
	return &Handler{log: log, store: store, rec: rec, ack: ack, pool: pool, metrics: m}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(h.accessLog)

	// Health
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyZ)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	// API
	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/view/physical", h.handlePhysicalView)
			r.Get("/view/logical", h.handleLogicalView)
			r.Get("/topology/summary", h.handleSummary)
			r.Get("/alerts", h.handleAlerts)
			r.Get("/speedtest/latest", h.handleSpeedtestLatest)
			r.Get("/stream/status", h.handleStreamStatus)

			r.Post("/clusters/{id}/toggle", h.handleToggleCluster)
			r.Post("/layout/reset", h.handleResetLayout)
			r.Post("/positions/{id}", h.handleSetPosition)
			r.Post("/vlans/filter", h.handleVLANFilter)
			r.Post("/selection", h.handleSelection)
			r.Post("/alerts/{id}/acknowledge", h.handleAcknowledgeAlert)
			r.Post("/toasts/{id}/dismiss", h.handleDismissToast)
		})
	})

	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.Status(), time.Since(start))
		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("http_request")
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	resp := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	}
	if details != nil {
		resp["error"].(map[string]any)["details"] = details
	}
	h.writeJSON(w, status, resp)
}

func decodeJSONStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected extra data after JSON body")
		}
		return err
	}
	return nil
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleReadyZ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "db_unavailable", "database not ready", map[string]any{"error": err.Error()})
		return
	}

	if err := h.store.LoadError(); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", "initial topology load failed", map[string]any{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}
