package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"watchtower/dashd/internal/state"
	"watchtower/dashd/internal/topo"
)

func (h *Handler) handlePhysicalView(w http.ResponseWriter, r *http.Request) {
	if err := h.store.LoadError(); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", "topology not loaded", map[string]any{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, h.store.PhysicalView())
}

func (h *Handler) handleLogicalView(w http.ResponseWriter, r *http.Request) {
	if err := h.store.LoadError(); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", "topology not loaded", map[string]any{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusOK, h.store.LogicalView())
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.store.Summary())
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.store.Alerts()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"alerts":  alerts.List(),
		"toasts":  alerts.Toasts(),
		"overlay": alerts.Overlay(),
	})
}

func (h *Handler) handleSpeedtestLatest(w http.ResponseWriter, r *http.Request) {
	result := h.store.Speedtest()
	if result == nil {
		h.writeError(w, http.StatusNotFound, "not_found", "no speedtest result yet", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleStreamStatus(w http.ResponseWriter, r *http.Request) {
	connState, attempts := h.rec.Status()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"state":    connState,
		"attempts": attempts,
	})
}

func (h *Handler) handleToggleCluster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "cluster id required", nil)
		return
	}
	expanded := h.store.ToggleCluster(r.Context(), id)
	h.metrics.ObserveLayoutPasses(h.store.LayoutPasses())
	h.writeJSON(w, http.StatusOK, map[string]any{"id": id, "expanded": expanded})
}

func (h *Handler) handleResetLayout(w http.ResponseWriter, r *http.Request) {
	h.store.ResetLayout(r.Context())
	h.metrics.ObserveLayoutPasses(h.store.LayoutPasses())
	h.writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

func (h *Handler) handleSetPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "node id required", nil)
		return
	}
	var p topo.Position
	if err := decodeJSONStrict(r, &p); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	h.store.SetPosition(r.Context(), id, p)
	h.writeJSON(w, http.StatusOK, map[string]any{"id": id, "position": p})
}

type vlanFilterRequest struct {
	VLANIDs []int `json:"vlan_ids"`
}

func (h *Handler) handleVLANFilter(w http.ResponseWriter, r *http.Request) {
	var req vlanFilterRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	h.store.SetVLANFilter(req.VLANIDs)
	h.writeJSON(w, http.StatusOK, map[string]any{"vlan_ids": req.VLANIDs})
}

type selectionRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (h *Handler) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "invalid json body", map[string]any{"error": err.Error()})
		return
	}
	if req.Kind == "" && req.ID == "" {
		h.store.SetSelection(nil)
		h.writeJSON(w, http.StatusOK, map[string]any{"selection": nil})
		return
	}
	if req.Kind != "device" && req.Kind != "connection" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "kind must be device or connection", map[string]any{"kind": req.Kind})
		return
	}
	sel := &state.Selection{Kind: req.Kind, ID: req.ID}
	h.store.SetSelection(sel)
	h.writeJSON(w, http.StatusOK, map[string]any{"selection": sel})
}

func (h *Handler) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "alert id required", nil)
		return
	}
	if !h.store.AcknowledgeAlert(id) {
		h.writeError(w, http.StatusNotFound, "not_found", "alert not found", map[string]any{"id": id})
		return
	}
	// Best-effort: the local acknowledgement stands even if upstream is down.
	if h.ack != nil {
		if err := h.ack.AcknowledgeAlert(r.Context(), id); err != nil {
			h.log.Warn().Err(err).Str("alert_id", id).Msg("upstream acknowledge failed")
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": topo.AlertAcknowledged})
}

func (h *Handler) handleDismissToast(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "validation_failed", "toast id required", nil)
		return
	}
	h.store.DismissToast(id)
	h.writeJSON(w, http.StatusOK, map[string]any{"id": id, "dismissed": true})
}
