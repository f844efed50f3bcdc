package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/hub"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/logger"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/view"
	"go.uber.org/zap"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Index starts a page session and renders its first frame. The browser
// picks up later frames over /ws.
func Index(h *hub.Hub, r *view.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		log := logger.FromContext(req.Context())

		s, err := h.Create(req.Context())
		if err != nil {
			http.Error(w, "failed to create session", http.StatusServiceUnavailable)
			return
		}

		v, err := s.State(req.Context())
		if err != nil {
			// evicted or shut down before the first frame
			http.Error(w, "session closed", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := r.Page(w, s.ID(), v.Version, v.State); err != nil {
			log.Error("render page", zap.Error(err))
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Readyz reports ready only while the shelf backend answers its health check.
func Readyz(backend Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := backend.Health(ctx); err != nil {
			logger.FromContext(r.Context()).Warn("readiness check failed", zap.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Message: err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
