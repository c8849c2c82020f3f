package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

func (h *Handlers) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about", nil)
}

func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "contact", nil)
}

// Forbidden renders the 403 page for the admin guard.
func (h *Handlers) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "403", nil)
}

// Health pings the database.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		writeError(w, "database is not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.HealthCheck(ctx); err != nil {
		log.Warn().Err(err).Msg("health check failed")
		writeError(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	writeSuccess(w, map[string]string{"status": "ok"}, http.StatusOK)
}
