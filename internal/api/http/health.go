package http

import (
	"context"
	"net/http"

	"mylibrary-rental/internal/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.Ping(r.Context()); err != nil {
			logger.FromContext(r.Context()).WarnContext(r.Context(), "Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, contentTypeJSON, healthResponse{Status: "DOWN"})
			return
		}
		writeJSON(w, http.StatusOK, contentTypeJSON, healthResponse{Status: "UP"})
	}
}
