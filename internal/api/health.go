package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type healthBody struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// handleHealth reports store reachability and database-layout cleanliness.
// Misplaced collections fail loudly here rather than at query time.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.health.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Health check: store unreachable")
		writeError(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	if err := s.health.CheckLayout(ctx); err != nil {
		log.Warn().Err(err).Msg("Health check: database layout violation")
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, healthBody{
		Status:    "ok",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}
