package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	internalerrors "github.com/pdclabs/chairview/internal/errors"
	"github.com/pdclabs/chairview/internal/logging"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Debug().Err(err).Msg("Response write failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeEngineError maps an engine failure onto the error contract. Client
// disconnects produce no response body; details never leave the log.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if internalerrors.IsCancellation(err) {
		log.Debug().
			Str("path", r.URL.Path).
			Str("request_id", logging.RequestIDFrom(r.Context())).
			Msg("Request cancelled by caller")
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	switch internalerrors.TypeOf(err) {
	case internalerrors.ErrorTypeTimeout:
		status = http.StatusGatewayTimeout
		message = "Query timed out"
	case internalerrors.ErrorTypeBadRequest:
		status = http.StatusBadRequest
		message = "Bad request"
	case internalerrors.ErrorTypeUnauthorized:
		status = http.StatusUnauthorized
		message = "Unauthorized"
	case internalerrors.ErrorTypeNotFound:
		status = http.StatusNotFound
		message = "Not found"
	}

	log.Error().
		Err(err).
		Str("path", r.URL.Path).
		Str("request_id", logging.RequestIDFrom(r.Context())).
		Int("status", status).
		Msg("Query failed")
	writeError(w, status, message)
}
