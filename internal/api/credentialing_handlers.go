package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pdclabs/chairview/internal/credentialing"
	"github.com/pdclabs/chairview/internal/export"
	"github.com/pdclabs/chairview/internal/filters"
	"github.com/pdclabs/chairview/internal/metrics"
)

func (s *Server) handleCredentialingStatus(w http.ResponseWriter, r *http.Request) {
	f := filters.ParseCredentialing(r.URL.Query())

	result, hit, err := s.runCredentialing(r.Context(), f)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCredentialingCSV(w http.ResponseWriter, r *http.Request) {
	f := filters.ParseCredentialing(r.URL.Query())

	result, hit, err := s.runCredentialing(r.Context(), f)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	setCSVHeaders(w, "credentialing-status.csv")

	if err := export.WriteCredentialing(w, result.Rows); err != nil {
		log.Debug().Err(err).Msg("CSV stream failed")
	}
}

func (s *Server) runCredentialing(ctx context.Context, f filters.CredentialingFilter) (*credentialing.Result, bool, error) {
	fp := f.Fingerprint()

	if s.cache != nil {
		if payload, ok := s.cache.Lookup(fp); ok {
			if result, ok := payload.(*credentialing.Result); ok {
				metrics.RecordCacheLookup("credentialing", true)
				return result, true, nil
			}
		}
		metrics.RecordCacheLookup("credentialing", false)
	}

	qctx, cancel := s.queryContext(ctx)
	defer cancel()

	result, err := s.credentialing.Run(qctx, f)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.Insert(fp, result)
	}
	return result, false, nil
}
