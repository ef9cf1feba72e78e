package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pdclabs/chairview/internal/export"
	"github.com/pdclabs/chairview/internal/filters"
	"github.com/pdclabs/chairview/internal/metrics"
	"github.com/pdclabs/chairview/internal/pivot"
)

// handlePivot serves the JSON pivot. Pagination is presentation-only: the
// cached result holds every row and page/limit slice it per request.
func (s *Server) handlePivot(w http.ResponseWriter, r *http.Request) {
	f := filters.ParsePivot(r.URL.Query())

	result, hit, err := s.runPivot(r.Context(), f)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	setCacheHeader(w, hit)

	start, end := f.Paginate(len(result.Rows))
	writeJSON(w, http.StatusOK, pivot.Result{
		Rows:    result.Rows[start:end],
		Summary: result.Summary,
	})
}

// handlePivotCSV streams the full pivot as CSV; page and limit are ignored.
func (s *Server) handlePivotCSV(w http.ResponseWriter, r *http.Request) {
	f := filters.ParsePivot(r.URL.Query())

	result, hit, err := s.runPivot(r.Context(), f)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	setCSVHeaders(w, "fee-strategy-pivot.csv")

	if err := export.WritePivot(w, result.Rows); err != nil {
		log.Debug().Err(err).Msg("CSV stream failed")
	}
}

// handlePivotRedirect bounces the legacy dashboard path to the API route with
// a re-normalized query string.
func (s *Server) handlePivotRedirect(w http.ResponseWriter, r *http.Request) {
	f := filters.ParsePivot(r.URL.Query())

	target := "/api/fee-strategy/pivot"
	if query := f.Query().Encode(); query != "" {
		target += "?" + query
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// runPivot is the cache-first execution path. Failed runs are never cached;
// the cache shares the pivot and pivot.csv entry because the fingerprint
// excludes page and limit.
func (s *Server) runPivot(ctx context.Context, f filters.PivotFilter) (*pivot.Result, bool, error) {
	fp := f.Fingerprint()

	if s.cache != nil {
		if payload, ok := s.cache.Lookup(fp); ok {
			if result, ok := payload.(*pivot.Result); ok {
				metrics.RecordCacheLookup("pivot", true)
				return result, true, nil
			}
		}
		metrics.RecordCacheLookup("pivot", false)
	}

	qctx, cancel := s.queryContext(ctx)
	defer cancel()

	result, err := s.pivot.Run(qctx, f)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.Insert(fp, result)
	}
	return result, false, nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
		return
	}
	w.Header().Set("X-Cache", "MISS")
}

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}
